package battle

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// WinThreshold is the cutoff on the 0-9999 roll: rolls at or above it win,
// giving a 30% win chance.
const (
	WinThreshold = 7000
	rollSpace    = 10000

	// WinBonus is credited on top of the doubled bet on a win.
	WinBonus = 100
)

// DeriveSeed produces the deterministic per-battle seed: an HMAC-SHA256 over
// the battle's identity under the server key. The client can learn the seed
// only after resolution, and cannot predict it without the key.
func DeriveSeed(secret, battleID string, userID int64, mintAddress string, resolveAtUnix int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s:%d:%s:%d", battleID, userID, mintAddress, resolveAtUnix)
	return hex.EncodeToString(mac.Sum(nil))
}

// Roll maps a hex seed onto 0-9999. Invalid or short seeds roll 0, a loss.
func Roll(seedHex string) int {
	seed, err := hex.DecodeString(seedHex)
	if err != nil || len(seed) < 8 {
		return 0
	}
	return int(binary.BigEndian.Uint64(seed[:8]) % rollSpace)
}

// IsWin applies the fixed threshold to a roll.
func IsWin(roll int) bool {
	return roll >= WinThreshold
}

// WinPayout is 2x the bet plus the flat bonus. The original bet was already
// debited at placement, so the net gain on a win is bet + WinBonus.
func WinPayout(bet int64) int64 {
	return 2*bet + WinBonus
}
