package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Challenge is issued to a wallet and signed client-side to prove key
// ownership. It is never returned to the client with any server secret; the
// nonce is persisted separately for one-time consumption.
type Challenge struct {
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewChallenge builds a challenge for the given wallet address. The nonce
// carries 32 bytes of entropy; collisions are bounded by the birthday limit of
// crypto/rand, not tracked.
func NewChallenge(walletAddress string) Challenge {
	nonce := generateNonce(32)
	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000000")
	return Challenge{
		Nonce:     nonce,
		Message:   ChallengeMessage(walletAddress, nonce, timestamp),
		Timestamp: timestamp,
	}
}

// ChallengeMessage is the exact text the wallet signs. Changing this format
// invalidates every in-flight challenge.
func ChallengeMessage(walletAddress, nonce, timestamp string) string {
	return fmt.Sprintf(
		"Sign this message to authenticate with WORLDBINDER.\n\nPublic Key: %s\nNonce: %s\nTimestamp: %s",
		walletAddress, nonce, timestamp,
	)
}

// ParseChallengeMessage extracts the wallet, nonce and timestamp from a
// signed challenge message. Reconstructing the message from these fields must
// reproduce the input byte for byte, which rejects any tampering with the
// surrounding text.
func ParseChallengeMessage(message string) (walletAddress, nonce, timestamp string, err error) {
	_, scanErr := fmt.Sscanf(message,
		"Sign this message to authenticate with WORLDBINDER.\n\nPublic Key: %s\nNonce: %s\nTimestamp: %s",
		&walletAddress, &nonce, &timestamp,
	)
	if scanErr != nil {
		return "", "", "", fmt.Errorf("malformed challenge message: %w", scanErr)
	}
	if ChallengeMessage(walletAddress, nonce, timestamp) != message {
		return "", "", "", fmt.Errorf("malformed challenge message")
	}
	return walletAddress, nonce, timestamp, nil
}

func generateNonce(bytes int) string {
	b := make([]byte, bytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
