package models

import "time"

const (
	BattleStatusPending  = "pending"
	BattleStatusResolved = "resolved"
)

// IsValidBattleTransition guards the battle lifecycle: pending -> resolved,
// terminal at resolved.
func IsValidBattleTransition(from, to string) bool {
	return from == BattleStatusPending && to == BattleStatusResolved
}

// Battle is the shared record for one wager. Stored in Redis keyed by ID so
// that any replica can answer status polls and the worker can resolve it.
type Battle struct {
	ID          string        `json:"battle_id"`
	UserID      int64         `json:"user_id"`
	Wallet      string        `json:"wallet"`
	MintAddress string        `json:"mint_address"`
	Bet         int64         `json:"bet"`
	Status      string        `json:"status"`
	WaitSeconds int           `json:"wait_seconds"`
	ResolveAt   time.Time     `json:"resolve_at"`
	Seed        string        `json:"seed"` // hex, deterministic per battle
	Result      *BattleResult `json:"result,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type BattleResult struct {
	Win    bool  `json:"win"`
	Bet    int64 `json:"bet"`
	Points int64 `json:"points"`
	Wins   int   `json:"wins"`
	Losses int   `json:"losses"`
}
