package models

// LeaderboardEntry is the persisted ledger row for a user: spendable points
// plus the win/loss record. Points are debited atomically when a battle
// starts and credited back on a winning resolution.
type LeaderboardEntry struct {
	UserID        int64   `json:"user_id"`
	Points        int64   `json:"points"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Username      *string `json:"username,omitempty"`
	WalletAddress string  `json:"wallet_address,omitempty"`
}
