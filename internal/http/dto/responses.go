package dto

import "github.com/worldbinder/backend/internal/models"

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ChallengeResponse struct {
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type ProfileResponse struct {
	User         *models.User     `json:"user"`
	NFTs         []models.UserNFT `json:"nfts"`
	TokenBalance int64            `json:"tokenBalance"`
}

type BattleStartResponse struct {
	BattleID    string `json:"battle_id"`
	Status      string `json:"status"`
	WaitSeconds int    `json:"wait_seconds"`
	ResolveAt   int64  `json:"resolve_at"`
}

type TokenBalanceResponse struct {
	Balance float64 `json:"balance"`
}

type SkillUpgradeResponse struct {
	SkillKey string `json:"skillKey"`
	Level    int    `json:"level"`
}

type HealthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Redis  string `json:"redis"`
}

type ConfigResponse struct {
	DebugMode  bool   `json:"DEBUG_MODE"`
	APIBaseURL string `json:"API_BASE_URL"`
	TokenMint  string `json:"TOKEN_MINT"`
}
