package models

import "time"

type User struct {
	ID            int64      `json:"id"`
	WalletAddress string     `json:"wallet_address"`
	Username      *string    `json:"username,omitempty"`
	AvatarURL     *string    `json:"avatar_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}
