package models

import "time"

const (
	RarityCommon    = "Common"
	RarityRare      = "Rare"
	RarityEpic      = "Epic"
	RarityLegendary = "Legendary"
)

func IsValidRarity(r string) bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

type UserNFT struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	MintAddress string    `json:"mint_address"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"image_url"`
	Rarity      string    `json:"rarity"`
	Level       int       `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
}

// NFTStats are derived deterministically from (mint, rarity, salt); they are
// never stored, only recomputed.
type NFTStats struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Health  int `json:"health"`
}

// ScannedNFT is an asset returned by the collection scan.
type ScannedNFT struct {
	ID     string            `json:"id"` // mint address
	Name   string            `json:"name"`
	Image  string            `json:"image"`
	Rarity string            `json:"rarity"`
	Level  int               `json:"level"`
	Traits map[string]string `json:"traits,omitempty"`
	Stats  NFTStats          `json:"stats"`
}
