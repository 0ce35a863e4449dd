package services

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/worldbinder/backend/internal/models"
)

// Rarity-banded base stats. The hash spreads each NFT within its band.
var rarityBands = map[string]struct {
	attack, defense, health int
}{
	models.RarityCommon:    {attack: 10, defense: 10, health: 100},
	models.RarityRare:      {attack: 16, defense: 14, health: 130},
	models.RarityEpic:      {attack: 24, defense: 20, health: 170},
	models.RarityLegendary: {attack: 34, defense: 28, health: 220},
}

// GenerateNFTStats derives battle stats for an NFT. Deterministic for a fixed
// (mint, rarity, salt) triple; rotating the salt re-rolls the whole
// collection.
func GenerateNFTStats(mintAddress, rarity, salt string) models.NFTStats {
	band, ok := rarityBands[rarity]
	if !ok {
		band = rarityBands[models.RarityCommon]
	}

	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", mintAddress, rarity, salt)))

	// Three independent 0-9 spreads from separate hash windows.
	atkSpread := int(binary.BigEndian.Uint32(h[0:4]) % 10)
	defSpread := int(binary.BigEndian.Uint32(h[4:8]) % 10)
	hpSpread := int(binary.BigEndian.Uint32(h[8:12]) % 30)

	return models.NFTStats{
		Attack:  band.attack + atkSpread,
		Defense: band.defense + defSpread,
		Health:  band.health + hpSpread,
	}
}

// AttackBonus maps owned-NFT count to a percentage damage bonus.
// 1 NFT = +10%, 2 = +15%, 3 or more = +20%.
func AttackBonus(nftCount int) int {
	switch {
	case nftCount >= 3:
		return 20
	case nftCount >= 2:
		return 15
	case nftCount >= 1:
		return 10
	default:
		return 0
	}
}
