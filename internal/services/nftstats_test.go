package services

import (
	"testing"

	"github.com/worldbinder/backend/internal/models"
)

func TestGenerateNFTStats_Deterministic(t *testing.T) {
	a := GenerateNFTStats("mint-1", models.RarityEpic, "salt")
	b := GenerateNFTStats("mint-1", models.RarityEpic, "salt")
	if a != b {
		t.Fatalf("same inputs produced %+v and %+v", a, b)
	}
}

func TestGenerateNFTStats_SaltChangesOutput(t *testing.T) {
	base := GenerateNFTStats("mint-1", models.RarityEpic, "salt-v1")
	other := GenerateNFTStats("mint-1", models.RarityEpic, "salt-v2")
	if base == other {
		t.Fatal("rotating the salt must re-roll stats")
	}
}

func TestGenerateNFTStats_WithinRarityBands(t *testing.T) {
	tests := []struct {
		rarity                string
		atkMin, defMin, hpMin int
	}{
		{models.RarityCommon, 10, 10, 100},
		{models.RarityRare, 16, 14, 130},
		{models.RarityEpic, 24, 20, 170},
		{models.RarityLegendary, 34, 28, 220},
	}
	for _, tt := range tests {
		for i := 0; i < 20; i++ {
			mint := string(rune('a'+i)) + "-mint"
			s := GenerateNFTStats(mint, tt.rarity, "salt")
			if s.Attack < tt.atkMin || s.Attack > tt.atkMin+9 {
				t.Errorf("%s attack %d outside [%d,%d]", tt.rarity, s.Attack, tt.atkMin, tt.atkMin+9)
			}
			if s.Defense < tt.defMin || s.Defense > tt.defMin+9 {
				t.Errorf("%s defense %d outside [%d,%d]", tt.rarity, s.Defense, tt.defMin, tt.defMin+9)
			}
			if s.Health < tt.hpMin || s.Health > tt.hpMin+29 {
				t.Errorf("%s health %d outside [%d,%d]", tt.rarity, s.Health, tt.hpMin, tt.hpMin+29)
			}
		}
	}
}

func TestGenerateNFTStats_UnknownRarityFallsBackToCommon(t *testing.T) {
	s := GenerateNFTStats("mint-1", "Mythic", "salt")
	if s.Attack < 10 || s.Attack > 19 {
		t.Errorf("unknown rarity must use the common band, got attack %d", s.Attack)
	}
}

func TestAttackBonus(t *testing.T) {
	tests := []struct {
		count, bonus int
	}{
		{0, 0},
		{1, 10},
		{2, 15},
		{3, 20},
		{7, 20},
	}
	for _, tt := range tests {
		if got := AttackBonus(tt.count); got != tt.bonus {
			t.Errorf("AttackBonus(%d) = %d, want %d", tt.count, got, tt.bonus)
		}
	}
}
