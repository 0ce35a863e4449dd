package services

import (
	"testing"

	"github.com/worldbinder/backend/internal/models"
)

func TestSortAndTruncate_Ordering(t *testing.T) {
	entries := []models.LeaderboardEntry{
		{UserID: 1, Points: 100, Wins: 5},
		{UserID: 2, Points: 900, Wins: 1},
		{UserID: 3, Points: 900, Wins: 7},
		{UserID: 4, Points: 500, Wins: 0},
	}

	sorted := SortAndTruncate(entries, 100)

	wantOrder := []int64{3, 2, 4, 1}
	for i, want := range wantOrder {
		if sorted[i].UserID != want {
			t.Fatalf("position %d: user %d, want %d", i, sorted[i].UserID, want)
		}
	}
}

func TestSortAndTruncate_TiesBrokenByWins(t *testing.T) {
	entries := []models.LeaderboardEntry{
		{UserID: 1, Points: 500, Wins: 2},
		{UserID: 2, Points: 500, Wins: 9},
	}
	sorted := SortAndTruncate(entries, 100)
	if sorted[0].UserID != 2 {
		t.Errorf("equal points must rank by wins, got user %d first", sorted[0].UserID)
	}
}

func TestSortAndTruncate_Cap(t *testing.T) {
	entries := make([]models.LeaderboardEntry, 150)
	for i := range entries {
		entries[i] = models.LeaderboardEntry{UserID: int64(i), Points: int64(i)}
	}

	sorted := SortAndTruncate(entries, 100)
	if len(sorted) != 100 {
		t.Fatalf("got %d entries, want 100", len(sorted))
	}
	if sorted[0].Points != 149 {
		t.Errorf("top entry points = %d, want 149", sorted[0].Points)
	}
}

func TestSortAndTruncate_Empty(t *testing.T) {
	if got := SortAndTruncate(nil, 100); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
