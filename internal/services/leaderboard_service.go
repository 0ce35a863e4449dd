package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/worldbinder/backend/internal/models"
	"go.uber.org/zap"
)

// LeaderboardLimit caps how many entries a single fetch returns.
const LeaderboardLimit = 100

// LeaderboardLister is the slice of the leaderboard repo the read path needs.
type LeaderboardLister interface {
	List(ctx context.Context) ([]models.LeaderboardEntry, error)
}

type LeaderboardService struct {
	repo LeaderboardLister
	log  *zap.Logger
}

func NewLeaderboardService(repo LeaderboardLister, log *zap.Logger) *LeaderboardService {
	return &LeaderboardService{repo: repo, log: log}
}

func (s *LeaderboardService) Top(ctx context.Context) ([]models.LeaderboardEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return SortAndTruncate(entries, LeaderboardLimit), nil
}

// SortAndTruncate orders entries by points descending, breaking ties by wins
// descending, and caps the result at limit.
func SortAndTruncate(entries []models.LeaderboardEntry, limit int) []models.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Wins > entries[j].Wins
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
