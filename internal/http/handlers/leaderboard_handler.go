package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/worldbinder/backend/internal/http/dto"
	"github.com/worldbinder/backend/internal/models"
	"github.com/worldbinder/backend/internal/services"
	"go.uber.org/zap"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
	log                *zap.Logger
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService, log *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService, log: log}
}

// Top returns the ranked leaderboard.
// GET /api/leaderboard
func (h *LeaderboardHandler) Top(c *fiber.Ctx) error {
	entries, err := h.leaderboardService.Top(c.Context())
	if err != nil {
		h.log.Error("failed to load leaderboard", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return c.JSON(fiber.Map{"leaderboard": entries})
}
