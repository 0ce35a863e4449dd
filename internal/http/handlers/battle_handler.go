package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/worldbinder/backend/internal/http/dto"
	"github.com/worldbinder/backend/internal/middleware"
	"github.com/worldbinder/backend/internal/services"
	"github.com/worldbinder/backend/internal/solana"
	"go.uber.org/zap"
)

type BattleHandler struct {
	battleService *services.BattleService
	log           *zap.Logger
}

func NewBattleHandler(battleService *services.BattleService, log *zap.Logger) *BattleHandler {
	return &BattleHandler{battleService: battleService, log: log}
}

// Start debits the wager and schedules a resolution.
// POST /api/battle/start
func (h *BattleHandler) Start(c *fiber.Ctx) error {
	var req dto.BattleStartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if !solana.IsValidAddressLength(req.MintAddress) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid mint address"})
	}

	userID := middleware.GetUserID(c)
	wallet := middleware.GetWalletAddress(c)

	b, err := h.battleService.StartBattle(c.Context(), userID, wallet, req.MintAddress, req.Bet)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidBet):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid bet"})
		case errors.Is(err, services.ErrInsufficientPoints):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Insufficient points"})
		default:
			h.log.Error("failed to start battle", zap.Int64("user_id", userID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
		}
	}

	return c.JSON(dto.BattleStartResponse{
		BattleID:    b.ID,
		Status:      b.Status,
		WaitSeconds: b.WaitSeconds,
		ResolveAt:   b.ResolveAt.Unix(),
	})
}

// Status returns the battle record, including the result once resolved.
// GET /api/battle/:battleId
func (h *BattleHandler) Status(c *fiber.Ctx) error {
	battleID := c.Params("battleId")

	b, err := h.battleService.GetBattle(c.Context(), battleID)
	if err != nil {
		if errors.Is(err, services.ErrBattleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "battle not found"})
		}
		h.log.Error("failed to load battle", zap.String("battle_id", battleID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(b)
}
