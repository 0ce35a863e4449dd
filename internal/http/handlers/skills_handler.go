package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/worldbinder/backend/internal/http/dto"
	"github.com/worldbinder/backend/internal/middleware"
	"github.com/worldbinder/backend/internal/repositories"
	"github.com/worldbinder/backend/internal/services"
	"go.uber.org/zap"
)

type SkillsHandler struct {
	skillRepo    *repositories.SkillRepo
	skillService *services.SkillService
	log          *zap.Logger
}

func NewSkillsHandler(skillRepo *repositories.SkillRepo, skillService *services.SkillService, log *zap.Logger) *SkillsHandler {
	return &SkillsHandler{skillRepo: skillRepo, skillService: skillService, log: log}
}

// List returns the skill catalog. The catalog is public; per-user levels are
// included only for authenticated callers.
// GET /api/skills
func (h *SkillsHandler) List(c *fiber.Ctx) error {
	skills, err := h.skillRepo.List(c.Context())
	if err != nil {
		h.log.Error("failed to list skills", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	levels := map[string]int{}
	if userID := middleware.GetUserID(c); userID != 0 {
		levels, err = h.skillRepo.GetLevels(c.Context(), userID)
		if err != nil {
			h.log.Error("failed to load skill levels", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
		}
	}

	return c.JSON(fiber.Map{
		"skills": skills,
		"levels": levels,
	})
}

// Upgrade levels a skill after verifying the paying burn transaction.
// POST /api/skills/upgrade
func (h *SkillsHandler) Upgrade(c *fiber.Ctx) error {
	var req dto.SkillUpgradeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.SkillKey == "" || req.TxSignature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "skillKey and txSignature are required"})
	}

	userID := middleware.GetUserID(c)
	wallet := middleware.GetWalletAddress(c)

	level, err := h.skillService.Upgrade(c.Context(), userID, wallet, req.SkillKey, req.TxSignature)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSkillKey):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid skill key"})
		case errors.Is(err, services.ErrTxNotIndexed):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Transaction not found or not confirmed yet"})
		case errors.Is(err, services.ErrTxFailed):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "transaction failed on chain"})
		case errors.Is(err, services.ErrBurnAuthorityMismatch):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "burn authority does not match authenticated wallet"})
		case errors.Is(err, services.ErrBurnMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "no valid burn found in transaction"})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "skill not found"})
		default:
			h.log.Error("skill upgrade failed", zap.Int64("user_id", userID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
		}
	}

	return c.JSON(dto.SkillUpgradeResponse{
		SkillKey: req.SkillKey,
		Level:    level,
	})
}
