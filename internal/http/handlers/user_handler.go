package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/worldbinder/backend/internal/config"
	"github.com/worldbinder/backend/internal/http/dto"
	"github.com/worldbinder/backend/internal/middleware"
	"github.com/worldbinder/backend/internal/models"
	"github.com/worldbinder/backend/internal/repositories"
	"go.uber.org/zap"
)

type UserHandler struct {
	userRepo *repositories.UserRepo
	nftRepo  *repositories.NFTRepo
	cfg      *config.Config
	log      *zap.Logger
}

func NewUserHandler(userRepo *repositories.UserRepo, nftRepo *repositories.NFTRepo, cfg *config.Config, log *zap.Logger) *UserHandler {
	return &UserHandler{userRepo: userRepo, nftRepo: nftRepo, cfg: cfg, log: log}
}

// GetProfile returns the authenticated user with NFTs and token balance.
// The row is created on first fetch if the auth flow somehow skipped it.
// GET /api/user/profile
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	wallet := middleware.GetWalletAddress(c)

	user, isNew, err := h.userRepo.UpsertByWallet(c.Context(), wallet)
	if err != nil {
		h.log.Error("failed to load profile", zap.String("wallet", wallet), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
	if isNew {
		if err := h.userRepo.SeedNewUser(c.Context(), user.ID, h.cfg.StartingTokens, h.cfg.StartingPoints); err != nil {
			h.log.Error("failed to seed new user", zap.Int64("user_id", user.ID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
		}
	}

	nfts, err := h.nftRepo.ListByUser(c.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to list nfts", zap.Int64("user_id", user.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
	if nfts == nil {
		nfts = []models.UserNFT{}
	}

	balance, err := h.userRepo.GetTokenBalance(c.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to load token balance", zap.Int64("user_id", user.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(dto.ProfileResponse{
		User:         user,
		NFTs:         nfts,
		TokenBalance: balance,
	})
}

// UpdateProfile patches username and/or avatar.
// PATCH /api/user/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Username == nil && req.AvatarURL == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "nothing to update"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	wallet := middleware.GetWalletAddress(c)

	if req.Username != nil {
		taken, err := h.userRepo.UsernameTaken(c.Context(), *req.Username, wallet)
		if err != nil {
			h.log.Error("failed to check username", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
		}
		if taken {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Username already taken"})
		}
	}

	user, err := h.userRepo.UpdateProfile(c.Context(), wallet, req.Username, req.AvatarURL)
	if err != nil {
		h.log.Error("failed to update profile", zap.String("wallet", wallet), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(fiber.Map{"user": user})
}

// AddNFT records an NFT against the authenticated user.
// POST /api/user/nfts
func (h *UserHandler) AddNFT(c *fiber.Ctx) error {
	var req dto.AddNFTRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.MintAddress == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "mintAddress and name are required"})
	}
	if !models.IsValidRarity(req.Rarity) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid rarity"})
	}

	level := req.Level
	if level < 1 {
		level = 1
	}

	nft := &models.UserNFT{
		UserID:      middleware.GetUserID(c),
		MintAddress: req.MintAddress,
		Name:        req.Name,
		ImageURL:    req.ImageURL,
		Rarity:      req.Rarity,
		Level:       level,
	}
	if err := h.nftRepo.Upsert(c.Context(), nft); err != nil {
		h.log.Error("failed to upsert nft", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(fiber.Map{"nft": nft})
}
