package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/worldbinder/backend/internal/http/dto"
	"github.com/worldbinder/backend/internal/middleware"
	"github.com/worldbinder/backend/internal/services"
	"github.com/worldbinder/backend/internal/solana"
	"go.uber.org/zap"
)

type WalletHandler struct {
	walletService *services.WalletService
	log           *zap.Logger
}

func NewWalletHandler(walletService *services.WalletService, log *zap.Logger) *WalletHandler {
	return &WalletHandler{walletService: walletService, log: log}
}

// Scan lists the caller's collection NFTs with derived stats.
// POST /api/wallet/scan
func (h *WalletHandler) Scan(c *fiber.Ctx) error {
	var req dto.WalletScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	wallet := req.WalletAddress
	if wallet == "" {
		wallet = middleware.GetWalletAddress(c)
	}
	if !solana.IsValidAddressLength(wallet) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid wallet address"})
	}

	result, err := h.walletService.ScanWallet(c.Context(), wallet)
	if err != nil {
		h.log.Error("wallet scan failed", zap.String("wallet", wallet), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "failed to scan wallet"})
	}

	return c.JSON(result)
}

// TokenBalance returns the wallet's game-token balance from chain state.
// POST /api/wallet/token-balance
func (h *WalletHandler) TokenBalance(c *fiber.Ctx) error {
	var req dto.TokenBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	wallet := req.WalletAddress
	if wallet == "" {
		wallet = middleware.GetWalletAddress(c)
	}
	if !solana.IsValidAddressLength(wallet) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid wallet address"})
	}

	balance, err := h.walletService.GetTokenBalance(c.Context(), wallet)
	if err != nil {
		h.log.Error("token balance lookup failed", zap.String("wallet", wallet), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "failed to fetch token balance"})
	}

	return c.JSON(dto.TokenBalanceResponse{Balance: balance})
}
