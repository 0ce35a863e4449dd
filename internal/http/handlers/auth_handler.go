package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/worldbinder/backend/internal/auth"
	"github.com/worldbinder/backend/internal/config"
	"github.com/worldbinder/backend/internal/http/dto"
	"github.com/worldbinder/backend/internal/repositories"
	"github.com/worldbinder/backend/internal/solana"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userRepo  *repositories.UserRepo
	nonceRepo *repositories.NonceRepo
	cfg       *config.Config
	log       *zap.Logger
}

func NewAuthHandler(userRepo *repositories.UserRepo, nonceRepo *repositories.NonceRepo, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, nonceRepo: nonceRepo, cfg: cfg, log: log}
}

// Challenge issues a signable message for the given wallet.
// POST /api/auth/challenge
func (h *AuthHandler) Challenge(c *fiber.Ctx) error {
	var req dto.ChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	if !solana.IsValidAddressLength(req.PublicKey) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid public key"})
	}

	challenge := auth.NewChallenge(req.PublicKey)
	if err := h.nonceRepo.Create(c.Context(), challenge.Nonce, req.PublicKey, h.cfg.ChallengeTTL); err != nil {
		h.log.Error("failed to store challenge nonce", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(dto.ChallengeResponse{
		Nonce:     challenge.Nonce,
		Message:   challenge.Message,
		Timestamp: challenge.Timestamp,
	})
}

// Verify checks the signed challenge and opens a session.
// POST /api/auth/verify
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.PublicKey == "" || req.Signature == "" || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "publicKey, signature and message are required"})
	}

	msgWallet, nonce, _, err := auth.ParseChallengeMessage(req.Message)
	if err != nil || msgWallet != req.PublicKey {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid challenge message"})
	}

	// Consume before verifying the signature so a replayed message burns
	// nothing twice even under concurrent requests.
	if err := h.nonceRepo.Consume(c.Context(), nonce, req.PublicKey); err != nil {
		if errors.Is(err, repositories.ErrNonceConsumed) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "challenge expired or already used"})
		}
		h.log.Error("failed to consume challenge nonce", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	if !solana.VerifySignature(req.PublicKey, req.Signature, req.Message) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "signature verification failed"})
	}

	user, isNew, err := h.userRepo.UpsertByWallet(c.Context(), req.PublicKey)
	if err != nil {
		h.log.Error("failed to upsert user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
	if isNew {
		if err := h.userRepo.SeedNewUser(c.Context(), user.ID, h.cfg.StartingTokens, h.cfg.StartingPoints); err != nil {
			h.log.Error("failed to seed new user", zap.Int64("user_id", user.ID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
		}
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, user.WalletAddress, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to generate jwt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cfg.JWTExpiration),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return c.JSON(dto.AuthResponse{
		Token: token,
		User:  user,
	})
}

// Logout clears the session cookie. The JWT itself stays valid until expiry.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.JSON(fiber.Map{"ok": true})
}
