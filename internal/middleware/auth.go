package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/worldbinder/backend/internal/auth"
	"github.com/worldbinder/backend/internal/config"
	"go.uber.org/zap"
)

const (
	CtxUserID        = "user_id"
	CtxWalletAddress = "wallet_address"
)

// AuthMiddleware accepts a Bearer token or, failing that, the session
// cookie, so both the JSON API and direct page loads share one session.
func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := ""

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
			}
		} else {
			tokenStr = c.Cookies(cfg.CookieName)
		}

		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxUserID, claims.UserID)
		c.Locals(CtxWalletAddress, claims.WalletAddress)

		return c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller's identity when a valid token or
// cookie is present but never rejects the request. For routes that serve
// public data and only enrich the response for signed-in users.
func OptionalAuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := ""

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				tokenStr = ""
			}
		} else {
			tokenStr = c.Cookies(cfg.CookieName)
		}

		if tokenStr != "" {
			if claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr); err == nil {
				c.Locals(CtxUserID, claims.UserID)
				c.Locals(CtxWalletAddress, claims.WalletAddress)
			}
		}

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(CtxUserID).(int64)
	return id
}

func GetWalletAddress(c *fiber.Ctx) string {
	addr, _ := c.Locals(CtxWalletAddress).(string)
	return addr
}
