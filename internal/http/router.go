package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/worldbinder/backend/internal/auth"
	"github.com/worldbinder/backend/internal/config"
	"github.com/worldbinder/backend/internal/http/handlers"
	"github.com/worldbinder/backend/internal/middleware"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	battleHandler *handlers.BattleHandler,
	walletHandler *handlers.WalletHandler,
	skillsHandler *handlers.SkillsHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	metaHandler *handlers.MetaHandler,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	api := app.Group("/api")

	// Meta (public)
	api.Get("/health", metaHandler.Health)
	api.Get("/config", metaHandler.AppConfig)

	// Auth (public, tighter limit on verify to slow brute-force attempts)
	api.Post("/auth/challenge",
		middleware.RateLimitMiddleware(rdb, cfg.AuthRateLimit, cfg.AuthRateLimitWindow),
		authHandler.Challenge)
	api.Post("/auth/verify",
		middleware.RateLimitMiddleware(rdb, cfg.AuthRateLimit, cfg.AuthRateLimitWindow),
		authHandler.Verify)
	api.Post("/auth/logout", authHandler.Logout)

	// Everything below shares the general limit
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitRequests, cfg.RateLimitWindow))

	// Public reads. The skill catalog is open; per-user levels come back
	// only when the caller presents a valid session.
	api.Get("/leaderboard", leaderboardHandler.Top)
	api.Get("/skills", middleware.OptionalAuthMiddleware(cfg), skillsHandler.List)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	protected.Get("/user/profile", userHandler.GetProfile)
	protected.Patch("/user/profile", userHandler.UpdateProfile)
	protected.Post("/user/nfts", userHandler.AddNFT)

	protected.Post("/battle/start", battleHandler.Start)
	protected.Get("/battle/:battleId", battleHandler.Status)

	protected.Post("/wallet/scan", walletHandler.Scan)
	protected.Post("/wallet/token-balance", walletHandler.TokenBalance)

	protected.Post("/skills/upgrade", skillsHandler.Upgrade)

	// Static frontend. /app.html requires a live session cookie.
	if cfg.FrontendDir != "" {
		app.Get("/app.html", func(c *fiber.Ctx) error {
			token := c.Cookies(cfg.CookieName)
			if token == "" {
				return c.Redirect("/", fiber.StatusFound)
			}
			if _, err := auth.ParseJWT(cfg.JWTSecret, token); err != nil {
				return c.Redirect("/", fiber.StatusFound)
			}
			return c.SendFile(cfg.FrontendDir + "/app.html")
		})
		app.Static("/", cfg.FrontendDir, fiber.Static{
			MaxAge: int(time.Hour.Seconds()),
		})
	}
}
