package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/worldbinder/backend/internal/battle"
	"github.com/worldbinder/backend/internal/config"
	"github.com/worldbinder/backend/internal/db"
	apphttp "github.com/worldbinder/backend/internal/http"
	"github.com/worldbinder/backend/internal/http/handlers"
	"github.com/worldbinder/backend/internal/repositories"
	"github.com/worldbinder/backend/internal/services"
	"github.com/worldbinder/backend/internal/solana"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	nonceRepo := repositories.NewNonceRepo(pool)
	leaderboardRepo := repositories.NewLeaderboardRepo(pool)
	nftRepo := repositories.NewNFTRepo(pool)
	skillRepo := repositories.NewSkillRepo(pool)

	// Chain clients
	rpcClient := solana.NewRPCClient(cfg.SolanaRPCURL, cfg.RPCTimeoutMS, cfg.RPCMaxRetries, log)
	heliusClient := solana.NewHeliusClient(cfg.HeliusURL, cfg.HeliusAPIKey, cfg.RPCTimeoutMS, cfg.RPCMaxRetries, log)

	// Services
	registry := battle.NewRegistry(rdb)
	battleService := services.NewBattleService(registry, leaderboardRepo, cfg, log)
	walletService := services.NewWalletService(heliusClient, rpcClient, cfg, log)
	skillService := services.NewSkillService(skillRepo, rpcClient, cfg, log)
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, nonceRepo, cfg, log)
	userHandler := handlers.NewUserHandler(userRepo, nftRepo, cfg, log)
	battleHandler := handlers.NewBattleHandler(battleService, log)
	walletHandler := handlers.NewWalletHandler(walletService, log)
	skillsHandler := handlers.NewSkillsHandler(skillRepo, skillService, log)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, log)
	metaHandler := handlers.NewMetaHandler(pool, rdb, cfg, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, userHandler, battleHandler, walletHandler, skillsHandler, leaderboardHandler, metaHandler)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
