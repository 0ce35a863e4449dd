package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/worldbinder/backend/internal/battle"
	"github.com/worldbinder/backend/internal/config"
	"github.com/worldbinder/backend/internal/db"
	"github.com/worldbinder/backend/internal/repositories"
	"github.com/worldbinder/backend/internal/services"
	"go.uber.org/zap"
)

const (
	resolvePollInterval = time.Second
	noncePurgeInterval  = 10 * time.Minute
)

// The worker drains the due-battle schedule and settles each battle against
// the ledger. It is safe to run alongside the API and as multiple replicas;
// the per-battle resolve lock keeps settlement exactly-once.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	leaderboardRepo := repositories.NewLeaderboardRepo(pool)
	nonceRepo := repositories.NewNonceRepo(pool)

	registry := battle.NewRegistry(rdb)
	battleService := services.NewBattleService(registry, leaderboardRepo, cfg, log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
	}()

	resolveTicker := time.NewTicker(resolvePollInterval)
	defer resolveTicker.Stop()
	purgeTicker := time.NewTicker(noncePurgeInterval)
	defer purgeTicker.Stop()

	log.Info("battle worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("battle worker stopped")
			return
		case now := <-resolveTicker.C:
			battleService.ResolveDue(ctx, now)
		case <-purgeTicker.C:
			purged, err := nonceRepo.PurgeExpired(ctx)
			if err != nil {
				log.Warn("nonce purge failed", zap.Error(err))
			} else if purged > 0 {
				log.Info("purged expired challenge nonces", zap.Int64("count", purged))
			}
		}
	}
}
