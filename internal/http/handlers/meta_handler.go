package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/worldbinder/backend/internal/config"
	"github.com/worldbinder/backend/internal/http/dto"
	"go.uber.org/zap"
)

type MetaHandler struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	cfg  *config.Config
	log  *zap.Logger
}

func NewMetaHandler(pool *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, log *zap.Logger) *MetaHandler {
	return &MetaHandler{pool: pool, rdb: rdb, cfg: cfg, log: log}
}

// Health pings both stores. Any failure turns the whole check unhealthy.
// GET /api/health
func (h *MetaHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{Status: "ok", DB: "ok", Redis: "ok"}
	status := fiber.StatusOK

	if err := h.pool.Ping(c.Context()); err != nil {
		h.log.Warn("db health check failed", zap.Error(err))
		resp.DB = "unreachable"
		resp.Status = "degraded"
		status = fiber.StatusServiceUnavailable
	}
	if err := h.rdb.Ping(c.Context()).Err(); err != nil {
		h.log.Warn("redis health check failed", zap.Error(err))
		resp.Redis = "unreachable"
		resp.Status = "degraded"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(resp)
}

// AppConfig exposes the few settings the frontend needs at boot.
// GET /api/config
func (h *MetaHandler) AppConfig(c *fiber.Ctx) error {
	return c.JSON(dto.ConfigResponse{
		DebugMode:  h.cfg.DebugMode,
		APIBaseURL: "/api",
		TokenMint:  h.cfg.TokenMint,
	})
}
