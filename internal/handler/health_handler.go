package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/El-Ikhsan/ktp-extractor/internal/cache"
	"github.com/El-Ikhsan/ktp-extractor/internal/dataset"
	"github.com/El-Ikhsan/ktp-extractor/internal/service"
	"github.com/El-Ikhsan/ktp-extractor/internal/utils"
)

var startTime = time.Now()

// HealthHandler provides the health endpoint.
type HealthHandler struct {
	db       *sqlx.DB
	redis    *cache.RedisClient
	datasets *dataset.Index
	router   *service.EngineRouter
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB, redis *cache.RedisClient, datasets *dataset.Index, router *service.EngineRouter) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, datasets: datasets, router: router}
}

// GetHealth responds with service, dependency and dataset status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	dbStatus := "connected"
	if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "disconnected"
	}

	redisStatus := "connected"
	if err := h.redis.Ping(ctx); err != nil {
		redisStatus = "disconnected"
	}

	utils.Success(c, 200, "Service is healthy", gin.H{
		"status":  "healthy",
		"version": "1.0.0",
		"uptime":  int(time.Since(startTime).Seconds()),
		"database": gin.H{
			"status": dbStatus,
		},
		"redis": gin.H{
			"status": redisStatus,
		},
		"datasets": gin.H{
			"loaded":     h.datasets.LoadedCount(),
			"categories": h.datasets.Categories(),
		},
		"engines": h.router.Available(),
	})
}
