package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/utils"
)

var startTime = time.Now()

type pinger interface {
	PingContext(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	db    pinger
	redis redisPinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db pinger, redis redisPinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// GetHealth responds with service, database and Redis status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "connected"
	if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "disconnected"
	}
	redisStatus := "connected"
	if h.redis == nil {
		redisStatus = "disabled"
	} else if err := h.redis.Ping(ctx); err != nil {
		redisStatus = "disconnected"
	}

	data := gin.H{
		"status":   "healthy",
		"version":  "1.0.0",
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": dbStatus,
		"redis":    redisStatus,
	}
	if dbStatus != "connected" {
		data["status"] = "degraded"
		utils.ErrorWithData(c, http.StatusServiceUnavailable, "UNHEALTHY", "Database unreachable", data)
		return
	}
	utils.Success(c, http.StatusOK, "Service is healthy", data)
}
