package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger checks a backing store.
type Pinger func(ctx context.Context) error

// HealthHandler answers /health.
type HealthHandler struct {
	ping   Pinger
	logger *zap.Logger
}

func NewHealthHandler(ping Pinger, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{ping: ping, logger: logger}
}

func (h *HealthHandler) Health(c *gin.Context) {
	code, status, database := http.StatusOK, "ok", "up"
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.Warn("database ping failed", zap.Error(err))
			code, status, database = http.StatusServiceUnavailable, "degraded", "down"
		}
	}
	c.JSON(code, gin.H{
		"success":   code == http.StatusOK,
		"status":    status,
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
