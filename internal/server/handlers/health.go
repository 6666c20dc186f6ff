package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/server/utils"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck reports whether a dependency can take traffic.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	logger    *zap.Logger
	startTime time.Time
	checks    []ReadinessCheck
}

func NewHealthHandler(logger *zap.Logger, checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		startTime: time.Now(),
		checks:    checks,
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(utils.GetContextFromGinContext(c), readinessTimeout)
	defer cancel()

	for _, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status: "unavailable",
				Uptime: time.Since(h.startTime).String(),
				Error:  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status: "ready",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
