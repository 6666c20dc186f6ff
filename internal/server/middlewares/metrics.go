package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/server/utils"
)

const unmatchedRoute = "unmatched"

type MetricsMiddleware struct {
	logger  *zap.Logger
	metrics *utils.Metrics
}

func NewMetricsMiddleware(logger *zap.Logger, metrics *utils.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{
		logger:  logger,
		metrics: metrics,
	}
}

func (m *MetricsMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.metrics.Begin()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start)

		m.metrics.End(c.Request.Method, route, status, duration)

		m.logger.Debug("HTTP metrics recorded",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("status", status),
			zap.Duration("duration", duration))
	}
}
