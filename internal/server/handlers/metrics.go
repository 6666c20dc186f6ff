package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/server/utils"
)

type MetricsHandler struct {
	logger  *zap.Logger
	metrics *utils.Metrics
	serve   gin.HandlerFunc
}

func NewMetricsHandler(logger *zap.Logger, metrics *utils.Metrics) *MetricsHandler {
	return &MetricsHandler{
		logger:  logger,
		metrics: metrics,
		serve:   gin.WrapH(metrics.Handler()),
	}
}

func (h *MetricsHandler) RecordProviderCall(ctx context.Context, endpoint string, success bool) {
	h.metrics.RecordProviderCall(ctx, endpoint, success)
	if !success {
		h.logger.Debug("Provider call failed", zap.String("endpoint", endpoint))
	}
}

func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	h.serve(c)
}
