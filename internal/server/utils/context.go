package utils

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/vzahanych/weather-bot-app/pkg/logger"
)

const (
	SpanContextKey = "span_context"
	RequestIDKey   = "request_id"
)

func GetSpanFromGinContext(c *gin.Context) trace.Span {
	return trace.SpanFromContext(GetContextFromGinContext(c))
}

// GetContextFromGinContext returns the traced request context carrying the
// request id, so that loggers further down pick it up.
func GetContextFromGinContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if spanCtx, exists := c.Get(SpanContextKey); exists {
		if sc, ok := spanCtx.(context.Context); ok {
			ctx = sc
		}
	}

	if id := GetRequestIDFromGinContext(c); id != "" && logger.RequestIDFromContext(ctx) == "" {
		ctx = logger.WithRequestID(ctx, id)
	}
	return ctx
}

func GetRequestIDFromGinContext(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
