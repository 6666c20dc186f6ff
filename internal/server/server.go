package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/aggregator"
	"github.com/vzahanych/weather-bot-app/internal/config"
	"github.com/vzahanych/weather-bot-app/internal/server/handlers"
	"github.com/vzahanych/weather-bot-app/internal/server/middlewares"
	"github.com/vzahanych/weather-bot-app/internal/server/utils"
	"github.com/vzahanych/weather-bot-app/pkg/telemetry"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	engine *gin.Engine
	server *http.Server
	agg    *aggregator.Aggregator
	logger *zap.Logger
	tele   *telemetry.Telemetry

	metrics *utils.Metrics
}

// NewServer builds the web surface. It installs its metrics handler as the
// aggregator's recorder, so it must run before the aggregator is shared.
func NewServer(cfg config.ServerConfig, agg *aggregator.Aggregator, logger *zap.Logger, tele *telemetry.Telemetry, checks ...handlers.ReadinessCheck) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	metrics := utils.NewMetrics()

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(logger))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(middlewares.NewMetricsMiddleware(logger, metrics).Handler())

	s := &Server{
		engine: engine,
		agg:    agg,
		logger: logger,
		tele:   tele,

		metrics: metrics,
	}

	s.setupRoutes(checks)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}

	return s
}

func (s *Server) setupRoutes(checks []handlers.ReadinessCheck) {
	metrics := handlers.NewMetricsHandler(s.logger, s.metrics)
	s.agg.SetMetricsRecorder(metrics)

	// Business endpoints
	forecast := handlers.NewForecastHandler(s.agg, s.logger)
	s.engine.GET("/", forecast.ShowForm)
	s.engine.POST("/", forecast.SubmitForm)

	// Health endpoints (Kubernetes friendly)
	health := handlers.NewHealthHandler(s.logger, checks...)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", metrics.ServeMetrics)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks until the listener fails or Shutdown is called. A clean
// shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
