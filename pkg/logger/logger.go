package logger

import (
	"fmt"

	"github.com/vzahanych/weather-bot-app/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.SugaredLogger
}

// New builds a logger from the logging section: "json" gives the production
// encoder, anything else the development console encoder.
func New(cfg config.LoggingConfig) (*Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Format != "" && cfg.Format != "json" {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	if cfg.OutputPath != "" {
		zcfg.OutputPaths = []string{cfg.OutputPath}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{logger.Sugar()}, nil
}

func NewDevelopment() *Logger {
	logger, _ := zap.NewDevelopment()
	return &Logger{logger.Sugar()}
}

func NewProduction() *Logger {
	logger, _ := zap.NewProduction()
	return &Logger{logger.Sugar()}
}

// Zap returns the structured logger backing l.
func (l *Logger) Zap() *zap.Logger {
	return l.SugaredLogger.Desugar()
}

func (l *Logger) Sync() error {
	return l.SugaredLogger.Sync()
}
