// Package session keeps per-user forecast period preferences.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/config"
)

const DefaultPeriod = 3

var ErrInvalidPeriod = errors.New("forecast period must be 3 or 5 days")

// Store remembers how many days of forecast each user wants. Unknown users
// get DefaultPeriod.
type Store interface {
	Period(ctx context.Context, userID int64) (int, error)
	SetPeriod(ctx context.Context, userID int64, days int) error
}

func ValidPeriod(days int) bool {
	return days == 3 || days == 5
}

// NewStore builds the backend selected in cfg. The returned close function
// releases any connection the store holds.
func NewStore(ctx context.Context, cfg config.SessionConfig, logger *zap.Logger) (Store, func() error, error) {
	switch cfg.Backend {
	case "", "memory":
		logger.Info("Using in-memory period store")
		return NewMemoryStore(), func() error { return nil }, nil
	case "redis":
		store := NewRedisStore(cfg.Redis)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("Using redis period store",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
			zap.Int("database", cfg.Redis.Database))
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
