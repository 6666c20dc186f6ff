package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vzahanych/weather-bot-app/internal/config"
)

// RedisStore shares preferences between bot replicas.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	return &RedisStore{
		rdb:    rdb,
		prefix: cfg.KeyPrefix,
		ttl:    time.Duration(cfg.TTL) * time.Second,
	}
}

func (s *RedisStore) key(userID int64) string {
	return fmt.Sprintf("%s:period:%d", s.prefix, userID)
}

func (s *RedisStore) Period(ctx context.Context, userID int64) (int, error) {
	val, err := s.rdb.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return DefaultPeriod, nil
		}
		return 0, fmt.Errorf("get period for user %d: %w", userID, err)
	}

	days, err := strconv.Atoi(val)
	if err != nil || !ValidPeriod(days) {
		// a value written by something else, treat it as unset
		return DefaultPeriod, nil
	}
	return days, nil
}

func (s *RedisStore) SetPeriod(ctx context.Context, userID int64, days int) error {
	if !ValidPeriod(days) {
		return ErrInvalidPeriod
	}

	if err := s.rdb.Set(ctx, s.key(userID), days, s.ttl).Err(); err != nil {
		return fmt.Errorf("set period for user %d: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
