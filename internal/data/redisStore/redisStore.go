package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	logger *logger_i.Logger
}

// New connects and pings. Callers fall back to in-memory stores when this fails, so the
// error is returned rather than logged here.
func New(ctx context.Context, settings config.RedisSettings) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:                  settings.Addr,
		Password:              settings.Password,
		DB:                    settings.DB,
		ContextTimeoutEnabled: true,
		DialTimeout:           config.RedisDialTimeout,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, config.RedisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis is offline at %s: %w", settings.Addr, err)
	}

	s := NewWithClient(client)
	s.logger.Info("Redis store init successfully", "addr", settings.Addr, "db", settings.DB)
	return s, nil
}

// NewWithClient wraps an existing client, tests hand in one pointed at miniredis.
func NewWithClient(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("Redis Store"),
	}
}

func (s *Store) Close() {
	s.logger.Info("Closing Redis Store")
	if err := s.client.Close(); err != nil {
		s.logger.Error("Error closing redis client", "error", err)
		return
	}
	s.logger.Info("Redis Store Closed successfully")
}
