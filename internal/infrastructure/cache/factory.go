package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ResponseCache stores raw registry responses by key
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
	Close() error
}

// Stores bundles the caches the service uses. Close releases all of them.
type Stores struct {
	Idempotency shared.IdempotencyStore
	Responses   ResponseCache
	// Backend is "redis" or "memory"
	Backend string

	client *redis.Client
}

// Close closes the stores and the Redis client if one was opened
func (s *Stores) Close() error {
	errs := []error{s.Idempotency.Close(), s.Responses.Close()}
	if s.client != nil {
		errs = append(errs, s.client.Close())
	}
	return errors.Join(errs...)
}

// NewRedisClient opens a client and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewStores builds Redis-backed stores when Redis is configured and reachable.
// Otherwise it falls back to in-memory stores and logs why.
func NewStores(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Stores {
	if cfg.Enabled() {
		client, err := NewRedisClient(ctx, cfg)
		if err == nil {
			logger.Info("Using Redis caches", zap.String("addr", cfg.Addr()))
			return &Stores{
				Idempotency: NewRedisIdempotencyStore(client, ""),
				Responses:   NewRedisResponseCache(client, ""),
				Backend:     "redis",
				client:      client,
			}
		}
		logger.Warn("Redis unavailable, using in-memory caches. "+
			"Replicas will not share DOI lookups or event deduplication.",
			zap.Error(err))
	}
	return &Stores{
		Idempotency: NewInMemoryIdempotencyStore(),
		Responses:   NewInMemoryResponseCache(),
		Backend:     "memory",
	}
}
