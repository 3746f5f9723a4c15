package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultResponsePrefix = "backcontent:crossref:"

// InMemoryResponseCache caches registry responses in process memory
type InMemoryResponseCache struct {
	m *ttlMap
}

// NewInMemoryResponseCache creates a cache with a background sweeper; call Close to stop it
func NewInMemoryResponseCache() *InMemoryResponseCache {
	return &InMemoryResponseCache{m: newTTLMap(defaultSweepInterval)}
}

// Get returns a cached body
func (c *InMemoryResponseCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.m.get(key)
	return v, ok, nil
}

// Set stores body for ttl
func (c *InMemoryResponseCache) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	c.m.set(key, body, ttl)
	return nil
}

// Close stops the sweeper
func (c *InMemoryResponseCache) Close() error {
	c.m.close()
	return nil
}

// RedisResponseCache caches registry responses in Redis so replicas share lookups
type RedisResponseCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisResponseCache uses client without taking ownership of it
func NewRedisResponseCache(client redis.UniversalClient, keyPrefix string) *RedisResponseCache {
	if keyPrefix == "" {
		keyPrefix = defaultResponsePrefix
	}
	return &RedisResponseCache{client: client, keyPrefix: keyPrefix}
}

// Get returns a cached body; a missing key is a miss, not an error
func (c *RedisResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores body for ttl
func (c *RedisResponseCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, body, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the client belongs to whoever created it
func (c *RedisResponseCache) Close() error {
	return nil
}
