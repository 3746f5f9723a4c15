package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

const defaultIdempotencyPrefix = "backcontent:event:idempotency:"

// InMemoryIdempotencyStore keeps processed event IDs in process memory.
// It does not share state between replicas.
type InMemoryIdempotencyStore struct {
	m *ttlMap
}

// NewInMemoryIdempotencyStore creates a store with a background sweeper; call Close to stop it
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{m: newTTLMap(defaultSweepInterval)}
}

// MarkProcessed reports true the first time eventID is seen within ttl
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	return s.m.setNX(eventID, nil, ttl), nil
}

// IsProcessed reports whether eventID was marked and has not expired
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	_, ok := s.m.get(eventID)
	return ok, nil
}

// Size returns the number of stored IDs, expired ones included until swept
func (s *InMemoryIdempotencyStore) Size() int {
	return s.m.len()
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.m.close()
	return nil
}

// RedisIdempotencyStore shares processed event IDs between replicas
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisIdempotencyStore uses client without taking ownership of it
func NewRedisIdempotencyStore(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultIdempotencyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed uses SET NX EX so concurrent replicas agree on the first handler
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+eventID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return ok, nil
}

// IsProcessed reports whether eventID is marked
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if event is processed: %w", err)
	}
	return n > 0, nil
}

// Close is a no-op; the client belongs to whoever created it
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

var (
	_ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
	_ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
)
