package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs a consumer has already handled.
// The NATS forwarder relies on it so a retried publish of article.published
// leaves the process once.
type IdempotencyStore interface {
	// MarkProcessed records eventID for ttl. It reports false when the ID
	// was already recorded and has not expired.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	Close() error
}

// IdempotencyConfig controls how long handled event IDs are remembered
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig remembers event IDs for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
