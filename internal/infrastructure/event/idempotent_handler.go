package event

import (
	"context"
	"sync/atomic"

	"github.com/scholarly/backcontent/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotencyStats is a snapshot of an IdempotentHandler's counters
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

// IdempotentHandler wraps a handler so each event ID is handled at most once per TTL.
// Forwarders use it because retried publishes after a timeout reuse the same event.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig overrides the default TTL and enablement
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

// NewIdempotentHandler wraps handler with store
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, logger *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	h := &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes delegates to the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle marks the event and runs the wrapped handler if it was not seen before.
// A store failure does not drop the event.
func (h *IdempotentHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, e)
	}

	eventID := e.EventID().String()
	isNew, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL)
	switch {
	case err != nil:
		h.logger.Warn("idempotency check failed, handling anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", e.EventType()),
			zap.Error(err),
		)
	case !isNew:
		h.duplicate.Add(1)
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", eventID),
			zap.String("event_type", e.EventType()),
		)
		return nil
	}

	// the key is kept on failure so a hot retry loop cannot hammer the handler
	if err := h.handler.Handle(ctx, e); err != nil {
		h.failed.Add(1)
		return err
	}
	h.processed.Add(1)
	return nil
}

// Stats returns the handler's counters
func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: h.processed.Load(),
		EventsDuplicate: h.duplicate.Load(),
		EventsFailed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
