package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/scholarly/backcontent/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusRunning is returned by Start on a bus that is already running
var ErrBusRunning = errors.New("event bus already running")

type delivery struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus dispatches domain events to subscribed handlers.
//
// With zero workers (the default) Publish runs every handler before returning.
// With workers, events published while the bus is running are queued and
// handled in the background; Stop drains the queue before returning.
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	logger    *zap.Logger
	workers   int
	queueSize int

	mu      sync.RWMutex
	queue   chan delivery
	running bool
	wg      sync.WaitGroup
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithWorkers makes dispatch asynchronous with n background workers
func WithWorkers(n, queueSize int) BusOption {
	return func(b *InMemoryEventBus) {
		b.workers = n
		b.queueSize = queueSize
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.queueSize <= 0 {
		b.queueSize = 64
	}
	return b
}

// Publish hands events to their handlers. Handler failures are logged, never returned.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, e := range events {
		if !b.running || b.queue == nil {
			b.dispatch(ctx, e)
			continue
		}
		// handlers outlive the request that raised the event
		d := delivery{ctx: context.WithoutCancel(ctx), event: e}
		select {
		case b.queue <- d:
		case <-ctx.Done():
			return fmt.Errorf("publish %s: %w", e.EventType(), ctx.Err())
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit types the handler's own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start starts the background workers, if any
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return ErrBusRunning
	}
	b.running = true
	if b.workers > 0 {
		b.queue = make(chan delivery, b.queueSize)
		for i := 0; i < b.workers; i++ {
			b.wg.Add(1)
			go b.work(b.queue)
		}
	}
	b.logger.Info("event bus started", zap.Int("workers", b.workers))
	return nil
}

// Stop stops accepting queued events and waits for the workers to drain the queue,
// or for ctx to end.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	if b.queue != nil {
		close(b.queue)
		b.queue = nil
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus stop: %w", ctx.Err())
	}
}

func (b *InMemoryEventBus) work(queue <-chan delivery) {
	defer b.wg.Done()
	for d := range queue {
		b.dispatch(d.ctx, d.event)
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, e shared.DomainEvent) {
	for _, h := range b.registry.GetHandlers(e.EventType()) {
		if err := b.safeHandle(ctx, h, e); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", e.EventType()),
				zap.String("event_id", e.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

func (b *InMemoryEventBus) safeHandle(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
