package messaging

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/infrastructure/event"
	"go.uber.org/zap"
)

// Publisher is the part of *nats.Conn the forwarder needs
type Publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// Forwarder republishes domain events as envelope JSON on
// <prefix>.<event type>. The event ID goes in the Nats-Msg-Id header so
// JetStream streams can drop redeliveries.
type Forwarder struct {
	publisher  Publisher
	serializer *event.EventSerializer
	prefix     string
	eventTypes []string
	logger     *zap.Logger
}

// NewForwarder creates a forwarder for the given event types
func NewForwarder(publisher Publisher, serializer *event.EventSerializer, prefix string, logger *zap.Logger, eventTypes ...string) *Forwarder {
	return &Forwarder{
		publisher:  publisher,
		serializer: serializer,
		prefix:     prefix,
		eventTypes: eventTypes,
		logger:     logger,
	}
}

// Subject returns the subject an event type is published on
func Subject(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

func (f *Forwarder) EventTypes() []string {
	return f.eventTypes
}

// Handle publishes the event. NATS publishes are fire and forget, so the
// context is only checked before sending.
func (f *Forwarder) Handle(ctx context.Context, e shared.DomainEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := f.serializer.Encode(e)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(Subject(f.prefix, e.EventType()))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, e.EventID().String())
	msg.Header.Set("Content-Type", "application/json")

	if err := f.publisher.PublishMsg(msg); err != nil {
		f.logger.Error("Failed to forward event",
			zap.String("event_id", e.EventID().String()),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	f.logger.Debug("Event forwarded",
		zap.String("event_id", e.EventID().String()),
		zap.String("subject", msg.Subject))
	return nil
}

// Decode turns a forwarded message back into its domain event
func Decode(serializer *event.EventSerializer, msg *nats.Msg) (shared.DomainEvent, error) {
	return serializer.Decode(msg.Data)
}

var _ shared.EventHandler = (*Forwarder)(nil)
