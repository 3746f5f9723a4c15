package shared

import "context"

// EventHandler reacts to domain events such as article.published
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types the handler wants; nil means every type.
	EventTypes() []string
}

// EventPublisher is what application services emit events through
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is a publisher with subscribers and a lifecycle.
// Subscribing with no event types falls back to the handler's EventTypes,
// and to every event when that is empty too. Stop delivers whatever is
// still queued before returning.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
