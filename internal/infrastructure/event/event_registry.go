package event

import "github.com/scholarly/backcontent/internal/domain/submission"

// RegisterAllEvents registers every domain event that leaves the process
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(submission.EventTypeArticleCreated, &submission.ArticleCreatedEvent{})
	serializer.Register(submission.EventTypeArticlePublished, &submission.ArticlePublishedEvent{})
}

// NewDefaultSerializer returns a serializer with all events registered
func NewDefaultSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterAllEvents(s)
	return s
}
