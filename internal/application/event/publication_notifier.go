package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"go.uber.org/zap"
)

// DefaultActivityCapacity is how many recent entries a notifier keeps
const DefaultActivityCapacity = 200

// ActivityEntry is one back content event as shown in the activity feed
type ActivityEntry struct {
	EventID    uuid.UUID `json:"event_id"`
	Type       string    `json:"type"`
	ArticleID  uuid.UUID `json:"article_id"`
	JournalID  uuid.UUID `json:"journal_id"`
	Number     int       `json:"number"`
	Title      string    `json:"title,omitempty"`
	DOI        string    `json:"doi,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PublicationNotifier logs article lifecycle events and keeps a bounded
// feed of the most recent ones.
type PublicationNotifier struct {
	logger   *zap.Logger
	capacity int

	mu      sync.RWMutex
	entries []ActivityEntry // oldest first
}

// NewPublicationNotifier creates a notifier keeping up to capacity entries
func NewPublicationNotifier(logger *zap.Logger, capacity int) *PublicationNotifier {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &PublicationNotifier{
		logger:   logger,
		capacity: capacity,
		entries:  make([]ActivityEntry, 0, capacity),
	}
}

func (n *PublicationNotifier) EventTypes() []string {
	return []string{submission.EventTypeArticleCreated, submission.EventTypeArticlePublished}
}

// Handle never fails; unknown event types are ignored
func (n *PublicationNotifier) Handle(_ context.Context, e shared.DomainEvent) error {
	entry := ActivityEntry{
		EventID:    e.EventID(),
		Type:       e.EventType(),
		ArticleID:  e.AggregateID(),
		JournalID:  e.JournalID(),
		OccurredAt: e.OccurredAt(),
	}

	switch ev := e.(type) {
	case *submission.ArticlePublishedEvent:
		entry.Number = ev.Number
		entry.Title = ev.Title
		entry.DOI = ev.DOI
		n.logger.Info("Article published",
			zap.String("article_id", ev.AggregateID().String()),
			zap.String("journal_id", ev.JournalID().String()),
			zap.Int("number", ev.Number),
			zap.String("doi", ev.DOI),
			zap.Int("authors", ev.AuthorCount),
			zap.Time("date_published", ev.DatePublished))
	case *submission.ArticleCreatedEvent:
		entry.Number = ev.Number
		n.logger.Info("Article created",
			zap.String("article_id", ev.AggregateID().String()),
			zap.String("journal_id", ev.JournalID().String()),
			zap.Int("number", ev.Number))
	default:
		return nil
	}

	n.mu.Lock()
	if len(n.entries) == n.capacity {
		copy(n.entries, n.entries[1:])
		n.entries = n.entries[:len(n.entries)-1]
	}
	n.entries = append(n.entries, entry)
	n.mu.Unlock()
	return nil
}

// Recent returns up to limit entries of a journal, newest first
func (n *PublicationNotifier) Recent(journalID uuid.UUID, limit int) []ActivityEntry {
	if limit <= 0 || limit > n.capacity {
		limit = n.capacity
	}
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]ActivityEntry, 0, min(limit, len(n.entries)))
	for i := len(n.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if n.entries[i].JournalID == journalID {
			out = append(out, n.entries[i])
		}
	}
	return out
}

var _ shared.EventHandler = (*PublicationNotifier)(nil)
