package submission

import (
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// AggregateTypeArticle names the article aggregate in events
const AggregateTypeArticle = "Article"

// Article domain event types
const (
	EventTypeArticleCreated   = "article.created"
	EventTypeArticlePublished = "article.published"
)

// ArticleCreatedEvent is raised when a blank or imported record is created
type ArticleCreatedEvent struct {
	shared.BaseDomainEvent
	Number int `json:"number"`
}

// NewArticleCreatedEvent creates an ArticleCreatedEvent
func NewArticleCreatedEvent(a *Article) *ArticleCreatedEvent {
	return &ArticleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeArticleCreated, AggregateTypeArticle, a.ID, a.JournalID),
		Number:          a.Number,
	}
}

// ArticlePublishedEvent is raised after the publication gate succeeds
type ArticlePublishedEvent struct {
	shared.BaseDomainEvent
	Number        int        `json:"number"`
	Title         string     `json:"title"`
	DOI           string     `json:"doi,omitempty"`
	DatePublished time.Time  `json:"date_published"`
	AuthorCount   int        `json:"author_count"`
	IssueID       *uuid.UUID `json:"issue_id,omitempty"`
}

// NewArticlePublishedEvent creates an ArticlePublishedEvent
func NewArticlePublishedEvent(a *Article) *ArticlePublishedEvent {
	e := &ArticlePublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeArticlePublished, AggregateTypeArticle, a.ID, a.JournalID),
		Number:          a.Number,
		Title:           a.Title,
		DOI:             a.DOI(),
		AuthorCount:     len(a.FrozenAuthors),
		IssueID:         a.PrimaryIssueID,
	}
	if a.DatePublished != nil {
		e.DatePublished = *a.DatePublished
	}
	return e
}
