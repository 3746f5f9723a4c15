package journal

import (
	"context"

	"github.com/google/uuid"
)

// JournalRepository persists journals
type JournalRepository interface {
	Create(ctx context.Context, j *Journal) error
	Update(ctx context.Context, j *Journal) error
	FindByID(ctx context.Context, id uuid.UUID) (*Journal, error)
	FindByCode(ctx context.Context, code string) (*Journal, error)
	FindAll(ctx context.Context) ([]*Journal, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// NextArticleNumber increments and returns the article sequence.
	// It must run inside the caller's transaction so the number is not reused.
	NextArticleNumber(ctx context.Context, journalID uuid.UUID) (int, error)
}

// IssueRepository persists issues and the issue-article membership
type IssueRepository interface {
	Create(ctx context.Context, issue *Issue) error
	FindByIDForJournal(ctx context.Context, journalID, id uuid.UUID) (*Issue, error)
	FindAllForJournal(ctx context.Context, journalID uuid.UUID) ([]*Issue, error)
	ExistsByVolumeNumber(ctx context.Context, journalID uuid.UUID, volume int, number string) (bool, error)

	// AddArticle links an article to an issue. Linking twice is a no-op.
	AddArticle(ctx context.Context, issueID, articleID uuid.UUID) error
}
