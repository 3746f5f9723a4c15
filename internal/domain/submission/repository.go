package submission

import (
	"context"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// ArticleFilter narrows ListArticles
type ArticleFilter struct {
	shared.Filter
	Stage *Stage
}

// ArticleReader loads articles with their children
type ArticleReader interface {
	FindByIDForJournal(ctx context.Context, journalID, id uuid.UUID) (*Article, error)
	FindAllForJournal(ctx context.Context, journalID uuid.UUID, filter ArticleFilter) ([]*Article, int64, error)
}

// ArticleFinder answers existence questions
type ArticleFinder interface {
	// ExistsByDOI reports whether another article of the journal uses the DOI.
	// excludeID may be uuid.Nil.
	ExistsByDOI(ctx context.Context, journalID uuid.UUID, doi string, excludeID uuid.UUID) (bool, error)
}

// ArticleWriter persists articles.
// Save replaces authors, frozen authors and identifiers and checks the version.
type ArticleWriter interface {
	Create(ctx context.Context, a *Article) error
	Save(ctx context.Context, a *Article) error
}

// ArticleRepository combines reader, finder and writer
type ArticleRepository interface {
	ArticleReader
	ArticleFinder
	ArticleWriter
}

// GalleyRepository persists galley metadata
type GalleyRepository interface {
	Create(ctx context.Context, g *Galley) error
	FindByID(ctx context.Context, journalID, id uuid.UUID) (*Galley, error)
	FindByArticle(ctx context.Context, journalID, articleID uuid.UUID) ([]*Galley, error)
	CountByArticle(ctx context.Context, articleID uuid.UUID) (int64, error)
	Delete(ctx context.Context, journalID, id uuid.UUID) error
}
