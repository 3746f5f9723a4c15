package backcontent

import (
	"context"
	"io"
	"time"

	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/domain/submission"
)

// TransactionScope runs repository work atomically.
// If fn returns an error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to one transaction
type TransactionalRepositories interface {
	Articles() submission.ArticleRepository
	Galleys() submission.GalleyRepository
	Journals() journal.JournalRepository
	Issues() journal.IssueRepository
	Accounts() identity.AccountRepository
}

// ObjectStorage stores galley files
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey, contentType string, body io.Reader, size int64) error
	Download(ctx context.Context, storageKey string) (io.ReadCloser, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// DOIResolver looks a DOI up in a metadata registry
type DOIResolver interface {
	Resolve(ctx context.Context, doi string) (*submission.ImportedMetadata, error)
}

// CitationScraper reads citation meta tags from a web page
type CitationScraper interface {
	Scrape(ctx context.Context, pageURL string) (*submission.ImportedMetadata, error)
}

// JATSParser reads article front matter from a JATS document
type JATSParser interface {
	Parse(r io.Reader) (*submission.ImportedMetadata, error)
}

// JATSRenderer turns a JATS document into an HTML preview
type JATSRenderer interface {
	RenderHTML(r io.Reader) (string, error)
}

// Metrics records back content activity
type Metrics interface {
	ArticleCreated(source string)
	ArticlePublished()
	ImportFailed(source, code string)
	GalleyUploaded(label string, size int64)
}

// NoopMetrics discards every observation
type NoopMetrics struct{}

func (NoopMetrics) ArticleCreated(string)        {}
func (NoopMetrics) ArticlePublished()            {}
func (NoopMetrics) ImportFailed(string, string)  {}
func (NoopMetrics) GalleyUploaded(string, int64) {}

var _ Metrics = NoopMetrics{}

// NoOpTransactionScope calls fn with fixed repositories and no transaction.
// It is used in tests and by tools that do not need atomicity.
type NoOpTransactionScope struct {
	articles submission.ArticleRepository
	galleys  submission.GalleyRepository
	journals journal.JournalRepository
	issues   journal.IssueRepository
	accounts identity.AccountRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	articles submission.ArticleRepository,
	galleys submission.GalleyRepository,
	journals journal.JournalRepository,
	issues journal.IssueRepository,
	accounts identity.AccountRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		articles: articles,
		galleys:  galleys,
		journals: journals,
		issues:   issues,
		accounts: accounts,
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Articles() submission.ArticleRepository { return s.articles }
func (s *NoOpTransactionScope) Galleys() submission.GalleyRepository   { return s.galleys }
func (s *NoOpTransactionScope) Journals() journal.JournalRepository    { return s.journals }
func (s *NoOpTransactionScope) Issues() journal.IssueRepository        { return s.issues }
func (s *NoOpTransactionScope) Accounts() identity.AccountRepository   { return s.accounts }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
