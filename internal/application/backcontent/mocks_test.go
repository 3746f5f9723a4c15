package backcontent

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/stretchr/testify/mock"
)

// ============================================================================
// Mocks
// ============================================================================

type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) FindByIDForJournal(ctx context.Context, journalID, id uuid.UUID) (*submission.Article, error) {
	args := m.Called(ctx, journalID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(uuid.UUID) *submission.Article); ok {
		return fn(id), args.Error(1)
	}
	return args.Get(0).(*submission.Article), args.Error(1)
}

func (m *MockArticleRepository) FindAllForJournal(ctx context.Context, journalID uuid.UUID, filter submission.ArticleFilter) ([]*submission.Article, int64, error) {
	args := m.Called(ctx, journalID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*submission.Article), args.Get(1).(int64), args.Error(2)
}

func (m *MockArticleRepository) ExistsByDOI(ctx context.Context, journalID uuid.UUID, doi string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, journalID, doi, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockArticleRepository) Create(ctx context.Context, a *submission.Article) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockArticleRepository) Save(ctx context.Context, a *submission.Article) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

var _ submission.ArticleRepository = (*MockArticleRepository)(nil)

type MockGalleyRepository struct {
	mock.Mock
}

func (m *MockGalleyRepository) Create(ctx context.Context, g *submission.Galley) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGalleyRepository) FindByID(ctx context.Context, journalID, id uuid.UUID) (*submission.Galley, error) {
	args := m.Called(ctx, journalID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.Galley), args.Error(1)
}

func (m *MockGalleyRepository) FindByArticle(ctx context.Context, journalID, articleID uuid.UUID) ([]*submission.Galley, error) {
	args := m.Called(ctx, journalID, articleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*submission.Galley), args.Error(1)
}

func (m *MockGalleyRepository) CountByArticle(ctx context.Context, articleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, articleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGalleyRepository) Delete(ctx context.Context, journalID, id uuid.UUID) error {
	args := m.Called(ctx, journalID, id)
	return args.Error(0)
}

var _ submission.GalleyRepository = (*MockGalleyRepository)(nil)

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Create(ctx context.Context, j *journal.Journal) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJournalRepository) Update(ctx context.Context, j *journal.Journal) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJournalRepository) FindByID(ctx context.Context, id uuid.UUID) (*journal.Journal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindByCode(ctx context.Context, code string) (*journal.Journal, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindAll(ctx context.Context) ([]*journal.Journal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*journal.Journal), args.Error(1)
}

func (m *MockJournalRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalRepository) NextArticleNumber(ctx context.Context, journalID uuid.UUID) (int, error) {
	args := m.Called(ctx, journalID)
	return args.Int(0), args.Error(1)
}

var _ journal.JournalRepository = (*MockJournalRepository)(nil)

type MockIssueRepository struct {
	mock.Mock
}

func (m *MockIssueRepository) Create(ctx context.Context, issue *journal.Issue) error {
	args := m.Called(ctx, issue)
	return args.Error(0)
}

func (m *MockIssueRepository) FindByIDForJournal(ctx context.Context, journalID, id uuid.UUID) (*journal.Issue, error) {
	args := m.Called(ctx, journalID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Issue), args.Error(1)
}

func (m *MockIssueRepository) FindAllForJournal(ctx context.Context, journalID uuid.UUID) ([]*journal.Issue, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*journal.Issue), args.Error(1)
}

func (m *MockIssueRepository) ExistsByVolumeNumber(ctx context.Context, journalID uuid.UUID, volume int, number string) (bool, error) {
	args := m.Called(ctx, journalID, volume, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockIssueRepository) AddArticle(ctx context.Context, issueID, articleID uuid.UUID) error {
	args := m.Called(ctx, issueID, articleID)
	return args.Error(0)
}

var _ journal.IssueRepository = (*MockIssueRepository)(nil)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, a *identity.Account) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, a *identity.Account) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Account, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) Search(ctx context.Context, query string, filter shared.Filter) ([]*identity.Account, int64, error) {
	args := m.Called(ctx, query, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*identity.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) SaveRoles(ctx context.Context, a *identity.Account) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

var _ identity.AccountRepository = (*MockAccountRepository)(nil)

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, storageKey, contentType string, body io.Reader, size int64) error {
	args := m.Called(ctx, storageKey, contentType, body, size)
	return args.Error(0)
}

func (m *MockObjectStorage) Download(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	args := m.Called(ctx, storageKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

var _ ObjectStorage = (*MockObjectStorage)(nil)

type MockDOIResolver struct {
	mock.Mock
}

func (m *MockDOIResolver) Resolve(ctx context.Context, doi string) (*submission.ImportedMetadata, error) {
	args := m.Called(ctx, doi)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.ImportedMetadata), args.Error(1)
}

type MockCitationScraper struct {
	mock.Mock
}

func (m *MockCitationScraper) Scrape(ctx context.Context, pageURL string) (*submission.ImportedMetadata, error) {
	args := m.Called(ctx, pageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.ImportedMetadata), args.Error(1)
}

type MockJATSParser struct {
	mock.Mock
}

func (m *MockJATSParser) Parse(r io.Reader) (*submission.ImportedMetadata, error) {
	args := m.Called(r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.ImportedMetadata), args.Error(1)
}

type MockJATSRenderer struct {
	mock.Mock
}

func (m *MockJATSRenderer) RenderHTML(r io.Reader) (string, error) {
	args := m.Called(r)
	return args.String(0), args.Error(1)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// recordingMetrics counts observations by name
type recordingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counts: make(map[string]int)}
}

func (r *recordingMetrics) inc(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[key]++
}

func (r *recordingMetrics) get(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

func (r *recordingMetrics) ArticleCreated(source string)     { r.inc("created:" + source) }
func (r *recordingMetrics) ArticlePublished()                { r.inc("published") }
func (r *recordingMetrics) ImportFailed(source, code string) { r.inc("failed:" + source + ":" + code) }
func (r *recordingMetrics) GalleyUploaded(label string, _ int64) {
	r.inc("galley:" + label)
}

// ============================================================================
// Fixture
// ============================================================================

type fixture struct {
	articles *MockArticleRepository
	galleys  *MockGalleyRepository
	journals *MockJournalRepository
	issues   *MockIssueRepository
	accounts *MockAccountRepository
	storage  *MockObjectStorage
	tx       *NoOpTransactionScope
}

func newFixture() *fixture {
	f := &fixture{
		articles: new(MockArticleRepository),
		galleys:  new(MockGalleyRepository),
		journals: new(MockJournalRepository),
		issues:   new(MockIssueRepository),
		accounts: new(MockAccountRepository),
		storage:  new(MockObjectStorage),
	}
	f.tx = NewNoOpTransactionScope(f.articles, f.galleys, f.journals, f.issues, f.accounts)
	return f
}

func newTestAccount(email, first, last string) *identity.Account {
	return &identity.Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		FirstName:         first,
		LastName:          last,
		IsActive:          true,
	}
}
