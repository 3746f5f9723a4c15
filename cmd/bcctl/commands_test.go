package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/scholarly/backcontent/internal/application/backcontent"
	identityapp "github.com/scholarly/backcontent/internal/application/identity"
	journalapp "github.com/scholarly/backcontent/internal/application/journal"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/infrastructure/config"
	"github.com/scholarly/backcontent/internal/infrastructure/persistence/models"
	"github.com/scholarly/backcontent/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubResolver map[string]*submission.ImportedMetadata

func (s stubResolver) Resolve(_ context.Context, doi string) (*submission.ImportedMetadata, error) {
	if meta, ok := s[doi]; ok {
		copied := *meta
		return &copied, nil
	}
	return nil, submission.ErrDOINotFound
}

type stubScraper struct{}

func (stubScraper) Scrape(_ context.Context, _ string) (*submission.ImportedMetadata, error) {
	return &submission.ImportedMetadata{Title: "Scraped title"}, nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

const jatsDocument = `<?xml version="1.0" encoding="UTF-8"?>
<article xml:lang="en">
<front><article-meta>
<title-group><article-title>Tidal pools revisited</article-title></title-group>
<contrib-group><contrib contrib-type="author"><name><surname>Carson</surname><given-names>Rachel</given-names></name></contrib></contrib-group>
<pub-date pub-type="ppub"><year>1951</year></pub-date>
</article-meta></front>
</article>`

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.JournalModel{},
		&models.IssueModel{},
		&models.IssueArticleModel{},
		&models.AccountModel{},
		&models.AccountRoleModel{},
		&models.ArticleModel{},
		&models.ArticleAuthorModel{},
		&models.FrozenAuthorModel{},
		&models.ArticleIdentifierModel{},
		&models.GalleyModel{},
	))
	return db
}

type cli struct {
	ctx       *commandContext
	publisher *recordingPublisher
}

func newTestCLI(t *testing.T) *cli {
	t.Helper()
	publisher := &recordingPublisher{}
	resolver := stubResolver{
		"10.5555/known.1": {
			Title:   "A resolved article",
			Authors: []submission.ImportedAuthor{{Given: "Ada", Family: "Byron"}},
		},
	}
	log := zap.NewNop()

	ctx := newCommandContext(nil, nil)
	ctx.config = &config.Config{}
	ctx.log = log
	ctx.svc = newServices(setupTestDB(t), resolver, stubScraper{}, storage.NewMemoryObjectStorage("memory://test"), publisher, log)
	return &cli{ctx: ctx, publisher: publisher}
}

// run executes one command line and returns its stdout
func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var configFlag, logLevel string
	root := buildRootCommand(c.ctx, &configFlag, &logLevel)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestJournalCommands(t *testing.T) {
	c := newTestCLI(t)

	out, err := c.run(t, "journal", "create", "jbc", "Journal of Back Content", "--doi-prefix", "10.1234")
	require.NoError(t, err)
	j := decode[journalapp.JournalResponse](t, out)
	assert.Equal(t, "jbc", j.Code)
	assert.Equal(t, "10.1234", j.DOIPrefix)

	out, err = c.run(t, "journal", "list")
	require.NoError(t, err)
	list := decode[[]journalapp.JournalResponse](t, out)
	require.Len(t, list, 1)
	assert.Equal(t, j.ID, list[0].ID)

	_, err = c.run(t, "journal", "create", "jbc", "Duplicate")
	assert.Error(t, err)
}

func TestAccountCommands(t *testing.T) {
	c := newTestCLI(t)
	_, err := c.run(t, "journal", "create", "jbc", "Journal of Back Content")
	require.NoError(t, err)

	t.Run("create requires a password", func(t *testing.T) {
		_, err := c.run(t, "account", "create", "ed@example.org")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password")
	})

	out, err := c.run(t, "account", "create", "ed@example.org",
		"--password", "correct horse", "--first-name", "Edith", "--last-name", "Editor")
	require.NoError(t, err)
	account := decode[identityapp.AccountResponse](t, out)
	assert.Equal(t, "ed@example.org", account.Email)

	t.Run("grant by email and journal code", func(t *testing.T) {
		out, err := c.run(t, "account", "grant", "ed@example.org", "--journal", "jbc")
		require.NoError(t, err)
		granted := decode[identityapp.AccountResponse](t, out)
		require.Len(t, granted.Roles, 1)
		assert.Equal(t, "editor", granted.Roles[0].Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := c.run(t, "account", "grant", account.ID.String(), "--journal", "jbc", "--role", "publisher")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown role")
	})

	t.Run("unknown journal", func(t *testing.T) {
		_, err := c.run(t, "account", "grant", "ed@example.org", "--journal", "nope")
		assert.Error(t, err)
	})
}

func TestImportAndPublish(t *testing.T) {
	c := newTestCLI(t)
	_, err := c.run(t, "journal", "create", "jbc", "Journal of Back Content", "--doi-prefix", "10.1234")
	require.NoError(t, err)

	out, err := c.run(t, "import", "doi", "10.5555/known.1", "--journal", "jbc")
	require.NoError(t, err)
	imported := decode[backcontent.ImportResult](t, out)
	assert.Equal(t, "A resolved article", imported.Article.Title)

	_, err = c.run(t, "import", "doi", "10.5555/missing", "--journal", "jbc")
	require.Error(t, err)
	assert.ErrorIs(t, err, submission.ErrDOINotFound)

	path := filepath.Join(t.TempDir(), "tidal.xml")
	require.NoError(t, os.WriteFile(path, []byte(jatsDocument), 0o600))
	out, err = c.run(t, "import", "jats", path, "--journal", "jbc")
	require.NoError(t, err)
	fromJATS := decode[backcontent.ImportResult](t, out)
	assert.Equal(t, "Tidal pools revisited", fromJATS.Article.Title)

	t.Run("publish mints a DOI from the journal pattern", func(t *testing.T) {
		out, err := c.run(t, "publish", fromJATS.Article.ID.String(), "--journal", "jbc")
		require.NoError(t, err)
		published := decode[backcontent.PublishResult](t, out)
		assert.True(t, published.DOIAssigned)
		assert.Equal(t, "10.1234/jbc.2", published.DOI)

		_, err = c.run(t, "publish", fromJATS.Article.ID.String(), "--journal", "jbc")
		assert.ErrorIs(t, err, submission.ErrArticleAlreadyPublished)
	})

	t.Run("publish keeps an imported DOI", func(t *testing.T) {
		out, err := c.run(t, "publish", imported.Article.ID.String(), "--journal", "jbc")
		require.NoError(t, err)
		published := decode[backcontent.PublishResult](t, out)
		assert.False(t, published.DOIAssigned)
		assert.Equal(t, "10.5555/known.1", published.DOI)
	})

	assert.Contains(t, c.publisher.types(), submission.EventTypeArticlePublished)

	_, err = c.run(t, "publish", "not-a-uuid", "--journal", "jbc")
	assert.Error(t, err)
}
