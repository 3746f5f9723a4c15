package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every back content table
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Each new connection would get its own empty in-memory database
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

func createTestJournal(t *testing.T, db *gorm.DB, code string) *journal.Journal {
	t.Helper()
	j, err := journal.NewJournal(code, "Journal "+code)
	require.NoError(t, err)
	require.NoError(t, NewGormJournalRepository(db).Create(context.Background(), j))
	return j
}

func createTestAccount(t *testing.T, db *gorm.DB, email, first, last string) *identity.Account {
	t.Helper()
	a, err := identity.NewAccount(email, "password123", identity.Profile{FirstName: first, LastName: last})
	require.NoError(t, err)
	require.NoError(t, NewGormAccountRepository(db).Create(context.Background(), a))
	return a
}

func createTestIssue(t *testing.T, db *gorm.DB, journalID uuid.UUID, volume int, number string, year int) *journal.Issue {
	t.Helper()
	issue, err := journal.NewIssue(journalID, volume, number, year)
	require.NoError(t, err)
	require.NoError(t, NewGormIssueRepository(db).Create(context.Background(), issue))
	return issue
}
