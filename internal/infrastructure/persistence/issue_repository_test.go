package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormIssueRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormIssueRepository(db)
	ctx := context.Background()

	j := createTestJournal(t, db, "jbc")
	other := createTestJournal(t, db, "other")
	older := createTestIssue(t, db, j.ID, 1, "1", 2018)
	newer := createTestIssue(t, db, j.ID, 2, "1", 2019)
	foreign := createTestIssue(t, db, other.ID, 1, "1", 2018)

	t.Run("finds an issue of the journal", func(t *testing.T) {
		found, err := repo.FindByIDForJournal(ctx, j.ID, older.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, found.Volume)
		assert.Equal(t, "1", found.Number)
		assert.Equal(t, 2018, found.Year)
		assert.Equal(t, j.ID, found.JournalID)
	})

	t.Run("does not find another journal's issue", func(t *testing.T) {
		_, err := repo.FindByIDForJournal(ctx, j.ID, foreign.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("lists newest first", func(t *testing.T) {
		issues, err := repo.FindAllForJournal(ctx, j.ID)
		require.NoError(t, err)
		require.Len(t, issues, 2)
		assert.Equal(t, newer.ID, issues[0].ID)
		assert.Equal(t, older.ID, issues[1].ID)
	})

	t.Run("volume and number uniqueness is per journal", func(t *testing.T) {
		exists, err := repo.ExistsByVolumeNumber(ctx, j.ID, 1, "1")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByVolumeNumber(ctx, j.ID, 3, "1")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("adding an article twice keeps one link", func(t *testing.T) {
		articleID := uuid.New()
		require.NoError(t, repo.AddArticle(ctx, older.ID, articleID))
		require.NoError(t, repo.AddArticle(ctx, older.ID, articleID))

		var count int64
		require.NoError(t, db.Model(&models.IssueArticleModel{}).
			Where("issue_id = ? AND article_id = ?", older.ID, articleID).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
