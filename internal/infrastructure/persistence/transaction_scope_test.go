package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_Commit(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	j := createTestJournal(t, db, "jbc")

	var created *submission.Article
	err := scope.Execute(ctx, func(repos backcontent.TransactionalRepositories) error {
		n, err := repos.Journals().NextArticleNumber(ctx, j.ID)
		if err != nil {
			return err
		}
		created = submission.NewArticle(j.ID, n)
		return repos.Articles().Create(ctx, created)
	})
	require.NoError(t, err)

	found, err := NewGormArticleRepository(db).FindByIDForJournal(ctx, j.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.Number)
}

func TestGormTransactionScope_Rollback(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	j := createTestJournal(t, db, "jbc")
	boom := errors.New("boom")

	var created *submission.Article
	err := scope.Execute(ctx, func(repos backcontent.TransactionalRepositories) error {
		n, err := repos.Journals().NextArticleNumber(ctx, j.ID)
		if err != nil {
			return err
		}
		created = submission.NewArticle(j.ID, n)
		if err := repos.Articles().Create(ctx, created); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewGormArticleRepository(db).FindByIDForJournal(ctx, j.ID, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	reloaded, err := NewGormJournalRepository(db).FindByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.ArticleSeq)
}
