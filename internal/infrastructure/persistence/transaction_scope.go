package persistence

import (
	"context"

	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"gorm.io/gorm"
)

// GormTransactionScope implements backcontent.TransactionScope using GORM transactions.
// Article numbering, author attachment and publishing run through it.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// The transaction is rolled back when fn returns an error and committed otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos backcontent.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Articles() submission.ArticleRepository {
	return NewGormArticleRepository(r.tx)
}

func (r *gormTransactionalRepositories) Galleys() submission.GalleyRepository {
	return NewGormGalleyRepository(r.tx)
}

func (r *gormTransactionalRepositories) Journals() journal.JournalRepository {
	return NewGormJournalRepository(r.tx)
}

func (r *gormTransactionalRepositories) Issues() journal.IssueRepository {
	return NewGormIssueRepository(r.tx)
}

func (r *gormTransactionalRepositories) Accounts() identity.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

var (
	_ backcontent.TransactionScope          = (*GormTransactionScope)(nil)
	_ backcontent.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
