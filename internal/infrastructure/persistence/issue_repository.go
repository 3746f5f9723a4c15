package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormIssueRepository implements journal.IssueRepository using GORM
type GormIssueRepository struct {
	db *gorm.DB
}

// NewGormIssueRepository creates a new GormIssueRepository
func NewGormIssueRepository(db *gorm.DB) *GormIssueRepository {
	return &GormIssueRepository{db: db}
}

// Create inserts a new issue
func (r *GormIssueRepository) Create(ctx context.Context, issue *journal.Issue) error {
	return r.db.WithContext(ctx).Create(models.IssueModelFromDomain(issue)).Error
}

// FindByIDForJournal finds an issue owned by the journal
func (r *GormIssueRepository) FindByIDForJournal(ctx context.Context, journalID, id uuid.UUID) (*journal.Issue, error) {
	var model models.IssueModel
	if err := r.db.WithContext(ctx).
		Scopes(ForJournal(journalID)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForJournal lists the journal's issues, newest first
func (r *GormIssueRepository) FindAllForJournal(ctx context.Context, journalID uuid.UUID) ([]*journal.Issue, error) {
	var issueModels []models.IssueModel
	if err := r.db.WithContext(ctx).
		Scopes(ForJournal(journalID)).
		Order("year DESC, volume DESC, number DESC").
		Find(&issueModels).Error; err != nil {
		return nil, err
	}
	issues := make([]*journal.Issue, len(issueModels))
	for i := range issueModels {
		issues[i] = issueModels[i].ToDomain()
	}
	return issues, nil
}

// ExistsByVolumeNumber checks the (journal, volume, number) uniqueness rule
func (r *GormIssueRepository) ExistsByVolumeNumber(ctx context.Context, journalID uuid.UUID, volume int, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.IssueModel{}).
		Scopes(ForJournal(journalID)).
		Where("volume = ? AND number = ?", volume, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddArticle links an article to an issue. An existing link is left untouched.
func (r *GormIssueRepository) AddArticle(ctx context.Context, issueID, articleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.IssueArticleModel{
			IssueID:   issueID,
			ArticleID: articleID,
			CreatedAt: time.Now(),
		}).Error
}

var _ journal.IssueRepository = (*GormIssueRepository)(nil)
