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
)

// GormJournalRepository implements journal.JournalRepository using GORM
type GormJournalRepository struct {
	db *gorm.DB
}

// NewGormJournalRepository creates a new GormJournalRepository
func NewGormJournalRepository(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// Create inserts a new journal
func (r *GormJournalRepository) Create(ctx context.Context, j *journal.Journal) error {
	return r.db.WithContext(ctx).Create(models.JournalModelFromDomain(j)).Error
}

// Update saves the journal settings. The article sequence is only changed by NextArticleNumber.
func (r *GormJournalRepository) Update(ctx context.Context, j *journal.Journal) error {
	result := r.db.WithContext(ctx).
		Model(&models.JournalModel{}).
		Where("id = ?", j.ID).
		Updates(map[string]interface{}{
			"name":        j.Name,
			"issn":        j.ISSN,
			"doi_prefix":  j.DOIPrefix,
			"doi_pattern": j.DOIPattern,
			"version":     j.Version,
			"updated_at":  j.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a journal by its ID
func (r *GormJournalRepository) FindByID(ctx context.Context, id uuid.UUID) (*journal.Journal, error) {
	var model models.JournalModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a journal by its code
func (r *GormJournalRepository) FindByCode(ctx context.Context, code string) (*journal.Journal, error) {
	var model models.JournalModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists every journal by code
func (r *GormJournalRepository) FindAll(ctx context.Context) ([]*journal.Journal, error) {
	var journalModels []models.JournalModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&journalModels).Error; err != nil {
		return nil, err
	}
	journals := make([]*journal.Journal, len(journalModels))
	for i := range journalModels {
		journals[i] = journalModels[i].ToDomain()
	}
	return journals, nil
}

// ExistsByCode checks if a journal code is taken
func (r *GormJournalRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.JournalModel{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextArticleNumber increments the journal's article sequence and reads it back.
// Inside a transaction the UPDATE holds the row lock until commit, so concurrent
// creators never observe the same number.
func (r *GormJournalRepository) NextArticleNumber(ctx context.Context, journalID uuid.UUID) (int, error) {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.JournalModel{}).
		Where("id = ?", journalID).
		Updates(map[string]interface{}{
			"article_seq": gorm.Expr("article_seq + 1"),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, shared.ErrNotFound
	}

	var seq int
	if err := db.Model(&models.JournalModel{}).
		Where("id = ?", journalID).
		Pluck("article_seq", &seq).Error; err != nil {
		return 0, err
	}
	return seq, nil
}

var _ journal.JournalRepository = (*GormJournalRepository)(nil)
