package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormGalleyRepository implements submission.GalleyRepository using GORM
type GormGalleyRepository struct {
	db *gorm.DB
}

// NewGormGalleyRepository creates a new GormGalleyRepository
func NewGormGalleyRepository(db *gorm.DB) *GormGalleyRepository {
	return &GormGalleyRepository{db: db}
}

// Create inserts galley metadata
func (r *GormGalleyRepository) Create(ctx context.Context, g *submission.Galley) error {
	return r.db.WithContext(ctx).Create(models.GalleyModelFromDomain(g)).Error
}

// FindByID finds a galley within a journal
func (r *GormGalleyRepository) FindByID(ctx context.Context, journalID, id uuid.UUID) (*submission.Galley, error) {
	var model models.GalleyModel
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

// FindByArticle lists an article's galleys in upload order
func (r *GormGalleyRepository) FindByArticle(ctx context.Context, journalID, articleID uuid.UUID) ([]*submission.Galley, error) {
	var galleyModels []models.GalleyModel
	if err := r.db.WithContext(ctx).
		Scopes(ForJournal(journalID)).
		Where("article_id = ?", articleID).
		Order("sequence ASC, created_at ASC").
		Find(&galleyModels).Error; err != nil {
		return nil, err
	}
	galleys := make([]*submission.Galley, len(galleyModels))
	for i := range galleyModels {
		galleys[i] = galleyModels[i].ToDomain()
	}
	return galleys, nil
}

// CountByArticle counts an article's galleys
func (r *GormGalleyRepository) CountByArticle(ctx context.Context, articleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.GalleyModel{}).
		Where("article_id = ?", articleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes galley metadata within a journal
func (r *GormGalleyRepository) Delete(ctx context.Context, journalID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(ForJournal(journalID)).
		Delete(&models.GalleyModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ submission.GalleyRepository = (*GormGalleyRepository)(nil)
