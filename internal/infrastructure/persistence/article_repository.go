package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormArticleRepository implements submission.ArticleRepository using GORM
type GormArticleRepository struct {
	db *gorm.DB
}

// NewGormArticleRepository creates a new GormArticleRepository
func NewGormArticleRepository(db *gorm.DB) *GormArticleRepository {
	return &GormArticleRepository{db: db}
}

// ==================== ArticleReader Interface ====================

// FindByIDForJournal loads an article of the journal with its children
func (r *GormArticleRepository) FindByIDForJournal(ctx context.Context, journalID, id uuid.UUID) (*submission.Article, error) {
	var model models.ArticleModel
	if err := r.withChildren(r.db.WithContext(ctx)).
		Scopes(ForJournal(journalID)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForJournal lists the journal's articles filtered by stage and a title search
func (r *GormArticleRepository) FindAllForJournal(ctx context.Context, journalID uuid.UUID, filter submission.ArticleFilter) ([]*submission.Article, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ArticleModel{}).Scopes(ForJournal(journalID))
	if filter.Stage != nil {
		q = q.Where("stage = ?", *filter.Stage)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		q = q.Where("LOWER(title) LIKE ? ESCAPE '\\'", "%"+escapeLike(term)+"%")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articleModels []models.ArticleModel
	if err := r.withChildren(applyPaging(q, filter.Filter, ArticleSortFields, "created_at")).
		Find(&articleModels).Error; err != nil {
		return nil, 0, err
	}

	articles := make([]*submission.Article, len(articleModels))
	for i := range articleModels {
		articles[i] = articleModels[i].ToDomain()
	}
	return articles, total, nil
}

// ==================== ArticleFinder Interface ====================

// ExistsByDOI reports whether another article of the journal carries the DOI.
// DOIs compare case-insensitively.
func (r *GormArticleRepository) ExistsByDOI(ctx context.Context, journalID uuid.UUID, doi string, excludeID uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).
		Table("article_identifiers AS ai").
		Joins("JOIN articles AS a ON a.id = ai.article_id").
		Where("a.journal_id = ? AND ai.type = ? AND LOWER(ai.value) = ?",
			journalID, submission.IdentifierDOI, strings.ToLower(strings.TrimSpace(doi)))
	if excludeID != uuid.Nil {
		q = q.Where("a.id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ==================== ArticleWriter Interface ====================

// Create inserts a new article with its children
func (r *GormArticleRepository) Create(ctx context.Context, a *submission.Article) error {
	model := models.ArticleModelFromDomain(a)
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		return r.insertChildren(db, model)
	})
}

// Save updates the article when the stored version is the one it was loaded at,
// then replaces its authors, frozen authors and identifiers. The row and its
// children are written in one transaction, a savepoint inside a TransactionScope.
func (r *GormArticleRepository) Save(ctx context.Context, a *submission.Article) error {
	model := models.ArticleModelFromDomain(a)
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return r.save(db, a, model)
	})
}

func (r *GormArticleRepository) save(db *gorm.DB, a *submission.Article, model *models.ArticleModel) error {
	result := db.Model(&models.ArticleModel{}).
		Where("id = ? AND journal_id = ? AND version = ?", a.ID, a.JournalID, a.Version-1).
		Updates(map[string]interface{}{
			"stage":                    model.Stage,
			"title":                    model.Title,
			"subtitle":                 model.Subtitle,
			"abstract":                 model.Abstract,
			"language":                 model.Language,
			"keywords":                 keywordsJSON(model.Keywords),
			"section":                  model.Section,
			"license":                  model.License,
			"correspondence_author_id": model.CorrespondenceAuthorID,
			"date_accepted":            model.DateAccepted,
			"date_published":           model.DatePublished,
			"page_numbers":             model.PageNumbers,
			"primary_issue_id":         model.PrimaryIssueID,
			"peer_reviewed":            model.PeerReviewed,
			"is_remote":                model.IsRemote,
			"remote_url":               model.RemoteURL,
			"version":                  model.Version,
			"updated_at":               model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	for _, child := range []interface{}{
		&models.ArticleAuthorModel{},
		&models.FrozenAuthorModel{},
		&models.ArticleIdentifierModel{},
	} {
		if err := db.Where("article_id = ?", a.ID).Delete(child).Error; err != nil {
			return err
		}
	}
	return r.insertChildren(db, model)
}

func (r *GormArticleRepository) insertChildren(db *gorm.DB, model *models.ArticleModel) error {
	if len(model.Authors) > 0 {
		if err := db.Create(&model.Authors).Error; err != nil {
			return err
		}
	}
	if len(model.FrozenAuthors) > 0 {
		if err := db.Create(&model.FrozenAuthors).Error; err != nil {
			return err
		}
	}
	if len(model.Identifiers) > 0 {
		if err := db.Create(&model.Identifiers).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormArticleRepository) withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Authors", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("FrozenAuthors", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("Identifiers")
}

// keywordsJSON encodes keywords the way the json serializer on ArticleModel does.
// Map updates bypass field serializers.
func keywordsJSON(keywords []string) string {
	if keywords == nil {
		keywords = []string{}
	}
	b, _ := json.Marshal(keywords)
	return string(b)
}

var _ submission.ArticleRepository = (*GormArticleRepository)(nil)
