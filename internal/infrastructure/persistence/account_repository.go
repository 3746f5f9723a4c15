package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements identity.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Create inserts an account and its roles
func (r *GormAccountRepository) Create(ctx context.Context, a *identity.Account) error {
	model := models.AccountModelFromDomain(a)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	if len(model.Roles) == 0 {
		return nil
	}
	return db.Create(&model.Roles).Error
}

// Update saves the profile, password hash and active flag. Roles go through SaveRoles.
func (r *GormAccountRepository) Update(ctx context.Context, a *identity.Account) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"first_name":    a.FirstName,
			"middle_name":   a.MiddleName,
			"last_name":     a.LastName,
			"institution":   a.Institution,
			"department":    a.Department,
			"country":       a.Country,
			"orcid":         a.ORCID,
			"password_hash": a.PasswordHash,
			"is_active":     a.IsActive,
			"version":       a.Version,
			"updated_at":    a.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an account with its roles
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).Preload("Roles").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds several accounts. Missing ids are skipped.
func (r *GormAccountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Account, error) {
	if len(ids) == 0 {
		return []*identity.Account{}, nil
	}
	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("id IN ?", ids).
		Find(&accountModels).Error; err != nil {
		return nil, err
	}
	return toAccounts(accountModels), nil
}

// FindByEmail finds an account by its lower-cased email
func (r *GormAccountRepository) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("email = ?", identity.NormalizeEmail(email)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Search matches email, first name or last name case-insensitively
func (r *GormAccountRepository) Search(ctx context.Context, query string, filter shared.Filter) ([]*identity.Account, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AccountModel{})
	if term := strings.ToLower(strings.TrimSpace(query)); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		q = q.Where("LOWER(email) LIKE ? ESCAPE '\\' OR LOWER(first_name) LIKE ? ESCAPE '\\' OR LOWER(last_name) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accountModels []models.AccountModel
	if err := applyPaging(q, filter, AccountSortFields, "last_name").
		Preload("Roles").
		Find(&accountModels).Error; err != nil {
		return nil, 0, err
	}
	return toAccounts(accountModels), total, nil
}

// SaveRoles replaces the stored roles with a.Roles
func (r *GormAccountRepository) SaveRoles(ctx context.Context, a *identity.Account) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("account_id = ?", a.ID).Delete(&models.AccountRoleModel{}).Error; err != nil {
		return err
	}
	roles := models.AccountRoleModelsFromDomain(a)
	if len(roles) == 0 {
		return nil
	}
	return db.Create(&roles).Error
}

func toAccounts(accountModels []models.AccountModel) []*identity.Account {
	accounts := make([]*identity.Account, len(accountModels))
	for i := range accountModels {
		accounts[i] = accountModels[i].ToDomain()
	}
	return accounts
}

var _ identity.AccountRepository = (*GormAccountRepository)(nil)
