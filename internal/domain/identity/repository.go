package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// AccountRepository persists the global account directory
type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	Update(ctx context.Context, a *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Account, error)

	// FindByEmail matches the lower-cased email
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// Search matches email, first name or last name case-insensitively
	Search(ctx context.Context, query string, filter shared.Filter) ([]*Account, int64, error)

	// SaveRoles replaces the stored roles with a.Roles
	SaveRoles(ctx context.Context, a *Account) error
}
