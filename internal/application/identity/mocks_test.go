package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/infrastructure/auth"
	"github.com/stretchr/testify/mock"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, a *identity.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, a *identity.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Account, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) Search(ctx context.Context, query string, filter shared.Filter) ([]*identity.Account, int64, error) {
	args := m.Called(ctx, query, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*identity.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) SaveRoles(ctx context.Context, a *identity.Account) error {
	return m.Called(ctx, a).Error(0)
}

var _ identity.AccountRepository = (*MockAccountRepository)(nil)

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Create(ctx context.Context, j *journal.Journal) error {
	return m.Called(ctx, j).Error(0)
}

func (m *MockJournalRepository) Update(ctx context.Context, j *journal.Journal) error {
	return m.Called(ctx, j).Error(0)
}

func (m *MockJournalRepository) FindByID(ctx context.Context, id uuid.UUID) (*journal.Journal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindByCode(ctx context.Context, code string) (*journal.Journal, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindAll(ctx context.Context) ([]*journal.Journal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*journal.Journal), args.Error(1)
}

func (m *MockJournalRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalRepository) NextArticleNumber(ctx context.Context, journalID uuid.UUID) (int, error) {
	args := m.Called(ctx, journalID)
	return args.Int(0), args.Error(1)
}

var _ journal.JournalRepository = (*MockJournalRepository)(nil)

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateTokenPair(input auth.GenerateTokenInput) (*auth.TokenPair, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TokenPair), args.Error(1)
}

func (m *MockTokenIssuer) ValidateRefreshToken(token string) (*auth.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

func (m *MockTokenIssuer) RefreshTokenPair(refreshToken, email string, roles []string) (*auth.TokenPair, error) {
	args := m.Called(refreshToken, email, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TokenPair), args.Error(1)
}

var _ TokenIssuer = (*MockTokenIssuer)(nil)
