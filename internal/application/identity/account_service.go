package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	ErrAccountNotFound = shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
	ErrAccountExists   = shared.NewDomainError("ACCOUNT_EXISTS", "An account with this email already exists")
	ErrJournalNotFound = shared.NewDomainError("JOURNAL_NOT_FOUND", "Journal not found")
)

// AccountService manages the global account directory
type AccountService struct {
	accounts identity.AccountRepository
	journals journal.JournalRepository
	logger   *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts identity.AccountRepository, journals journal.JournalRepository, logger *zap.Logger) *AccountService {
	return &AccountService{accounts: accounts, journals: journals, logger: logger}
}

// CreateAccount registers a new account
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	email := identity.NormalizeEmail(req.Email)
	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	account, err := identity.NewAccount(email, req.Password, req.Profile())
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		s.logger.Error("Failed to create account", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Account created", zap.String("account_id", account.ID.String()))
	resp := ToAccountResponse(account)
	return &resp, nil
}

// GetAccount returns an account by ID
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// FindByEmail returns the account registered under email
func (s *AccountService) FindByEmail(ctx context.Context, email string) (*AccountResponse, error) {
	account, err := s.accounts.FindByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// Search matches email and names case-insensitively
func (s *AccountService) Search(ctx context.Context, query string, filter shared.Filter) (*shared.Paginated[AccountResponse], error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "last_name"
		filter.OrderDir = "asc"
	}
	accounts, total, err := s.accounts.Search(ctx, query, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToAccountResponses(accounts), total, filter.Page, filter.PageSize)
	return &page, nil
}

// GrantRole gives an account a role on a journal. Granting twice is a no-op.
func (s *AccountService) GrantRole(ctx context.Context, accountID, journalID uuid.UUID, role identity.Role) (*AccountResponse, error) {
	if _, err := s.journals.FindByID(ctx, journalID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrJournalNotFound
		}
		return nil, err
	}
	account, err := s.find(ctx, accountID)
	if err != nil {
		return nil, err
	}

	added, err := account.AddRole(journalID, role)
	if err != nil {
		return nil, err
	}
	if added {
		if err := s.accounts.SaveRoles(ctx, account); err != nil {
			return nil, err
		}
		s.logger.Info("Role granted",
			zap.String("account_id", accountID.String()),
			zap.String("journal_id", journalID.String()),
			zap.String("role", string(role)))
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// Deactivate blocks further logins for an account
func (s *AccountService) Deactivate(ctx context.Context, id uuid.UUID) error {
	account, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	account.Deactivate()
	return s.accounts.Update(ctx, account)
}

func (s *AccountService) find(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}
