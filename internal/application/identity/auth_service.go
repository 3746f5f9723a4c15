package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountDeactivated = shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	ErrNotEditor          = shared.NewDomainError("FORBIDDEN", "Account is not an editor of this journal")
)

// TokenIssuer issues and refreshes token pairs
type TokenIssuer interface {
	GenerateTokenPair(input auth.GenerateTokenInput) (*auth.TokenPair, error)
	ValidateRefreshToken(token string) (*auth.Claims, error)
	RefreshTokenPair(refreshToken, email string, roles []string) (*auth.TokenPair, error)
}

// AuthService logs editors in to a journal
type AuthService struct {
	accounts identity.AccountRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(accounts identity.AccountRepository, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, logger: logger}
}

// Login checks the password and issues a token pair bound to the journal.
// Only active accounts holding the editor role on that journal may log in.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := identity.NormalizeEmail(req.Email)
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown account", zap.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.CheckPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("account_id", account.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, ErrAccountDeactivated
	}
	if !account.CanEdit(req.JournalID) {
		s.logger.Warn("Login without editor role",
			zap.String("account_id", account.ID.String()),
			zap.String("journal_id", req.JournalID.String()))
		return nil, ErrNotEditor
	}

	pair, err := s.tokens.GenerateTokenPair(auth.GenerateTokenInput{
		JournalID: req.JournalID,
		AccountID: account.ID,
		Email:     account.Email,
		Roles:     roleNames(account, req.JournalID),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	s.logger.Info("Editor logged in",
		zap.String("account_id", account.ID.String()),
		zap.String("journal_id", req.JournalID.String()))
	return &LoginResult{TokenResponse: toTokenResponse(pair), Account: ToAccountResponse(account)}, nil
}

// Refresh issues a new pair. Roles are reloaded, so an editor who lost the
// role can no longer refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}
	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, mapTokenError(auth.ErrInvalidClaims)
	}
	journalID, err := uuid.Parse(claims.JournalID)
	if err != nil {
		return nil, mapTokenError(auth.ErrInvalidClaims)
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !account.CanEdit(journalID) {
		return nil, ErrNotEditor
	}

	pair, err := s.tokens.RefreshTokenPair(refreshToken, account.Email, roleNames(account, journalID))
	if err != nil {
		return nil, mapTokenError(err)
	}
	resp := toTokenResponse(pair)
	return &resp, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}

func roleNames(a *identity.Account, journalID uuid.UUID) []string {
	roles := a.RolesFor(journalID)
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

func toTokenResponse(p *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           p.AccessToken,
		RefreshToken:          p.RefreshToken,
		AccessTokenExpiresAt:  p.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: p.RefreshTokenExpiresAt,
		TokenType:             p.TokenType,
	}
}
