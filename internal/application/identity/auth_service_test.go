package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/infrastructure/auth"
	"github.com/scholarly/backcontent/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEditor(t *testing.T, journalID uuid.UUID) *identity.Account {
	t.Helper()
	a, err := identity.NewAccount("editor@example.org", "s3cret-pass", identity.Profile{FirstName: "Eda", LastName: "Tor"})
	require.NoError(t, err)
	_, err = a.AddRole(journalID, identity.RoleEditor)
	require.NoError(t, err)
	return a
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "backcontent-test",
		MaxRefreshCount:        3,
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	journalID := uuid.New()
	editor := newEditor(t, journalID)
	jwt := newJWT()

	accounts := new(MockAccountRepository)
	accounts.On("FindByEmail", ctx, "editor@example.org").Return(editor, nil)
	accounts.On("FindByEmail", ctx, "ghost@example.org").Return(nil, shared.ErrNotFound)
	svc := NewAuthService(accounts, jwt, zap.NewNop())

	t.Run("editor receives a journal-bound token", func(t *testing.T) {
		res, err := svc.Login(ctx, LoginRequest{Email: "Editor@Example.org", Password: "s3cret-pass", JournalID: journalID})
		require.NoError(t, err)

		claims, err := jwt.ValidateAccessToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, journalID.String(), claims.JournalID)
		assert.Equal(t, editor.ID.String(), claims.AccountID)
		assert.True(t, claims.HasRole("editor"))
		assert.Equal(t, "Eda Tor", res.Account.FullName)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Email: "editor@example.org", Password: "nope-nope", JournalID: journalID})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown account looks like a wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Email: "ghost@example.org", Password: "whatever1", JournalID: journalID})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("editor of another journal", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Email: "editor@example.org", Password: "s3cret-pass", JournalID: uuid.New()})
		assert.ErrorIs(t, err, ErrNotEditor)
	})
}

func TestAuthService_Login_Deactivated(t *testing.T) {
	ctx := context.Background()
	journalID := uuid.New()
	editor := newEditor(t, journalID)
	editor.Deactivate()

	accounts := new(MockAccountRepository)
	accounts.On("FindByEmail", ctx, "editor@example.org").Return(editor, nil)
	svc := NewAuthService(accounts, newJWT(), zap.NewNop())

	_, err := svc.Login(ctx, LoginRequest{Email: "editor@example.org", Password: "s3cret-pass", JournalID: journalID})
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	journalID := uuid.New()
	editor := newEditor(t, journalID)
	jwt := newJWT()

	pair, err := jwt.GenerateTokenPair(auth.GenerateTokenInput{JournalID: journalID, AccountID: editor.ID, Email: editor.Email})
	require.NoError(t, err)

	accounts := new(MockAccountRepository)
	accounts.On("FindByID", ctx, editor.ID).Return(editor, nil)
	svc := NewAuthService(accounts, jwt, zap.NewNop())

	res, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := jwt.ValidateAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"editor"}, claims.Roles)

	t.Run("role revoked", func(t *testing.T) {
		editor.Roles = nil
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrNotEditor)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "garbage")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "TOKEN_INVALID", de.Code)
	})
}

func TestAuthService_Refresh_MapsIssuerErrors(t *testing.T) {
	tokens := new(MockTokenIssuer)
	tokens.On("ValidateRefreshToken", "old").Return(nil, auth.ErrExpiredToken)
	svc := NewAuthService(new(MockAccountRepository), tokens, zap.NewNop())

	_, err := svc.Refresh(context.Background(), "old")

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "TOKEN_EXPIRED", de.Code)
}
