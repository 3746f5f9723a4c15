package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/infrastructure/config"
)

// clockSkew tolerated between the issuing and validating hosts
const clockSkew = 30 * time.Second

// TokenType tells access tokens from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingJournalID   = errors.New("missing journal_id in claims")
	ErrMissingAccountID   = errors.New("missing account_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
)

// Claims are the custom JWT claims issued to editors.
// A token is bound to one journal; switching journals means logging in again.
type Claims struct {
	jwt.RegisteredClaims
	JournalID    string    `json:"journal_id"`
	AccountID    string    `json:"account_id"`
	Email        string    `json:"email,omitempty"`
	Roles        []string  `json:"roles,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// TokenPair is what login and refresh answer with
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// JWTService issues and validates HS256 tokens bound to one journal
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	maxRefreshCount   int
}

// NewJWTService signs refresh tokens with the access secret when no refresh secret is configured
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := []byte(cfg.RefreshSecret)
	if cfg.RefreshSecret == "" {
		refreshSecret = []byte(cfg.Secret)
	}

	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     refreshSecret,
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
	}
}

// GenerateTokenInput names the account and the journal it logs in to
type GenerateTokenInput struct {
	JournalID uuid.UUID
	AccountID uuid.UUID
	Email     string
	Roles     []string
}

// GenerateTokenPair issues a fresh pair at refresh count zero
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	return s.issuePair(input, 0, time.Now())
}

func (s *JWTService) issuePair(input GenerateTokenInput, refreshCount int, now time.Time) (*TokenPair, error) {
	access := &Claims{
		RegisteredClaims: s.registered(input.AccountID, now, s.accessExpiration),
		JournalID:        input.JournalID.String(),
		AccountID:        input.AccountID.String(),
		Email:            input.Email,
		Roles:            input.Roles,
		TokenType:        TokenTypeAccess,
	}
	accessToken, err := s.sign(access, s.accessSecret)
	if err != nil {
		return nil, err
	}

	// Refresh tokens carry the journal and account only. Roles are reloaded on refresh.
	refresh := &Claims{
		RegisteredClaims: s.registered(input.AccountID, now, s.refreshExpiration),
		JournalID:        input.JournalID.String(),
		AccountID:        input.AccountID.String(),
		TokenType:        TokenTypeRefresh,
		RefreshCount:     refreshCount,
	}
	refreshToken, err := s.sign(refresh, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) registered(subject uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   subject.String(),
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (s *JWTService) sign(claims *Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, s.refreshSecret, TokenTypeRefresh)
}

func (s *JWTService) validateToken(tokenString string, secret []byte, expectedType TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithLeeway(clockSkew),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != expectedType {
		return nil, ErrInvalidTokenType
	}
	if claims.JournalID == "" {
		return nil, ErrMissingJournalID
	}
	if claims.AccountID == "" {
		return nil, ErrMissingAccountID
	}
	return claims, nil
}

// RefreshTokenPair issues a new pair from a valid refresh token.
// roles are the account's current roles on the token's journal.
func (s *JWTService) RefreshTokenPair(refreshToken, email string, roles []string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}
	journalID, err := claims.Journal()
	if err != nil {
		return nil, ErrInvalidClaims
	}
	accountID, err := claims.Account()
	if err != nil {
		return nil, ErrInvalidClaims
	}

	return s.issuePair(GenerateTokenInput{
		JournalID: journalID,
		AccountID: accountID,
		Email:     email,
		Roles:     roles,
	}, claims.RefreshCount+1, time.Now())
}

// Journal parses the journal the token is bound to
func (c *Claims) Journal() (uuid.UUID, error) {
	return uuid.Parse(c.JournalID)
}

// Account parses the account the token was issued to
func (c *Claims) Account() (uuid.UUID, error) {
	return uuid.Parse(c.AccountID)
}

// HasRole reports whether the token grants role on its journal
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}
