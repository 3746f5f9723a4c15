package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/infrastructure/auth"
	"github.com/scholarly/backcontent/internal/infrastructure/logger"
	"github.com/scholarly/backcontent/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JournalIDKey  = "journal_id"
	AccountIDKey  = "account_id"
	devJournalKey = "dev_journal"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JournalHeaderKey selects the journal when DevJournalHeader is enabled
const JournalHeaderKey = "X-Journal-ID"

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPrefixes exempt whole subtrees, such as signed object links
	SkipPrefixes []string
	// DevJournalHeader accepts X-Journal-ID without a token. Development only.
	DevJournalHeader bool
	Logger           *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/ready",
			"/metrics",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		Logger: zap.NewNop(),
	}
}

// JWTAuthMiddlewareWithConfig validates the bearer token and binds the request
// to the token's journal and account.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if slices.Contains(cfg.SkipPaths, path) || slices.ContainsFunc(cfg.SkipPrefixes, func(p string) bool {
			return strings.HasPrefix(path, p)
		}) {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" && cfg.DevJournalHeader {
			if raw := c.GetHeader(JournalHeaderKey); raw != "" {
				journalID, err := uuid.Parse(raw)
				if err != nil {
					handleAuthError(c, cfg, auth.ErrInvalidClaims, "Invalid X-Journal-ID header")
					return
				}
				c.Set(devJournalKey, true)
				bindIdentity(c, journalID.String(), "")
				c.Next()
				return
			}
		}

		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		tokenString, ok := strings.CutPrefix(authHeader, BearerPrefix)
		if !ok || tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}
		if _, err := claims.Journal(); err != nil {
			handleAuthError(c, cfg, auth.ErrMissingJournalID, "Token is not bound to a journal")
			return
		}

		c.Set(JWTClaimsKey, claims)
		bindIdentity(c, claims.JournalID, claims.AccountID)

		cfg.Logger.Debug("JWT authentication successful",
			zap.String("account_id", claims.AccountID),
			zap.String("journal_id", claims.JournalID),
		)
		c.Next()
	}
}

func bindIdentity(c *gin.Context, journalID, accountID string) {
	c.Set(JournalIDKey, journalID)
	ctx := logger.WithJournalID(c.Request.Context(), journalID)
	if accountID != "" {
		c.Set(AccountIDKey, accountID)
		ctx = logger.WithAccountID(ctx, accountID)
	}
	c.Request = c.Request.WithContext(ctx)
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	cfg.Logger.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrTokenNotYetValid):
		code = dto.ErrCodeTokenInvalid
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJournalID returns the journal the request is bound to
func GetJournalID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(JournalIDKey))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetAccountID returns the authenticated account, or nil for development requests
func GetAccountID(c *gin.Context) *uuid.UUID {
	id, err := uuid.Parse(c.GetString(AccountIDKey))
	if err != nil {
		return nil
	}
	return &id
}

// RequireEditor rejects requests whose token lacks the editor role.
// Development requests bound through X-Journal-ID pass.
func RequireEditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(devJournalKey) {
			c.Next()
			return
		}
		claims := GetJWTClaims(c)
		if claims == nil || !claims.HasRole("editor") {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Editor role required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
