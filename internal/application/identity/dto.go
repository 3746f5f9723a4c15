package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
)

// ============================================================================
// Request DTOs
// ============================================================================

// CreateAccountRequest creates a directory account
type CreateAccountRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	FirstName   string `json:"first_name" binding:"max=300"`
	MiddleName  string `json:"middle_name" binding:"max=300"`
	LastName    string `json:"last_name" binding:"max=300"`
	Institution string `json:"institution" binding:"max=1000"`
	Department  string `json:"department" binding:"max=300"`
	Country     string `json:"country" binding:"max=100"`
	ORCID       string `json:"orcid"`
}

// Profile converts the request's personal details
func (r CreateAccountRequest) Profile() identity.Profile {
	return identity.Profile{
		FirstName:   r.FirstName,
		MiddleName:  r.MiddleName,
		LastName:    r.LastName,
		Institution: r.Institution,
		Department:  r.Department,
		Country:     r.Country,
		ORCID:       r.ORCID,
	}
}

// GrantRoleRequest grants a journal role to an account
type GrantRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=author editor"`
}

// LoginRequest authenticates an editor against one journal
type LoginRequest struct {
	Email     string    `json:"email" binding:"required"`
	Password  string    `json:"password" binding:"required"`
	JournalID uuid.UUID `json:"journal_id" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// AccountResponse is the public view of an account
type AccountResponse struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	FirstName   string         `json:"first_name"`
	MiddleName  string         `json:"middle_name,omitempty"`
	LastName    string         `json:"last_name"`
	FullName    string         `json:"full_name"`
	Institution string         `json:"institution,omitempty"`
	Department  string         `json:"department,omitempty"`
	Country     string         `json:"country,omitempty"`
	ORCID       string         `json:"orcid,omitempty"`
	IsActive    bool           `json:"is_active"`
	Roles       []RoleResponse `json:"roles"`
	CreatedAt   time.Time      `json:"created_at"`
}

// RoleResponse is one journal role
type RoleResponse struct {
	JournalID uuid.UUID `json:"journal_id"`
	Role      string    `json:"role"`
}

// TokenResponse carries a token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	TokenResponse
	Account AccountResponse `json:"account"`
}

// ToAccountResponse maps a domain account
func ToAccountResponse(a *identity.Account) AccountResponse {
	roles := make([]RoleResponse, 0, len(a.Roles))
	for _, r := range a.Roles {
		roles = append(roles, RoleResponse{JournalID: r.JournalID, Role: string(r.Role)})
	}
	return AccountResponse{
		ID:          a.ID,
		Email:       a.Email,
		FirstName:   a.FirstName,
		MiddleName:  a.MiddleName,
		LastName:    a.LastName,
		FullName:    a.FullName(),
		Institution: a.Institution,
		Department:  a.Department,
		Country:     a.Country,
		ORCID:       a.ORCID,
		IsActive:    a.IsActive,
		Roles:       roles,
		CreatedAt:   a.CreatedAt,
	}
}

// ToAccountResponses maps a list of accounts
func ToAccountResponses(accounts []*identity.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = ToAccountResponse(a)
	}
	return out
}
