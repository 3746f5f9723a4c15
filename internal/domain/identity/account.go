package identity

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// Role is a journal-level role held by an account
type Role string

const (
	RoleAuthor Role = "author"
	RoleEditor Role = "editor"
)

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	return r == RoleAuthor || r == RoleEditor
}

// JournalRole grants a role on one journal
type JournalRole struct {
	JournalID uuid.UUID
	Role      Role
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	orcidRegex = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)
)

// Account is an entry in the global user directory.
// The email doubles as the username and is stored lower-cased.
type Account struct {
	shared.BaseAggregateRoot
	Email        string
	FirstName    string
	MiddleName   string
	LastName     string
	Institution  string
	Department   string
	Country      string
	ORCID        string
	PasswordHash string
	IsActive     bool
	Roles        []JournalRole
}

// Profile holds the optional personal details of an account
type Profile struct {
	FirstName   string
	MiddleName  string
	LastName    string
	Institution string
	Department  string
	Country     string
	ORCID       string
}

// NewAccount creates an active account with the given password
func NewAccount(email, password string, profile Profile) (*Account, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	a := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      hash,
		IsActive:          true,
		Roles:             make([]JournalRole, 0),
	}
	if err := a.UpdateProfile(profile); err != nil {
		return nil, err
	}
	return a, nil
}

// NormalizeEmail trims and lower-cases an email for lookup and storage
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpdateProfile replaces the personal details
func (a *Account) UpdateProfile(p Profile) error {
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"first name", p.FirstName, 300},
		{"middle name", p.MiddleName, 300},
		{"last name", p.LastName, 300},
		{"institution", p.Institution, 1000},
		{"department", p.Department, 300},
		{"country", p.Country, 100},
	} {
		if len(strings.TrimSpace(f.value)) > f.max {
			return shared.NewDomainError("INVALID_PROFILE", "Account "+f.name+" is too long")
		}
	}
	orcid := strings.TrimSpace(p.ORCID)
	orcid = strings.TrimPrefix(orcid, "https://orcid.org/")
	orcid = strings.TrimPrefix(orcid, "http://orcid.org/")
	if orcid != "" && !orcidRegex.MatchString(orcid) {
		return shared.NewDomainError("INVALID_ORCID", "ORCID must look like 0000-0002-1825-0097")
	}

	a.FirstName = strings.TrimSpace(p.FirstName)
	a.MiddleName = strings.TrimSpace(p.MiddleName)
	a.LastName = strings.TrimSpace(p.LastName)
	a.Institution = strings.TrimSpace(p.Institution)
	a.Department = strings.TrimSpace(p.Department)
	a.Country = strings.TrimSpace(p.Country)
	a.ORCID = orcid
	a.Touch()
	return nil
}

// FullName joins the name parts that are set
func (a *Account) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.FirstName, a.MiddleName, a.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return a.Email
	}
	return strings.Join(parts, " ")
}

// CheckPassword compares a plaintext password against the stored hash
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// AddRole grants a role on a journal. Granting an existing role is a no-op.
func (a *Account) AddRole(journalID uuid.UUID, role Role) (bool, error) {
	if !role.IsValid() {
		return false, shared.NewDomainError("INVALID_ROLE", "Unknown role: "+string(role))
	}
	if a.HasRole(journalID, role) {
		return false, nil
	}
	a.Roles = append(a.Roles, JournalRole{JournalID: journalID, Role: role})
	a.Touch()
	return true, nil
}

// HasRole reports whether the account holds role on the journal
func (a *Account) HasRole(journalID uuid.UUID, role Role) bool {
	for _, r := range a.Roles {
		if r.JournalID == journalID && r.Role == role {
			return true
		}
	}
	return false
}

// RolesFor lists the roles held on one journal
func (a *Account) RolesFor(journalID uuid.UUID) []Role {
	roles := make([]Role, 0, len(a.Roles))
	for _, r := range a.Roles {
		if r.JournalID == journalID {
			roles = append(roles, r.Role)
		}
	}
	return roles
}

// CanEdit reports whether the account may log in as an editor of the journal
func (a *Account) CanEdit(journalID uuid.UUID) bool {
	return a.IsActive && a.HasRole(journalID, RoleEditor)
}

// Deactivate blocks logins
func (a *Account) Deactivate() {
	a.IsActive = false
	a.Touch()
	a.IncrementVersion()
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 254 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	// bcrypt ignores bytes past 72
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
