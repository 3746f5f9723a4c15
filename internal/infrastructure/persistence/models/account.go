package models

import (
	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
)

// AccountModel is the persistence model for the Account aggregate.
// Roles live in account_roles and are loaded with Preload.
type AccountModel struct {
	AggregateModel
	Email        string             `gorm:"type:varchar(254);not null;uniqueIndex"`
	FirstName    string             `gorm:"type:varchar(300)"`
	MiddleName   string             `gorm:"type:varchar(300)"`
	LastName     string             `gorm:"type:varchar(300)"`
	Institution  string             `gorm:"type:varchar(1000)"`
	Department   string             `gorm:"type:varchar(300)"`
	Country      string             `gorm:"type:varchar(100)"`
	ORCID        string             `gorm:"column:orcid;type:varchar(19)"`
	PasswordHash string             `gorm:"type:varchar(255);not null"`
	IsActive     bool               `gorm:"not null"`
	Roles        []AccountRoleModel `gorm:"foreignKey:AccountID"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *identity.Account {
	roles := make([]identity.JournalRole, len(m.Roles))
	for i, r := range m.Roles {
		roles[i] = identity.JournalRole{JournalID: r.JournalID, Role: r.Role}
	}
	return &identity.Account{
		BaseAggregateRoot: m.aggregate(),
		Email:             m.Email,
		FirstName:         m.FirstName,
		MiddleName:        m.MiddleName,
		LastName:          m.LastName,
		Institution:       m.Institution,
		Department:        m.Department,
		Country:           m.Country,
		ORCID:             m.ORCID,
		PasswordHash:      m.PasswordHash,
		IsActive:          m.IsActive,
		Roles:             roles,
	}
}

// FromDomain populates the persistence model from a domain Account.
func (m *AccountModel) FromDomain(a *identity.Account) {
	m.setAggregate(a.BaseAggregateRoot)
	m.Email = a.Email
	m.FirstName = a.FirstName
	m.MiddleName = a.MiddleName
	m.LastName = a.LastName
	m.Institution = a.Institution
	m.Department = a.Department
	m.Country = a.Country
	m.ORCID = a.ORCID
	m.PasswordHash = a.PasswordHash
	m.IsActive = a.IsActive
	m.Roles = AccountRoleModelsFromDomain(a)
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(a *identity.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// AccountRoleModel grants a role on a journal.
type AccountRoleModel struct {
	AccountID uuid.UUID     `gorm:"type:uuid;primaryKey"`
	JournalID uuid.UUID     `gorm:"type:uuid;primaryKey;index"`
	Role      identity.Role `gorm:"type:varchar(20);primaryKey"`
}

// TableName returns the table name for GORM
func (AccountRoleModel) TableName() string {
	return "account_roles"
}

// AccountRoleModelsFromDomain builds one row per role held by the account.
func AccountRoleModelsFromDomain(a *identity.Account) []AccountRoleModel {
	rows := make([]AccountRoleModel, len(a.Roles))
	for i, r := range a.Roles {
		rows[i] = AccountRoleModel{AccountID: a.ID, JournalID: r.JournalID, Role: r.Role}
	}
	return rows
}
