package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// BaseModel is the id and timestamp columns every table shares
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// AggregateModel adds the optimistic-lock version column
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) aggregate() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.entity(), Version: m.Version}
}

func (m *AggregateModel) setAggregate(a shared.BaseAggregateRoot) {
	m.setEntity(a.BaseEntity)
	m.Version = a.Version
}

// JournalAggregateModel is an aggregate table owned by one journal
type JournalAggregateModel struct {
	AggregateModel
	JournalID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

func (m *JournalAggregateModel) journalAggregate() shared.JournalAggregateRoot {
	return shared.JournalAggregateRoot{
		BaseAggregateRoot: m.aggregate(),
		JournalID:         m.JournalID,
		CreatedBy:         m.CreatedBy,
	}
}

func (m *JournalAggregateModel) setJournalAggregate(j shared.JournalAggregateRoot) {
	m.setAggregate(j.BaseAggregateRoot)
	m.JournalID = j.JournalID
	m.CreatedBy = j.CreatedBy
}
