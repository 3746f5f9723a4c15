package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh ID and the current time
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch bumps UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// AggregateRoot is anything that queues domain events for publishing
type AggregateRoot interface {
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot adds an optimistic-lock version and the events raised
// since the aggregate was loaded. Repositories compare Version-1 on update.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	events  []DomainEvent
}

// NewBaseAggregateRoot starts a new aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues e until the service publishes after commit
func (a *BaseAggregateRoot) AddDomainEvent(e DomainEvent) {
	a.events = append(a.events, e)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.events
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.events = nil
}

// JournalAggregateRoot belongs to exactly one journal. Repositories filter
// every read and write of it by JournalID.
type JournalAggregateRoot struct {
	BaseAggregateRoot
	JournalID uuid.UUID
	CreatedBy *uuid.UUID
}

// NewJournalAggregateRoot starts an aggregate owned by journalID
func NewJournalAggregateRoot(journalID uuid.UUID) JournalAggregateRoot {
	return JournalAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), JournalID: journalID}
}

// SetCreatedBy records the editor who created the aggregate
func (j *JournalAggregateRoot) SetCreatedBy(accountID uuid.UUID) {
	j.CreatedBy = &accountID
}

func (j *JournalAggregateRoot) GetJournalID() uuid.UUID {
	return j.JournalID
}
