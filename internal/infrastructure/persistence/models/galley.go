package models

import (
	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/submission"
)

// GalleyModel is the persistence model for galley file metadata.
// The file itself lives in object storage under StorageKey.
type GalleyModel struct {
	BaseModel
	JournalID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	ArticleID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Label        submission.GalleyLabel `gorm:"type:varchar(10);not null"`
	IsOther      bool                   `gorm:"not null"`
	FileName     string                 `gorm:"column:file_name;type:varchar(255);not null"`
	OriginalName string                 `gorm:"column:original_name;type:varchar(255);not null"`
	ContentType  string                 `gorm:"column:content_type;type:varchar(100);not null"`
	FileSize     int64                  `gorm:"column:file_size;type:bigint;not null"`
	StorageKey   string                 `gorm:"column:storage_key;type:varchar(500);not null;uniqueIndex"`
	Sequence     int                    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (GalleyModel) TableName() string {
	return "galleys"
}

// ToDomain converts the persistence model to a domain Galley.
func (m *GalleyModel) ToDomain() *submission.Galley {
	return &submission.Galley{
		BaseEntity:   m.entity(),
		JournalID:    m.JournalID,
		ArticleID:    m.ArticleID,
		Label:        m.Label,
		IsOther:      m.IsOther,
		FileName:     m.FileName,
		OriginalName: m.OriginalName,
		ContentType:  m.ContentType,
		FileSize:     m.FileSize,
		StorageKey:   m.StorageKey,
		Sequence:     m.Sequence,
	}
}

// FromDomain populates the persistence model from a domain Galley.
func (m *GalleyModel) FromDomain(g *submission.Galley) {
	m.setEntity(g.BaseEntity)
	m.JournalID = g.JournalID
	m.ArticleID = g.ArticleID
	m.Label = g.Label
	m.IsOther = g.IsOther
	m.FileName = g.FileName
	m.OriginalName = g.OriginalName
	m.ContentType = g.ContentType
	m.FileSize = g.FileSize
	m.StorageKey = g.StorageKey
	m.Sequence = g.Sequence
}

// GalleyModelFromDomain creates a new persistence model from a domain Galley.
func GalleyModelFromDomain(g *submission.Galley) *GalleyModel {
	m := &GalleyModel{}
	m.FromDomain(g)
	return m
}
