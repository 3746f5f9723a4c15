package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/journal"
)

// JournalModel is the persistence model for the Journal aggregate.
type JournalModel struct {
	AggregateModel
	Code       string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name       string `gorm:"type:varchar(300);not null"`
	ISSN       string `gorm:"column:issn;type:varchar(9)"`
	DOIPrefix  string `gorm:"column:doi_prefix;type:varchar(50)"`
	DOIPattern string `gorm:"column:doi_pattern;type:varchar(200);not null"`
	ArticleSeq int    `gorm:"column:article_seq;not null;default:0"`
}

// TableName returns the table name for GORM
func (JournalModel) TableName() string {
	return "journals"
}

// ToDomain converts the persistence model to a domain Journal.
func (m *JournalModel) ToDomain() *journal.Journal {
	return &journal.Journal{
		BaseAggregateRoot: m.aggregate(),
		Code:              m.Code,
		Name:              m.Name,
		ISSN:              m.ISSN,
		DOIPrefix:         m.DOIPrefix,
		DOIPattern:        m.DOIPattern,
		ArticleSeq:        m.ArticleSeq,
	}
}

// FromDomain populates the persistence model from a domain Journal.
func (m *JournalModel) FromDomain(j *journal.Journal) {
	m.setAggregate(j.BaseAggregateRoot)
	m.Code = j.Code
	m.Name = j.Name
	m.ISSN = j.ISSN
	m.DOIPrefix = j.DOIPrefix
	m.DOIPattern = j.DOIPattern
	m.ArticleSeq = j.ArticleSeq
}

// JournalModelFromDomain creates a new persistence model from a domain Journal.
func JournalModelFromDomain(j *journal.Journal) *JournalModel {
	m := &JournalModel{}
	m.FromDomain(j)
	return m
}

// IssueModel is the persistence model for the Issue aggregate.
type IssueModel struct {
	JournalAggregateModel
	Volume        int    `gorm:"not null;default:0"`
	Number        string `gorm:"type:varchar(20);not null;default:''"`
	Year          int    `gorm:"not null;default:0"`
	Title         string `gorm:"type:varchar(300)"`
	DatePublished *time.Time
}

// TableName returns the table name for GORM
func (IssueModel) TableName() string {
	return "issues"
}

// ToDomain converts the persistence model to a domain Issue.
func (m *IssueModel) ToDomain() *journal.Issue {
	return &journal.Issue{
		JournalAggregateRoot: m.journalAggregate(),
		Volume:               m.Volume,
		Number:               m.Number,
		Year:                 m.Year,
		Title:                m.Title,
		DatePublished:        m.DatePublished,
	}
}

// FromDomain populates the persistence model from a domain Issue.
func (m *IssueModel) FromDomain(i *journal.Issue) {
	m.setJournalAggregate(i.JournalAggregateRoot)
	m.Volume = i.Volume
	m.Number = i.Number
	m.Year = i.Year
	m.Title = i.Title
	m.DatePublished = i.DatePublished
}

// IssueModelFromDomain creates a new persistence model from a domain Issue.
func IssueModelFromDomain(i *journal.Issue) *IssueModel {
	m := &IssueModel{}
	m.FromDomain(i)
	return m
}

// IssueArticleModel links an article to an issue.
type IssueArticleModel struct {
	IssueID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ArticleID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IssueArticleModel) TableName() string {
	return "issue_articles"
}
