package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/submission"
)

// ArticleModel is the persistence model for the Article aggregate.
// Authors, frozen authors and identifiers are child tables replaced on every save.
type ArticleModel struct {
	JournalAggregateModel
	Number int              `gorm:"not null"`
	Stage  submission.Stage `gorm:"type:varchar(20);not null;index"`

	Title    string   `gorm:"type:varchar(999)"`
	Subtitle string   `gorm:"type:varchar(999)"`
	Abstract string   `gorm:"type:text"`
	Language string   `gorm:"type:varchar(3)"`
	Keywords []string `gorm:"type:text;serializer:json"`
	Section  string   `gorm:"type:varchar(200)"`
	License  string   `gorm:"type:varchar(500)"`

	CorrespondenceAuthorID *uuid.UUID `gorm:"type:uuid"`

	DateAccepted   *time.Time
	DatePublished  *time.Time
	PageNumbers    string     `gorm:"type:varchar(32)"`
	PrimaryIssueID *uuid.UUID `gorm:"type:uuid;index"`
	PeerReviewed   bool       `gorm:"not null"`

	IsRemote  bool   `gorm:"not null"`
	RemoteURL string `gorm:"column:remote_url;type:varchar(2000)"`

	Authors       []ArticleAuthorModel     `gorm:"foreignKey:ArticleID"`
	FrozenAuthors []FrozenAuthorModel      `gorm:"foreignKey:ArticleID"`
	Identifiers   []ArticleIdentifierModel `gorm:"foreignKey:ArticleID"`
}

// TableName returns the table name for GORM
func (ArticleModel) TableName() string {
	return "articles"
}

// ToDomain converts the persistence model to a domain Article.
// Children are returned in display order.
func (m *ArticleModel) ToDomain() *submission.Article {
	keywords := m.Keywords
	if keywords == nil {
		keywords = make([]string, 0)
	}

	a := &submission.Article{
		JournalAggregateRoot:   m.journalAggregate(),
		Number:                 m.Number,
		Stage:                  m.Stage,
		Title:                  m.Title,
		Subtitle:               m.Subtitle,
		Abstract:               m.Abstract,
		Language:               m.Language,
		Keywords:               keywords,
		Section:                m.Section,
		License:                m.License,
		CorrespondenceAuthorID: m.CorrespondenceAuthorID,
		DateAccepted:           m.DateAccepted,
		DatePublished:          m.DatePublished,
		PageNumbers:            m.PageNumbers,
		PrimaryIssueID:         m.PrimaryIssueID,
		PeerReviewed:           m.PeerReviewed,
		IsRemote:               m.IsRemote,
		RemoteURL:              m.RemoteURL,
		Authors:                make([]submission.ArticleAuthor, len(m.Authors)),
		FrozenAuthors:          make([]submission.FrozenAuthor, len(m.FrozenAuthors)),
		Identifiers:            make([]submission.Identifier, len(m.Identifiers)),
	}

	for i, au := range m.Authors {
		a.Authors[i] = submission.ArticleAuthor{AccountID: au.AccountID, Order: au.Seq}
	}
	sort.SliceStable(a.Authors, func(i, j int) bool { return a.Authors[i].Order < a.Authors[j].Order })

	for i, f := range m.FrozenAuthors {
		a.FrozenAuthors[i] = f.ToDomain()
	}
	sort.SliceStable(a.FrozenAuthors, func(i, j int) bool { return a.FrozenAuthors[i].Order < a.FrozenAuthors[j].Order })

	for i, id := range m.Identifiers {
		a.Identifiers[i] = submission.Identifier{
			ID:      id.ID,
			Type:    id.Type,
			Value:   id.Value,
			Enabled: id.Enabled,
		}
	}
	return a
}

// FromDomain populates the persistence model from a domain Article.
func (m *ArticleModel) FromDomain(a *submission.Article) {
	m.setJournalAggregate(a.JournalAggregateRoot)
	m.Number = a.Number
	m.Stage = a.Stage
	m.Title = a.Title
	m.Subtitle = a.Subtitle
	m.Abstract = a.Abstract
	m.Language = a.Language
	m.Keywords = a.Keywords
	m.Section = a.Section
	m.License = a.License
	m.CorrespondenceAuthorID = a.CorrespondenceAuthorID
	m.DateAccepted = a.DateAccepted
	m.DatePublished = a.DatePublished
	m.PageNumbers = a.PageNumbers
	m.PrimaryIssueID = a.PrimaryIssueID
	m.PeerReviewed = a.PeerReviewed
	m.IsRemote = a.IsRemote
	m.RemoteURL = a.RemoteURL

	m.Authors = make([]ArticleAuthorModel, len(a.Authors))
	for i, au := range a.Authors {
		m.Authors[i] = ArticleAuthorModel{ArticleID: a.ID, AccountID: au.AccountID, Seq: au.Order}
	}
	m.FrozenAuthors = make([]FrozenAuthorModel, len(a.FrozenAuthors))
	for i, f := range a.FrozenAuthors {
		m.FrozenAuthors[i] = FrozenAuthorModelFromDomain(a.ID, f)
	}
	m.Identifiers = make([]ArticleIdentifierModel, len(a.Identifiers))
	for i, id := range a.Identifiers {
		m.Identifiers[i] = ArticleIdentifierModel{
			ID:        id.ID,
			ArticleID: a.ID,
			Type:      id.Type,
			Value:     id.Value,
			Enabled:   id.Enabled,
		}
	}
}

// ArticleModelFromDomain creates a new persistence model from a domain Article.
func ArticleModelFromDomain(a *submission.Article) *ArticleModel {
	m := &ArticleModel{}
	m.FromDomain(a)
	return m
}

// ArticleAuthorModel attaches an account to an article.
type ArticleAuthorModel struct {
	ArticleID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Seq       int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ArticleAuthorModel) TableName() string {
	return "article_authors"
}

// FrozenAuthorModel is an author snapshot stored with the article.
type FrozenAuthorModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ArticleID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	AccountID   *uuid.UUID `gorm:"type:uuid"`
	FirstName   string     `gorm:"type:varchar(300)"`
	MiddleName  string     `gorm:"type:varchar(300)"`
	LastName    string     `gorm:"type:varchar(300)"`
	Email       string     `gorm:"type:varchar(254)"`
	Institution string     `gorm:"type:varchar(1000)"`
	Department  string     `gorm:"type:varchar(300)"`
	Country     string     `gorm:"type:varchar(100)"`
	ORCID       string     `gorm:"column:orcid;type:varchar(19)"`
	Seq         int        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FrozenAuthorModel) TableName() string {
	return "frozen_authors"
}

// ToDomain converts the row to a domain FrozenAuthor.
func (m *FrozenAuthorModel) ToDomain() submission.FrozenAuthor {
	return submission.FrozenAuthor{
		ID:        m.ID,
		AccountID: m.AccountID,
		AuthorDetails: submission.AuthorDetails{
			FirstName:   m.FirstName,
			MiddleName:  m.MiddleName,
			LastName:    m.LastName,
			Email:       m.Email,
			Institution: m.Institution,
			Department:  m.Department,
			Country:     m.Country,
			ORCID:       m.ORCID,
		},
		Order: m.Seq,
	}
}

// FrozenAuthorModelFromDomain creates a row for a frozen author of articleID.
func FrozenAuthorModelFromDomain(articleID uuid.UUID, f submission.FrozenAuthor) FrozenAuthorModel {
	id := f.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return FrozenAuthorModel{
		ID:          id,
		ArticleID:   articleID,
		AccountID:   f.AccountID,
		FirstName:   f.FirstName,
		MiddleName:  f.MiddleName,
		LastName:    f.LastName,
		Email:       f.Email,
		Institution: f.Institution,
		Department:  f.Department,
		Country:     f.Country,
		ORCID:       f.ORCID,
		Seq:         f.Order,
	}
}

// ArticleIdentifierModel is a persistent identifier of an article.
type ArticleIdentifierModel struct {
	ID        uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	ArticleID uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Type      submission.IdentifierType `gorm:"type:varchar(20);not null"`
	Value     string                    `gorm:"type:varchar(500);not null"`
	Enabled   bool                      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ArticleIdentifierModel) TableName() string {
	return "article_identifiers"
}
