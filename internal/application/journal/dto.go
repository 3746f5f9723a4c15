package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/journal"
)

// CreateJournalRequest creates a journal
type CreateJournalRequest struct {
	Code       string `json:"code" binding:"required,min=2,max=50"`
	Name       string `json:"name" binding:"required,max=300"`
	ISSN       string `json:"issn" binding:"omitempty,len=9"`
	DOIPrefix  string `json:"doi_prefix" binding:"omitempty,doiprefix"`
	DOIPattern string `json:"doi_pattern" binding:"max=200"`
}

// UpdateIdentifierSettingsRequest replaces the DOI settings of a journal
type UpdateIdentifierSettingsRequest struct {
	DOIPrefix  string `json:"doi_prefix" binding:"omitempty,doiprefix"`
	DOIPattern string `json:"doi_pattern" binding:"max=200"`
}

// CreateIssueRequest creates an issue
type CreateIssueRequest struct {
	Volume        int        `json:"volume" binding:"min=0"`
	Number        string     `json:"number" binding:"max=20"`
	Year          int        `json:"year" binding:"omitempty,min=1600,max=9999"`
	Title         string     `json:"title" binding:"max=300"`
	DatePublished *time.Time `json:"date_published"`
}

// JournalResponse is the public view of a journal
type JournalResponse struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	ISSN       string    `json:"issn,omitempty"`
	DOIPrefix  string    `json:"doi_prefix,omitempty"`
	DOIPattern string    `json:"doi_pattern"`
	ArticleSeq int       `json:"article_seq"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IssueResponse is the public view of an issue
type IssueResponse struct {
	ID            uuid.UUID  `json:"id"`
	JournalID     uuid.UUID  `json:"journal_id"`
	Volume        int        `json:"volume"`
	Number        string     `json:"number"`
	Year          int        `json:"year"`
	Title         string     `json:"title,omitempty"`
	DisplayName   string     `json:"display_name"`
	DatePublished *time.Time `json:"date_published,omitempty"`
}

// ToJournalResponse maps a domain journal
func ToJournalResponse(j *journal.Journal) JournalResponse {
	return JournalResponse{
		ID:         j.ID,
		Code:       j.Code,
		Name:       j.Name,
		ISSN:       j.ISSN,
		DOIPrefix:  j.DOIPrefix,
		DOIPattern: j.DOIPattern,
		ArticleSeq: j.ArticleSeq,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

// ToIssueResponse maps a domain issue
func ToIssueResponse(i *journal.Issue) IssueResponse {
	return IssueResponse{
		ID:            i.ID,
		JournalID:     i.JournalID,
		Volume:        i.Volume,
		Number:        i.Number,
		Year:          i.Year,
		Title:         i.Title,
		DisplayName:   i.DisplayName(),
		DatePublished: i.DatePublished,
	}
}
