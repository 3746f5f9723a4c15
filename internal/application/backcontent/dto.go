package backcontent

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/domain/submission"
)

// ============================================================================
// Request DTOs
// ============================================================================

// SaveArticleInfoRequest is wizard section 1
type SaveArticleInfoRequest struct {
	Title    string   `json:"title" form:"title" binding:"required,max=999"`
	Subtitle string   `json:"subtitle" form:"subtitle" binding:"max=999"`
	Abstract string   `json:"abstract" form:"abstract"`
	Language string   `json:"language" form:"language" binding:"max=35"`
	Keywords []string `json:"keywords" form:"keywords"`
	Section  string   `json:"section" form:"section" binding:"max=200"`
	License  string   `json:"license" form:"license" binding:"max=300"`
}

// SetCorrespondenceAuthorRequest is wizard section 2
type SetCorrespondenceAuthorRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
}

// SavePublicationInfoRequest is wizard section 3
type SavePublicationInfoRequest struct {
	DateAccepted   *time.Time `json:"date_accepted"`
	DatePublished  *time.Time `json:"date_published"`
	PageNumbers    string     `json:"page_numbers" binding:"max=32"`
	PrimaryIssueID *uuid.UUID `json:"primary_issue_id"`
	PeerReviewed   bool       `json:"peer_reviewed"`
}

// AddAuthorRequest attaches an existing account or creates one
type AddAuthorRequest struct {
	Email       string `json:"email" form:"email" binding:"required,email,max=254"`
	FirstName   string `json:"first_name" form:"first_name" binding:"max=300"`
	MiddleName  string `json:"middle_name" form:"middle_name" binding:"max=300"`
	LastName    string `json:"last_name" form:"last_name" binding:"max=300"`
	Institution string `json:"institution" form:"institution" binding:"max=1000"`
	Department  string `json:"department" form:"department" binding:"max=300"`
	Country     string `json:"country" form:"country" binding:"max=100"`
	ORCID       string `json:"orcid" form:"orcid" binding:"max=40"`
}

// ReorderAuthorsRequest lists every attached account in the new order
type ReorderAuthorsRequest struct {
	AccountIDs []uuid.UUID `json:"account_ids" binding:"required,min=1"`
}

// ArticleListFilter filters ListArticles
type ArticleListFilter struct {
	Search   string `form:"search"`
	Stage    string `form:"stage" binding:"omitempty,oneof=back_content published"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DirectorySearchFilter filters the account directory
type DirectorySearchFilter struct {
	Query    string `form:"q" binding:"required,min=2"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=50"`
}

// ImportDOIRequest imports an article from a DOI
type ImportDOIRequest struct {
	DOI string `json:"doi" binding:"required,max=300,doi"`
}

// ImportURLRequest imports an article from a page with citation meta tags
type ImportURLRequest struct {
	URL string `json:"url" binding:"required,url,max=2000"`
}

// GalleyFile is one uploaded file
type GalleyFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ============================================================================
// Response DTOs
// ============================================================================

// AuthorResponse is an attached author with live account details
type AuthorResponse struct {
	AccountID   uuid.UUID `json:"account_id"`
	Order       int       `json:"order"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	MiddleName  string    `json:"middle_name,omitempty"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	Institution string    `json:"institution,omitempty"`
	ORCID       string    `json:"orcid,omitempty"`
}

// FrozenAuthorResponse is a published author snapshot
type FrozenAuthorResponse struct {
	ID          uuid.UUID  `json:"id"`
	AccountID   *uuid.UUID `json:"account_id,omitempty"`
	FirstName   string     `json:"first_name"`
	MiddleName  string     `json:"middle_name,omitempty"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email,omitempty"`
	Institution string     `json:"institution,omitempty"`
	ORCID       string     `json:"orcid,omitempty"`
	Order       int        `json:"order"`
	Provisional bool       `json:"provisional"`
}

// IdentifierResponse is a persistent identifier
type IdentifierResponse struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

// ArticleResponse is the full article record
type ArticleResponse struct {
	ID                     uuid.UUID              `json:"id"`
	JournalID              uuid.UUID              `json:"journal_id"`
	Number                 int                    `json:"number"`
	Stage                  string                 `json:"stage"`
	Title                  string                 `json:"title"`
	Subtitle               string                 `json:"subtitle,omitempty"`
	Abstract               string                 `json:"abstract,omitempty"`
	Language               string                 `json:"language,omitempty"`
	Keywords               []string               `json:"keywords"`
	Section                string                 `json:"section,omitempty"`
	License                string                 `json:"license,omitempty"`
	CorrespondenceAuthorID *uuid.UUID             `json:"correspondence_author_id,omitempty"`
	DateAccepted           *time.Time             `json:"date_accepted,omitempty"`
	DatePublished          *time.Time             `json:"date_published,omitempty"`
	PageNumbers            string                 `json:"page_numbers,omitempty"`
	PrimaryIssueID         *uuid.UUID             `json:"primary_issue_id,omitempty"`
	PeerReviewed           bool                   `json:"peer_reviewed"`
	IsRemote               bool                   `json:"is_remote"`
	RemoteURL              string                 `json:"remote_url,omitempty"`
	DOI                    string                 `json:"doi,omitempty"`
	Authors                []AuthorResponse       `json:"authors"`
	FrozenAuthors          []FrozenAuthorResponse `json:"frozen_authors"`
	Identifiers            []IdentifierResponse   `json:"identifiers"`
	Version                int                    `json:"version"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

// ArticleListItem is a row of the article index
type ArticleListItem struct {
	ID            uuid.UUID  `json:"id"`
	Number        int        `json:"number"`
	Stage         string     `json:"stage"`
	Title         string     `json:"title"`
	DOI           string     `json:"doi,omitempty"`
	DatePublished *time.Time `json:"date_published,omitempty"`
	IsRemote      bool       `json:"is_remote"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// GalleyResponse is galley metadata
type GalleyResponse struct {
	ID           uuid.UUID `json:"id"`
	ArticleID    uuid.UUID `json:"article_id"`
	Label        string    `json:"label"`
	IsOther      bool      `json:"is_other"`
	FileName     string    `json:"file_name"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	FileSize     int64     `json:"file_size"`
	Sequence     int       `json:"sequence"`
	CreatedAt    time.Time `json:"created_at"`
}

// GalleyDownloadResponse carries a presigned URL
type GalleyDownloadResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueOption is an issue the editor can pick as primary issue
type IssueOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// WizardView is everything the editor page shows for one article
type WizardView struct {
	Article ArticleResponse  `json:"article"`
	Galleys []GalleyResponse `json:"galleys"`
	Issues  []IssueOption    `json:"issues"`
}

// DirectoryEntry is an account found by directory search
type DirectoryEntry struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Institution string    `json:"institution,omitempty"`
}

// ImportResult is returned by every importer
type ImportResult struct {
	Article  ArticleResponse `json:"article"`
	Messages []string        `json:"messages"`
}

// PublishResult is returned by the publication gate
type PublishResult struct {
	Article     ArticleResponse `json:"article"`
	DOI         string          `json:"doi,omitempty"`
	DOIAssigned bool            `json:"doi_assigned"`
	Messages    []string        `json:"messages"`
}

// ============================================================================
// Mappers
// ============================================================================

// ToArticleResponse maps an article. accounts supplies live author details and may be nil.
func ToArticleResponse(a *submission.Article, accounts map[uuid.UUID]*identity.Account) ArticleResponse {
	resp := ArticleResponse{
		ID:                     a.ID,
		JournalID:              a.JournalID,
		Number:                 a.Number,
		Stage:                  string(a.Stage),
		Title:                  a.Title,
		Subtitle:               a.Subtitle,
		Abstract:               a.Abstract,
		Language:               a.Language,
		Keywords:               append([]string{}, a.Keywords...),
		Section:                a.Section,
		License:                a.License,
		CorrespondenceAuthorID: a.CorrespondenceAuthorID,
		DateAccepted:           a.DateAccepted,
		DatePublished:          a.DatePublished,
		PageNumbers:            a.PageNumbers,
		PrimaryIssueID:         a.PrimaryIssueID,
		PeerReviewed:           a.PeerReviewed,
		IsRemote:               a.IsRemote,
		RemoteURL:              a.RemoteURL,
		DOI:                    a.DOI(),
		Authors:                make([]AuthorResponse, 0, len(a.Authors)),
		FrozenAuthors:          make([]FrozenAuthorResponse, 0, len(a.FrozenAuthors)),
		Identifiers:            make([]IdentifierResponse, 0, len(a.Identifiers)),
		Version:                a.Version,
		CreatedAt:              a.CreatedAt,
		UpdatedAt:              a.UpdatedAt,
	}
	for _, au := range a.SortedAuthors() {
		ar := AuthorResponse{AccountID: au.AccountID, Order: au.Order}
		if acc, ok := accounts[au.AccountID]; ok && acc != nil {
			ar.Email = acc.Email
			ar.FirstName = acc.FirstName
			ar.MiddleName = acc.MiddleName
			ar.LastName = acc.LastName
			ar.FullName = acc.FullName()
			ar.Institution = acc.Institution
			ar.ORCID = acc.ORCID
		}
		resp.Authors = append(resp.Authors, ar)
	}
	for _, f := range a.FrozenAuthors {
		resp.FrozenAuthors = append(resp.FrozenAuthors, FrozenAuthorResponse{
			ID:          f.ID,
			AccountID:   f.AccountID,
			FirstName:   f.FirstName,
			MiddleName:  f.MiddleName,
			LastName:    f.LastName,
			Email:       f.Email,
			Institution: f.Institution,
			ORCID:       f.ORCID,
			Order:       f.Order,
			Provisional: f.IsProvisional(),
		})
	}
	for _, id := range a.Identifiers {
		resp.Identifiers = append(resp.Identifiers, IdentifierResponse{
			Type:    string(id.Type),
			Value:   id.Value,
			Enabled: id.Enabled,
		})
	}
	return resp
}

// ToArticleListItem maps an article to an index row
func ToArticleListItem(a *submission.Article) ArticleListItem {
	return ArticleListItem{
		ID:            a.ID,
		Number:        a.Number,
		Stage:         string(a.Stage),
		Title:         a.Title,
		DOI:           a.DOI(),
		DatePublished: a.DatePublished,
		IsRemote:      a.IsRemote,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ToGalleyResponse maps galley metadata
func ToGalleyResponse(g *submission.Galley) GalleyResponse {
	return GalleyResponse{
		ID:           g.ID,
		ArticleID:    g.ArticleID,
		Label:        string(g.Label),
		IsOther:      g.IsOther,
		FileName:     g.FileName,
		OriginalName: g.OriginalName,
		ContentType:  g.ContentType,
		FileSize:     g.FileSize,
		Sequence:     g.Sequence,
		CreatedAt:    g.CreatedAt,
	}
}

// ToGalleyResponses maps a list of galleys
func ToGalleyResponses(galleys []*submission.Galley) []GalleyResponse {
	out := make([]GalleyResponse, len(galleys))
	for i, g := range galleys {
		out[i] = ToGalleyResponse(g)
	}
	return out
}

// ToIssueOptions maps issues to picker options
func ToIssueOptions(issues []*journal.Issue) []IssueOption {
	out := make([]IssueOption, len(issues))
	for i, is := range issues {
		out[i] = IssueOption{ID: is.ID, Name: is.DisplayName()}
	}
	return out
}

// ToDirectoryEntry maps an account found by search
func ToDirectoryEntry(a *identity.Account) DirectoryEntry {
	return DirectoryEntry{
		ID:          a.ID,
		Email:       a.Email,
		FullName:    a.FullName(),
		Institution: a.Institution,
	}
}

func toAuthorDetails(a *identity.Account) submission.AuthorDetails {
	return submission.AuthorDetails{
		FirstName:   a.FirstName,
		MiddleName:  a.MiddleName,
		LastName:    a.LastName,
		Email:       a.Email,
		Institution: a.Institution,
		Department:  a.Department,
		Country:     a.Country,
		ORCID:       a.ORCID,
	}
}
