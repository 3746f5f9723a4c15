package submission

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"golang.org/x/text/language"
)

// Stage is the workflow stage of an article
type Stage string

const (
	StageBackContent Stage = "back_content"
	StagePublished   Stage = "published"
)

// IsValid reports whether the stage is known
func (s Stage) IsValid() bool {
	return s == StageBackContent || s == StagePublished
}

const (
	maxTitleLength    = 999
	maxKeywordLength  = 200
	maxPageNumbersLen = 32
)

// Domain errors raised by the article aggregate
var (
	ErrArticleAlreadyPublished = shared.NewDomainError("ARTICLE_ALREADY_PUBLISHED", "Article has already been published")
	ErrAuthorNotAttached       = shared.NewDomainError("AUTHOR_NOT_ATTACHED", "Account is not an author of this article")
	ErrDuplicateDOI            = shared.NewDomainError("DUPLICATE_DOI", "DOI is already used by another article of this journal")
)

// Article is the back content record edited through the wizard
type Article struct {
	shared.JournalAggregateRoot
	Number int
	Stage  Stage

	Title    string
	Subtitle string
	Abstract string
	Language string
	Keywords []string
	Section  string
	License  string

	CorrespondenceAuthorID *uuid.UUID

	DateAccepted   *time.Time
	DatePublished  *time.Time
	PageNumbers    string
	PrimaryIssueID *uuid.UUID
	PeerReviewed   bool

	IsRemote  bool
	RemoteURL string

	Authors       []ArticleAuthor
	FrozenAuthors []FrozenAuthor
	Identifiers   []Identifier
}

// ArticleInfo is the payload of wizard section 1
type ArticleInfo struct {
	Title    string
	Subtitle string
	Abstract string
	Language string
	Keywords []string
	Section  string
	License  string
}

// PublicationInfo is the payload of wizard section 3
type PublicationInfo struct {
	DateAccepted   *time.Time
	DatePublished  *time.Time
	PageNumbers    string
	PrimaryIssueID *uuid.UUID
	PeerReviewed   bool
}

// NewArticle creates an empty back content record
func NewArticle(journalID uuid.UUID, number int) *Article {
	a := &Article{
		JournalAggregateRoot: shared.NewJournalAggregateRoot(journalID),
		Number:               number,
		Stage:                StageBackContent,
		Keywords:             make([]string, 0),
		Authors:              make([]ArticleAuthor, 0),
		FrozenAuthors:        make([]FrozenAuthor, 0),
		Identifiers:          make([]Identifier, 0),
	}
	a.AddDomainEvent(NewArticleCreatedEvent(a))
	return a
}

// IsPublished reports whether the article passed the publication gate
func (a *Article) IsPublished() bool {
	return a.Stage == StagePublished
}

// SaveInfo applies wizard section 1
func (a *Article) SaveInfo(info ArticleInfo) error {
	title := strings.TrimSpace(info.Title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 999 characters")
	}
	subtitle := strings.TrimSpace(info.Subtitle)
	if len([]rune(subtitle)) > maxTitleLength {
		return shared.NewDomainError("INVALID_SUBTITLE", "Subtitle cannot exceed 999 characters")
	}
	lang, err := NormalizeLanguage(info.Language)
	if err != nil {
		return err
	}
	keywords, err := normalizeKeywords(info.Keywords)
	if err != nil {
		return err
	}

	a.Title = title
	a.Subtitle = subtitle
	a.Abstract = strings.TrimSpace(info.Abstract)
	a.Language = lang
	a.Keywords = keywords
	a.Section = strings.TrimSpace(info.Section)
	a.License = strings.TrimSpace(info.License)
	a.Touch()
	a.IncrementVersion()
	return nil
}

// SetCorrespondenceAuthor applies wizard section 2.
// The account must already be attached as an author.
func (a *Article) SetCorrespondenceAuthor(accountID uuid.UUID) error {
	if !a.HasAuthor(accountID) {
		return ErrAuthorNotAttached
	}
	a.CorrespondenceAuthorID = &accountID
	a.Touch()
	a.IncrementVersion()
	return nil
}

// SavePublicationInfo applies wizard section 3.
// Issue ownership is checked by the caller, which has access to the issue repository.
func (a *Article) SavePublicationInfo(info PublicationInfo) error {
	pages := strings.TrimSpace(info.PageNumbers)
	if len(pages) > maxPageNumbersLen {
		return shared.NewDomainError("INVALID_PAGE_NUMBERS", "Page numbers cannot exceed 32 characters")
	}
	if info.DateAccepted != nil && info.DatePublished != nil && info.DatePublished.Before(*info.DateAccepted) {
		return shared.NewDomainError("INVALID_DATES", "Date published cannot be before date accepted")
	}

	a.DateAccepted = info.DateAccepted
	a.DatePublished = info.DatePublished
	a.PageNumbers = pages
	a.PrimaryIssueID = info.PrimaryIssueID
	a.PeerReviewed = info.PeerReviewed
	a.Touch()
	a.IncrementVersion()
	return nil
}

// MarkRemote records that the article's canonical copy lives elsewhere
func (a *Article) MarkRemote(remoteURL string) {
	a.IsRemote = true
	a.RemoteURL = strings.TrimSpace(remoteURL)
	a.Touch()
}

// NormalizeLanguage converts a BCP 47 tag or ISO 639 code to its ISO 639-3 form.
// An empty input stays empty.
func NormalizeLanguage(lang string) (string, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "", nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "", shared.NewDomainError("INVALID_LANGUAGE", "Unknown language: "+lang)
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", shared.NewDomainError("INVALID_LANGUAGE", "Unknown language: "+lang)
	}
	return base.ISO3(), nil
}

func normalizeKeywords(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if len([]rune(kw)) > maxKeywordLength {
			return nil, shared.NewDomainError("INVALID_KEYWORD", "Keyword cannot exceed 200 characters")
		}
		key := strings.ToLower(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out, nil
}
