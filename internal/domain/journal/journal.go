package journal

import (
	"regexp"
	"strings"

	"github.com/scholarly/backcontent/internal/domain/shared"
)

// DefaultDOIPattern is applied to journals that never configured one
const DefaultDOIPattern = "{journal_code}.{article_number}"

var (
	journalCodeRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]{1,49}$`)
	doiPrefixRegex   = regexp.MustCompile(`^10\.\d{4,9}$`)
	issnRegex        = regexp.MustCompile(`^\d{4}-\d{3}[\dX]$`)
)

// Journal is the owner of every back content record.
// It plays the role of a tenant: articles, galleys and issues are scoped to it.
type Journal struct {
	shared.BaseAggregateRoot
	Code       string
	Name       string
	ISSN       string
	DOIPrefix  string
	DOIPattern string
	ArticleSeq int
}

// NewJournal creates a journal with the default DOI pattern
func NewJournal(code, name string) (*Journal, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if !journalCodeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_JOURNAL_CODE", "Journal code must be 2-50 lowercase letters, digits or hyphens")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_JOURNAL_NAME", "Journal name cannot be empty")
	}
	if len(name) > 300 {
		return nil, shared.NewDomainError("INVALID_JOURNAL_NAME", "Journal name cannot exceed 300 characters")
	}

	return &Journal{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		DOIPattern:        DefaultDOIPattern,
	}, nil
}

// SetISSN sets the journal ISSN. An empty value clears it.
func (j *Journal) SetISSN(issn string) error {
	issn = strings.ToUpper(strings.TrimSpace(issn))
	if issn != "" && !issnRegex.MatchString(issn) {
		return shared.NewDomainError("INVALID_ISSN", "ISSN must look like 1234-567X")
	}
	j.ISSN = issn
	j.Touch()
	j.IncrementVersion()
	return nil
}

// IsDOIPrefix reports whether prefix is a registrant prefix such as 10.1234
func IsDOIPrefix(prefix string) bool {
	return doiPrefixRegex.MatchString(prefix)
}

// UpdateIdentifierSettings replaces the DOI prefix and pattern.
// An empty pattern resets to DefaultDOIPattern.
func (j *Journal) UpdateIdentifierSettings(prefix, pattern string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix != "" && !IsDOIPrefix(prefix) {
		return shared.NewDomainError("INVALID_DOI_PREFIX", "DOI prefix must look like 10.1234")
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		pattern = DefaultDOIPattern
	}
	if err := ValidateDOIPattern(pattern); err != nil {
		return err
	}

	j.DOIPrefix = prefix
	j.DOIPattern = pattern
	j.Touch()
	j.IncrementVersion()
	return nil
}

// NextArticleNumber advances the per-journal sequence and returns the new value
func (j *Journal) NextArticleNumber() int {
	j.ArticleSeq++
	j.Touch()
	return j.ArticleSeq
}

// HasDOIPrefix reports whether DOIs can be minted for this journal
func (j *Journal) HasDOIPrefix() bool {
	return j.DOIPrefix != ""
}
