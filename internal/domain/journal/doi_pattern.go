package journal

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// Tokens accepted in a DOI pattern
const (
	TokenJournalCode   = "journal_code"
	TokenArticleNumber = "article_number"
	TokenArticleID     = "article_id"
	TokenYear          = "year"
	TokenVolume        = "volume"
	TokenIssue         = "issue"
)

var (
	patternTokenRegex = regexp.MustCompile(`\{([^{}]*)\}`)
	doiSuffixRegex    = regexp.MustCompile(`^[^\s]+$`)

	knownTokens = map[string]bool{
		TokenJournalCode:   true,
		TokenArticleNumber: true,
		TokenArticleID:     true,
		TokenYear:          true,
		TokenVolume:        true,
		TokenIssue:         true,
	}
)

// ErrUnknownDOIToken is returned when a pattern names a token that cannot be rendered
var ErrUnknownDOIToken = shared.NewDomainError("INVALID_DOI_PATTERN", "DOI pattern contains an unknown token")

// DOIContext carries the values substituted into a DOI pattern
type DOIContext struct {
	JournalCode   string
	ArticleNumber int
	ArticleID     uuid.UUID
	Year          int
	Volume        int
	Issue         string
}

// ValidateDOIPattern checks that every {token} is known and that no stray braces remain
func ValidateDOIPattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return shared.NewDomainError("INVALID_DOI_PATTERN", "DOI pattern cannot be empty")
	}
	if len(pattern) > 200 {
		return shared.NewDomainError("INVALID_DOI_PATTERN", "DOI pattern cannot exceed 200 characters")
	}
	for _, m := range patternTokenRegex.FindAllStringSubmatch(pattern, -1) {
		if !knownTokens[m[1]] {
			return shared.NewDomainError("INVALID_DOI_PATTERN", "DOI pattern contains an unknown token: {"+m[1]+"}")
		}
	}
	rest := patternTokenRegex.ReplaceAllString(pattern, "")
	if strings.ContainsAny(rest, "{}") {
		return shared.NewDomainError("INVALID_DOI_PATTERN", "DOI pattern has unbalanced braces")
	}
	if strings.ContainsAny(rest, " \t\n") {
		return shared.NewDomainError("INVALID_DOI_PATTERN", "DOI pattern cannot contain whitespace")
	}
	return nil
}

// RenderDOISuffix substitutes the context values into the pattern
func RenderDOISuffix(pattern string, dc DOIContext) (string, error) {
	if err := ValidateDOIPattern(pattern); err != nil {
		return "", err
	}

	var renderErr error
	out := patternTokenRegex.ReplaceAllStringFunc(pattern, func(tok string) string {
		name := tok[1 : len(tok)-1]
		switch name {
		case TokenJournalCode:
			return dc.JournalCode
		case TokenArticleNumber:
			return strconv.Itoa(dc.ArticleNumber)
		case TokenArticleID:
			return dc.ArticleID.String()
		case TokenYear:
			if dc.Year == 0 {
				return ""
			}
			return strconv.Itoa(dc.Year)
		case TokenVolume:
			if dc.Volume == 0 {
				return ""
			}
			return strconv.Itoa(dc.Volume)
		case TokenIssue:
			return dc.Issue
		default:
			renderErr = ErrUnknownDOIToken
			return tok
		}
	})
	if renderErr != nil {
		return "", renderErr
	}
	if !doiSuffixRegex.MatchString(out) {
		return "", shared.NewDomainError("INVALID_DOI_PATTERN", "DOI pattern rendered an empty suffix")
	}
	return out, nil
}

// RenderDOI returns prefix + "/" + rendered suffix
func (j *Journal) RenderDOI(dc DOIContext) (string, error) {
	if !j.HasDOIPrefix() {
		return "", shared.NewDomainError("DOI_PREFIX_MISSING", "Journal has no DOI prefix configured")
	}
	pattern := j.DOIPattern
	if pattern == "" {
		pattern = DefaultDOIPattern
	}
	dc.JournalCode = j.Code
	suffix, err := RenderDOISuffix(pattern, dc)
	if err != nil {
		return "", err
	}
	return j.DOIPrefix + "/" + suffix, nil
}
