package submission

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// IdentifierType is the kind of persistent identifier
type IdentifierType string

const (
	IdentifierDOI   IdentifierType = "doi"
	IdentifierPubID IdentifierType = "pubid"
)

var doiRegex = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// Identifier is a persistent identifier attached to an article
type Identifier struct {
	ID      uuid.UUID
	Type    IdentifierType
	Value   string
	Enabled bool
}

// String renders the identifier the way editors see it in messages
func (i Identifier) String() string {
	return i.Value
}

// NormalizeDOI strips resolver prefixes and whitespace from a DOI.
func NormalizeDOI(raw string) string {
	doi := strings.TrimSpace(raw)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			doi = strings.TrimSpace(doi[len(prefix):])
			break
		}
	}
	return doi
}

// ValidateDOI checks a normalized DOI
func ValidateDOI(doi string) error {
	if !doiRegex.MatchString(doi) {
		return shared.NewDomainError("INVALID_DOI", "DOI must look like 10.1234/suffix")
	}
	return nil
}

// DOI returns the enabled DOI value, or "" when none is set
func (a *Article) DOI() string {
	for _, id := range a.Identifiers {
		if id.Type == IdentifierDOI && id.Enabled {
			return id.Value
		}
	}
	return ""
}

// AddIdentifier attaches an enabled identifier.
// An article carries at most one identifier per type.
func (a *Article) AddIdentifier(t IdentifierType, value string) (Identifier, error) {
	value = strings.TrimSpace(value)
	switch t {
	case IdentifierDOI:
		value = NormalizeDOI(value)
		if err := ValidateDOI(value); err != nil {
			return Identifier{}, err
		}
	case IdentifierPubID:
		if value == "" {
			return Identifier{}, shared.NewDomainError("INVALID_IDENTIFIER", "Identifier cannot be empty")
		}
	default:
		return Identifier{}, shared.NewDomainError("INVALID_IDENTIFIER", "Unknown identifier type: "+string(t))
	}
	for _, id := range a.Identifiers {
		if id.Type == t {
			return Identifier{}, shared.NewDomainError("IDENTIFIER_EXISTS", "Article already has a "+string(t)+" identifier")
		}
	}

	id := Identifier{ID: uuid.New(), Type: t, Value: value, Enabled: true}
	a.Identifiers = append(a.Identifiers, id)
	a.Touch()
	return id, nil
}
