package submission

import (
	"time"

	"github.com/scholarly/backcontent/internal/domain/shared"
)

// Errors returned by metadata sources
var (
	ErrDOINotFound          = shared.NewDomainError("DOI_NOT_FOUND", "DOI was not found in the registry")
	ErrRegistryUnavailable  = shared.NewDomainError("REGISTRY_UNAVAILABLE", "Metadata registry is unavailable")
	ErrNoCitationMetadata   = shared.NewDomainError("NO_CITATION_METADATA", "Page has no citation_title meta tag")
	ErrRemoteFetchFailed    = shared.NewDomainError("REMOTE_FETCH_FAILED", "Remote page could not be fetched")
	ErrInvalidJATS          = shared.NewDomainError("INVALID_JATS", "File is not a JATS article")
	ErrUnsupportedRemoteURL = shared.NewDomainError("INVALID_URL", "Only http and https URLs can be imported")
)

// ImportedAuthor is an author as described by an external source
type ImportedAuthor struct {
	Given       string
	Family      string
	ORCID       string
	Affiliation string
	Email       string
}

// ImportedMetadata is the common shape produced by every importer
type ImportedMetadata struct {
	Title          string
	Subtitle       string
	Abstract       string
	Language       string
	DOI            string
	DatePublished  *time.Time
	Authors        []ImportedAuthor
	Keywords       []string
	PageNumbers    string
	Volume         string
	Issue          string
	ContainerTitle string
	Publisher      string
	RemoteURL      string
	IsRemote       bool
}

// PageRange joins first and last page as "first-last"
func PageRange(first, last string) string {
	switch {
	case first != "" && last != "" && first != last:
		return first + "-" + last
	case first != "":
		return first
	default:
		return last
	}
}
