package submission

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// GalleyLabel is the rendition kind shown to readers
type GalleyLabel string

const (
	GalleyPDF   GalleyLabel = "PDF"
	GalleyXML   GalleyLabel = "XML"
	GalleyOther GalleyLabel = "Other"
)

// MaxGalleySize is the per-file upload limit (100MB)
const MaxGalleySize int64 = 100 << 20

var allowedGalleyTypes = map[GalleyLabel]map[string]bool{
	GalleyPDF: {
		"application/pdf": true,
	},
	GalleyXML: {
		"application/xml":      true,
		"text/xml":             true,
		"application/jats+xml": true,
	},
	GalleyOther: {
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		"application/vnd.oasis.opendocument.text":                                 true,
		"application/rtf":               true,
		"application/epub+zip":          true,
		"application/zip":               true,
		"text/plain":                    true,
		"text/html":                     true,
		"text/csv":                      true,
		"image/jpeg":                    true,
		"image/png":                     true,
		"image/gif":                     true,
		"image/tiff":                    true,
		"image/webp":                    true,
		"application/vnd.ms-excel":      true,
		"application/vnd.ms-powerpoint": true,
		"application/x-latex":           true,
		"application/x-tex":             true,
		"application/vnd.oasis.opendocument.spreadsheet":                    true,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	},
}

// ParseGalleyLabel maps a wizard button or API kind to a label
func ParseGalleyLabel(kind string) (GalleyLabel, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "pdf":
		return GalleyPDF, nil
	case "xml":
		return GalleyXML, nil
	case "other":
		return GalleyOther, nil
	default:
		return "", shared.NewDomainError("INVALID_GALLEY_KIND", "Galley kind must be pdf, xml or other")
	}
}

// IsValid reports whether the label is known
func (l GalleyLabel) IsValid() bool {
	_, ok := allowedGalleyTypes[l]
	return ok
}

// AllowsContentType reports whether a MIME type may be uploaded under the label
func (l GalleyLabel) AllowsContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return allowedGalleyTypes[l][ct]
}

// Galley is a publishable file rendition of an article
type Galley struct {
	shared.BaseEntity
	JournalID    uuid.UUID
	ArticleID    uuid.UUID
	Label        GalleyLabel
	IsOther      bool
	FileName     string
	OriginalName string
	ContentType  string
	FileSize     int64
	StorageKey   string
	Sequence     int
}

// NewGalley validates the upload and creates galley metadata with its storage key
func NewGalley(journalID, articleID uuid.UUID, label GalleyLabel, originalName, contentType string, size int64, sequence int) (*Galley, error) {
	if !label.IsValid() {
		return nil, shared.NewDomainError("INVALID_GALLEY_KIND", "Galley kind must be pdf, xml or other")
	}
	originalName = filepath.Base(strings.TrimSpace(originalName))
	if originalName == "" || originalName == "." || originalName == "/" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(originalName) > 255 {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot exceed 255 characters")
	}
	if size <= 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File is empty")
	}
	if size > MaxGalleySize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the 100MB limit")
	}
	if !label.AllowsContentType(contentType) {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type "+contentType+" is not allowed for "+string(label)+" galleys")
	}

	id := uuid.New()
	ext := strings.ToLower(filepath.Ext(originalName))
	fileName := id.String() + ext
	g := &Galley{
		BaseEntity:   shared.NewBaseEntity(),
		JournalID:    journalID,
		ArticleID:    articleID,
		Label:        label,
		IsOther:      label == GalleyOther,
		FileName:     fileName,
		OriginalName: originalName,
		ContentType:  contentType,
		FileSize:     size,
		Sequence:     sequence,
	}
	g.StorageKey = GalleyStorageKey(journalID, articleID, fileName)
	return g, nil
}

// GalleyStorageKey builds journals/{journal}/articles/{article}/galleys/{file}
func GalleyStorageKey(journalID, articleID uuid.UUID, fileName string) string {
	return "journals/" + journalID.String() + "/articles/" + articleID.String() + "/galleys/" + fileName
}

// IsXML reports whether the galley can be rendered as a JATS preview
func (g *Galley) IsXML() bool {
	return g.Label == GalleyXML
}
