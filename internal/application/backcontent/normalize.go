package backcontent

import (
	"strings"
	"unicode"

	"github.com/scholarly/backcontent/internal/domain/submission"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// normalizeImported cleans metadata from external sources before it reaches the domain.
// Text is NFC-composed and whitespace-collapsed. Names shouted in capitals are title-cased.
func normalizeImported(m *submission.ImportedMetadata) {
	m.Title = collapse(m.Title)
	m.Subtitle = collapse(m.Subtitle)
	m.Abstract = strings.TrimSpace(norm.NFC.String(m.Abstract))
	m.Language = strings.TrimSpace(m.Language)
	m.DOI = submission.NormalizeDOI(m.DOI)
	m.PageNumbers = collapse(m.PageNumbers)
	m.Volume = collapse(m.Volume)
	m.Issue = collapse(m.Issue)
	m.ContainerTitle = collapse(m.ContainerTitle)
	m.Publisher = collapse(m.Publisher)
	m.RemoteURL = strings.TrimSpace(m.RemoteURL)

	keywords := make([]string, 0, len(m.Keywords))
	for _, kw := range m.Keywords {
		if kw = collapse(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	m.Keywords = keywords

	authors := make([]submission.ImportedAuthor, 0, len(m.Authors))
	for _, a := range m.Authors {
		a.Given = normalizeName(a.Given)
		a.Family = normalizeName(a.Family)
		a.Affiliation = collapse(a.Affiliation)
		a.Email = strings.ToLower(strings.TrimSpace(a.Email))
		a.ORCID = strings.TrimSpace(a.ORCID)
		if a.Given == "" && a.Family == "" {
			continue
		}
		authors = append(authors, a)
	}
	m.Authors = authors
}

func collapse(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

func normalizeName(s string) string {
	s = collapse(s)
	if !isShouted(s) {
		return s
	}
	return cases.Title(language.Und).String(strings.ToLower(s))
}

// isShouted reports whether s has letters and all of them are upper case
func isShouted(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return letters > 1
}
