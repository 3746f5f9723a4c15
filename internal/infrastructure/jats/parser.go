// Package jats reads JATS XML articles: front matter for imports and an
// HTML preview for XML galleys.
package jats

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/infrastructure/markup"
	"golang.org/x/net/html/charset"
)

// Parser maps article-meta onto imported metadata
type Parser struct {
	markdown *markup.Converter
}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{markdown: markup.NewConverter()}
}

// Parse reads a JATS document. Anything that is not an <article> with an
// article-title is rejected as INVALID_JATS.
func (p *Parser) Parse(r io.Reader) (*submission.ImportedMetadata, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, err
	}
	return p.metadata(doc)
}

func (p *Parser) metadata(doc *document) (*submission.ImportedMetadata, error) {
	am := &doc.Front.ArticleMeta

	meta := &submission.ImportedMetadata{
		Title:         textContent(am.ArticleTitle.Inner),
		Subtitle:      textContent(am.Subtitle.Inner),
		Language:      strings.TrimSpace(doc.Lang),
		DOI:           doi(am.ArticleIDs),
		DatePublished: publicationDate(am.PubDates),
		Authors:       authors(am),
		Keywords:      keywords(am.KwdGroups),
		PageNumbers:   submission.PageRange(strings.TrimSpace(am.FPage), strings.TrimSpace(am.LPage)),
		Volume:        strings.TrimSpace(am.Volume),
		Issue:         strings.TrimSpace(am.Issue),
		Publisher:     strings.TrimSpace(doc.Front.JournalMeta.Publisher),
	}
	if meta.Title == "" {
		return nil, fmt.Errorf("%w: article-title is missing", submission.ErrInvalidJATS)
	}
	if meta.PageNumbers == "" {
		meta.PageNumbers = strings.TrimSpace(am.ELocationID)
	}
	if titles := doc.Front.JournalMeta.JournalTitles; len(titles) > 0 {
		meta.ContainerTitle = strings.TrimSpace(titles[0])
	}
	if a := mainAbstract(am.Abstracts); a != "" {
		abstract, err := p.markdown.JATS(a)
		if err != nil {
			abstract = textContent(a)
		}
		meta.Abstract = abstract
	}
	return meta, nil
}

func decode(r io.Reader) (*document, error) {
	d := xml.NewDecoder(r)
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charset.NewReaderLabel

	var doc document
	if err := d.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", submission.ErrInvalidJATS, err)
	}
	return &doc, nil
}

func doi(ids []articleID) string {
	for _, id := range ids {
		if strings.EqualFold(id.PubIDType, "doi") {
			return submission.NormalizeDOI(id.Value)
		}
	}
	return ""
}

// mainAbstract prefers the untyped abstract over graphical or teaser ones
func mainAbstract(abstracts []abstract) string {
	for _, a := range abstracts {
		if a.Type == "" {
			return a.Inner
		}
	}
	if len(abstracts) > 0 {
		return abstracts[0].Inner
	}
	return ""
}

func authors(am *articleMeta) []submission.ImportedAuthor {
	byID := make(map[string]string)
	for _, a := range am.Affs {
		if a.ID != "" {
			byID[a.ID] = a.text()
		}
	}
	for _, g := range am.ContribGroups {
		for _, a := range g.Affs {
			if a.ID != "" {
				byID[a.ID] = a.text()
			}
		}
	}

	var out []submission.ImportedAuthor
	for _, g := range am.ContribGroups {
		for _, c := range g.Contribs {
			if c.ContribType != "" && c.ContribType != "author" {
				continue
			}
			author := submission.ImportedAuthor{
				Given:  strings.TrimSpace(c.GivenNames),
				Family: strings.TrimSpace(c.Surname),
				Email:  strings.TrimSpace(c.Email),
			}
			if author.Given == "" && author.Family == "" {
				author.Family = textContent(c.Collab.Inner)
			}
			if author.Given == "" && author.Family == "" {
				continue
			}
			for _, id := range c.ContribIDs {
				if strings.EqualFold(id.Type, "orcid") {
					author.ORCID = bareORCID(id.Value)
				}
			}
			author.Affiliation = affiliation(c, g, am, byID)
			out = append(out, author)
		}
	}
	return out
}

// affiliation looks at the contrib itself, then its aff xrefs, then a single
// aff shared by the whole group or article
func affiliation(c contrib, g contribGroup, am *articleMeta, byID map[string]string) string {
	if len(c.Affs) > 0 {
		return c.Affs[0].text()
	}
	for _, x := range c.Xrefs {
		if x.RefType != "aff" {
			continue
		}
		for _, rid := range strings.Fields(x.RID) {
			if text, ok := byID[rid]; ok {
				return text
			}
		}
	}
	if len(g.Affs) == 1 {
		return g.Affs[0].text()
	}
	if len(am.Affs) == 1 {
		return am.Affs[0].text()
	}
	return ""
}

func (a aff) text() string {
	if len(a.Institutions) > 0 {
		parts := make([]string, 0, len(a.Institutions))
		for _, inst := range a.Institutions {
			if inst = strings.TrimSpace(inst); inst != "" {
				parts = append(parts, inst)
			}
		}
		return strings.Join(parts, ", ")
	}
	return textContent(a.Inner, "label", "sup")
}

// publicationDate prefers the print date over the electronic one
func publicationDate(dates []pubDate) *time.Time {
	var best *time.Time
	bestRank := 3
	for _, d := range dates {
		t := d.time()
		if t == nil {
			continue
		}
		if rank := d.rank(); rank < bestRank {
			best, bestRank = t, rank
		}
	}
	return best
}

func (d pubDate) rank() int {
	switch {
	case d.PubType == "ppub", d.Format == "print":
		return 0
	case d.PubType == "epub", d.Format == "electronic", d.DateType == "pub":
		return 1
	}
	return 2
}

func (d pubDate) time() *time.Time {
	year, err := strconv.Atoi(strings.TrimSpace(d.Year))
	if err != nil || year <= 0 {
		return nil
	}
	month, day := 1, 1
	if m, err := strconv.Atoi(strings.TrimSpace(d.Month)); err == nil && m >= 1 && m <= 12 {
		month = m
	}
	if v, err := strconv.Atoi(strings.TrimSpace(d.Day)); err == nil && v >= 1 && v <= 31 {
		day = v
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func keywords(groups []kwdGroup) []string {
	var out []string
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, k := range g.Kwds {
			text := textContent(k.Inner)
			key := strings.ToLower(text)
			if text == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, text)
		}
	}
	return out
}

// textContent flattens inline markup to plain text with collapsed whitespace.
// Elements named in skip are dropped along with their content.
func textContent(inner string, skip ...string) string {
	if !strings.Contains(inner, "<") && !strings.Contains(inner, "&") {
		return strings.Join(strings.Fields(inner), " ")
	}
	d := xml.NewDecoder(strings.NewReader("<r>" + inner + "</r>"))
	d.Entity = xml.HTMLEntity
	d.Strict = false

	var buf bytes.Buffer
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth > 0 || contains(skip, t.Name.Local) {
				depth++
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
			}
		case xml.CharData:
			if depth == 0 {
				buf.Write(t)
			}
		}
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func bareORCID(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://orcid.org/")
	return strings.TrimPrefix(s, "http://orcid.org/")
}

var _ backcontent.JATSParser = (*Parser)(nil)
