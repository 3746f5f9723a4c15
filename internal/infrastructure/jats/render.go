package jats

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/scholarly/backcontent/internal/domain/submission"
)

const previewTemplate = `<article class="jats-preview"{{with .Lang}} lang="{{.}}"{{end}}>
<header>
<h1>{{.Title}}</h1>
{{- with .Subtitle}}
<p class="subtitle">{{.}}</p>
{{- end}}
{{- if .Authors}}
<ul class="authors">
{{- range .Authors}}
<li>{{.Name}}{{with .Affiliation}} <span class="affiliation">{{.}}</span>{{end}}</li>
{{- end}}
</ul>
{{- end}}
{{- with .Citation}}
<p class="citation">{{.}}</p>
{{- end}}
{{- with .DOI}}
<p class="doi"><a href="https://doi.org/{{.}}">https://doi.org/{{.}}</a></p>
{{- end}}
</header>
{{- with .Abstract}}
<section class="abstract"><h2>Abstract</h2>{{.}}</section>
{{- end}}
{{- with .Keywords}}
<p class="keywords">Keywords: {{join . ", "}}</p>
{{- end}}
{{- with .Body}}
<div class="body">{{.}}</div>
{{- end}}
</article>
`

type previewAuthor struct {
	Name        string
	Affiliation string
}

type preview struct {
	Lang     string
	Title    string
	Subtitle string
	Authors  []previewAuthor
	Citation string
	DOI      string
	Abstract template.HTML
	Keywords []string
	Body     template.HTML
}

// Renderer produces an HTML preview of a JATS article
type Renderer struct {
	parser *Parser
	tmpl   *template.Template
}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	tmpl := template.Must(template.New("preview").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(previewTemplate))
	return &Renderer{parser: NewParser(), tmpl: tmpl}
}

// RenderHTML renders the front matter and body. Only a fixed set of
// elements reaches the output; everything else is unwrapped or dropped.
func (r *Renderer) RenderHTML(in io.Reader) (string, error) {
	doc, err := decode(in)
	if err != nil {
		return "", err
	}
	meta, err := r.parser.metadata(doc)
	if err != nil {
		return "", err
	}

	view := preview{
		Lang:     meta.Language,
		Title:    meta.Title,
		Subtitle: meta.Subtitle,
		Citation: citation(meta),
		DOI:      meta.DOI,
		Keywords: meta.Keywords,
	}
	for _, a := range meta.Authors {
		view.Authors = append(view.Authors, previewAuthor{
			Name:        strings.TrimSpace(a.Given + " " + a.Family),
			Affiliation: a.Affiliation,
		})
	}
	if a := mainAbstract(doc.Front.ArticleMeta.Abstracts); a != "" {
		view.Abstract = toHTML(a, 2, true)
	}
	if doc.Body != nil {
		view.Body = toHTML(doc.Body.Inner, 1, false)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render jats preview: %w", err)
	}
	return buf.String(), nil
}

func citation(meta *submission.ImportedMetadata) string {
	var parts []string
	if meta.ContainerTitle != "" {
		parts = append(parts, meta.ContainerTitle)
	}
	switch {
	case meta.Volume != "" && meta.Issue != "":
		parts = append(parts, fmt.Sprintf("%s(%s)", meta.Volume, meta.Issue))
	case meta.Volume != "":
		parts = append(parts, meta.Volume)
	}
	if meta.PageNumbers != "" {
		parts = append(parts, meta.PageNumbers)
	}
	if meta.DatePublished != nil {
		parts = append(parts, meta.DatePublished.Format("2006"))
	}
	return strings.Join(parts, ", ")
}

// htmlElements maps JATS elements onto the HTML emitted for them
var htmlElements = map[string]string{
	"p":          "p",
	"italic":     "em",
	"bold":       "strong",
	"underline":  "u",
	"monospace":  "code",
	"sup":        "sup",
	"sub":        "sub",
	"sec":        "section",
	"list-item":  "li",
	"disp-quote": "blockquote",
	"preformat":  "pre",
	"fig":        "figure",
	"table-wrap": "figure",
	"caption":    "figcaption",
	"table":      "table",
	"thead":      "thead",
	"tbody":      "tbody",
	"tr":         "tr",
	"th":         "th",
	"td":         "td",
}

// droppedElements are removed with their content
var droppedElements = map[string]bool{
	"math":           true,
	"tex-math":       true,
	"graphic":        true,
	"inline-graphic": true,
	"object-id":      true,
	"alt-text":       true,
}

// toHTML rebuilds JATS content as HTML. Text is escaped and attributes are
// never copied, except vetted link targets and table spans. Section titles
// start at <h{headingBase+1}>; dropLeadTitle removes a title outside any section.
func toHTML(inner string, headingBase int, dropLeadTitle bool) template.HTML {
	d := xml.NewDecoder(strings.NewReader("<r>" + inner + "</r>"))
	d.Entity = xml.HTMLEntity
	d.Strict = false

	var buf bytes.Buffer
	var closers []string
	skip, sections := 0, 0
	parent := func() string {
		if len(closers) == 0 {
			return ""
		}
		return closers[len(closers)-1]
	}

	for {
		tok, err := d.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if skip > 0 || droppedElements[name] || (dropLeadTitle && name == "title" && sections == 0) {
				skip++
				continue
			}
			closer := ""
			switch name {
			case "r":
			case "title":
				if parent() == "</figcaption>" {
					buf.WriteString("<strong>")
					closer = "</strong>"
					break
				}
				level := headingBase + sections
				if level > 6 {
					level = 6
				}
				fmt.Fprintf(&buf, "<h%d>", level)
				closer = fmt.Sprintf("</h%d>", level)
			case "list":
				tag := "ul"
				if attr(t, "list-type") == "order" {
					tag = "ol"
				}
				buf.WriteString("<" + tag + ">")
				closer = "</" + tag + ">"
			case "ext-link", "uri":
				if href := safeHref(attr(t, "href")); href != "" {
					fmt.Fprintf(&buf, `<a href="%s">`, template.HTMLEscapeString(href))
					closer = "</a>"
				}
			case "break":
				buf.WriteString("<br>")
			case "th", "td":
				buf.WriteString("<" + name)
				for _, span := range []string{"colspan", "rowspan"} {
					if v := attr(t, span); v != "" && isDigits(v) {
						fmt.Fprintf(&buf, ` %s="%s"`, span, v)
					}
				}
				buf.WriteString(">")
				closer = "</" + name + ">"
			default:
				if tag, ok := htmlElements[name]; ok {
					buf.WriteString("<" + tag + ">")
					closer = "</" + tag + ">"
				}
			}
			if name == "sec" {
				sections++
			}
			closers = append(closers, closer)
		case xml.EndElement:
			if skip > 0 {
				skip--
				continue
			}
			if len(closers) == 0 {
				continue
			}
			closer := closers[len(closers)-1]
			closers = closers[:len(closers)-1]
			buf.WriteString(closer)
			if t.Name.Local == "sec" {
				sections--
			}
		case xml.CharData:
			if skip == 0 {
				buf.WriteString(template.HTMLEscapeString(string(t)))
			}
		}
	}
	return template.HTML(strings.TrimSpace(buf.String()))
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

func safeHref(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

var _ backcontent.JATSRenderer = (*Renderer)(nil)
