// Package markup converts the HTML and JATS fragments found in imported
// metadata into the Markdown stored on articles.
package markup

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

var (
	jatsTitleRe      = regexp.MustCompile(`(?is)<(?:jats:)?title[^>]*>.*?</(?:jats:)?title>`)
	jatsTagRe        = regexp.MustCompile(`(?i)<(/?)(?:jats:)?([a-z][a-z0-9-]*)([^>]*)>`)
	scriptRe         = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	excessiveLinesRe = regexp.MustCompile(`\n{3,}`)
)

// jatsInline maps JATS inline and block elements onto their HTML equivalents.
// Elements not listed are unwrapped.
var jatsInline = map[string]string{
	"p":              "p",
	"italic":         "em",
	"bold":           "strong",
	"sup":            "sup",
	"sub":            "sub",
	"list":           "ul",
	"list-item":      "li",
	"sec":            "div",
	"underline":      "u",
	"monospace":      "code",
	"break":          "br",
	"ext-link":       "span",
	"sc":             "span",
	"inline-formula": "span",
}

// Converter turns markup fragments into Markdown. It is safe for concurrent use.
type Converter struct {
	converter *md.Converter
}

// NewConverter creates a converter with GitHub flavoured output
func NewConverter() *Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Converter{converter: converter}
}

// HTML converts an HTML fragment. Plain text is returned trimmed.
func (c *Converter) HTML(fragment string) (string, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || !strings.Contains(fragment, "<") {
		return fragment, nil
	}
	fragment = scriptRe.ReplaceAllString(fragment, "")
	out, err := c.converter.ConvertString(fragment)
	if err != nil {
		return "", err
	}
	return clean(out), nil
}

// JATS converts a JATS fragment such as a Crossref abstract. Tags may carry
// the jats: prefix or none. Section titles like "Abstract" are dropped.
func (c *Converter) JATS(fragment string) (string, error) {
	fragment = jatsTitleRe.ReplaceAllString(fragment, "")
	fragment = jatsTagRe.ReplaceAllStringFunc(fragment, func(tag string) string {
		m := jatsTagRe.FindStringSubmatch(tag)
		name, ok := jatsInline[strings.ToLower(m[2])]
		if !ok {
			return ""
		}
		if name == "br" {
			return "<br>"
		}
		return "<" + m[1] + name + ">"
	})
	return c.HTML(fragment)
}

func clean(s string) string {
	s = excessiveLinesRe.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
