package citation

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// metaTag is one <meta> element, in document order
type metaTag struct {
	name    string
	content string
}

// metaTags holds every named meta tag of a page
type metaTags []metaTag

// readMetaTags collects <meta name|property content> pairs.
// Names are lower-cased so lookups are case-insensitive.
func readMetaTags(r io.Reader) (metaTags, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var tags metaTags
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, content string
			hasContent := false
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "name", "property":
					if name == "" {
						name = strings.ToLower(strings.TrimSpace(a.Val))
					}
				case "content":
					content = strings.TrimSpace(a.Val)
					hasContent = true
				}
			}
			if name != "" && hasContent {
				tags = append(tags, metaTag{name: name, content: content})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tags, nil
}

// first returns the first non-empty content among names, in the order given
func (t metaTags) first(names ...string) string {
	for _, name := range names {
		for _, tag := range t {
			if tag.name == name && tag.content != "" {
				return tag.content
			}
		}
	}
	return ""
}

// all returns every non-empty content for name
func (t metaTags) all(name string) []string {
	var out []string
	for _, tag := range t {
		if tag.name == name && tag.content != "" {
			out = append(out, tag.content)
		}
	}
	return out
}
