package jats

import (
	"strings"
	"testing"

	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_RenderHTML(t *testing.T) {
	out, err := NewRenderer().RenderHTML(strings.NewReader(sampleArticle))
	require.NoError(t, err)

	t.Run("front matter", func(t *testing.T) {
		assert.Contains(t, out, `lang="en"`)
		assert.Contains(t, out, "<h1>Wing venation in island Drosophila</h1>")
		assert.Contains(t, out, `<p class="subtitle">A field study</p>`)
		assert.Contains(t, out, "Ada Byron")
		assert.Contains(t, out, "Analytical Engine Society")
		assert.NotContains(t, out, "Some Editor")
		assert.Contains(t, out, "Journal of Backfiles, 12(3), 101-118, 2019")
		assert.Contains(t, out, `href="https://doi.org/10.1234/jb.2019.07"`)
		assert.Contains(t, out, "Keywords: genetics, Evolution")
	})

	t.Run("abstract", func(t *testing.T) {
		assert.Contains(t, out, "<strong>wings</strong> &amp; veins.")
		assert.Equal(t, 1, strings.Count(out, ">Abstract<"))
	})

	t.Run("body", func(t *testing.T) {
		assert.Contains(t, out, "<section><h2>Introduction</h2>")
		assert.Contains(t, out, "<h3>Background</h3>")
		assert.Contains(t, out, "<em>wings</em>")
		assert.Contains(t, out, `<a href="https://example.org/data">the data</a>`)
		assert.Contains(t, out, "<ol><li><p>Catch</p></li>")
		assert.Contains(t, out, "<figcaption><strong>Table 1</strong></figcaption>")
		assert.Contains(t, out, `<th colspan="2">Wing</th>`)
		assert.Contains(t, out, "<td>a</td>")
		assert.Contains(t, out, "Formula  done.")
	})

	t.Run("unsafe content never becomes markup", func(t *testing.T) {
		assert.NotContains(t, out, "javascript:")
		assert.NotContains(t, out, "<script")
		assert.NotContains(t, out, "xlink")
	})
}

func TestRenderer_Invalid(t *testing.T) {
	_, err := NewRenderer().RenderHTML(strings.NewReader("not xml at all"))
	assert.ErrorIs(t, err, submission.ErrInvalidJATS)
}
