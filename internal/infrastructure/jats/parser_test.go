package jats

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse(t *testing.T) {
	meta, err := NewParser().Parse(strings.NewReader(sampleArticle))
	require.NoError(t, err)

	published := time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC)
	want := &submission.ImportedMetadata{
		Title:         "Wing venation in island Drosophila",
		Subtitle:      "A field study",
		Abstract:      meta.Abstract,
		Language:      "en",
		DOI:           "10.1234/jb.2019.07",
		DatePublished: &published,
		Authors: []submission.ImportedAuthor{
			{Given: "Ada", Family: "Byron", ORCID: "0000-0002-1825-0097", Email: "ada@example.org", Affiliation: "University of Somewhere, Dept. of Flies"},
			{Given: "Charles", Family: "Babbage", Affiliation: "Analytical Engine Society"},
		},
		Keywords:       []string{"genetics", "Evolution"},
		PageNumbers:    "101-118",
		Volume:         "12",
		Issue:          "3",
		ContainerTitle: "Journal of Backfiles",
		Publisher:      "Scholarly Press",
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, meta.Abstract, "**wings**")
	assert.NotContains(t, meta.Abstract, "Abstract")
	assert.NotContains(t, meta.Abstract, "teaser")
}

func TestParser_Minimal(t *testing.T) {
	doc := `<article><front><article-meta>
<title-group><article-title>Bare</article-title></title-group>
<contrib-group><contrib><collab>The Fly Consortium</collab></contrib></contrib-group>
<aff>Only Institute</aff>
<elocation-id>e1234</elocation-id>
<pub-date date-type="pub" publication-format="electronic"><year>2021</year></pub-date>
</article-meta></front></article>`

	meta, err := NewParser().Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Bare", meta.Title)
	assert.Equal(t, "e1234", meta.PageNumbers)
	require.NotNil(t, meta.DatePublished)
	assert.Equal(t, 2021, meta.DatePublished.Year())
	require.Len(t, meta.Authors, 1)
	assert.Equal(t, "The Fly Consortium", meta.Authors[0].Family)
	assert.Equal(t, "Only Institute", meta.Authors[0].Affiliation)
	assert.Empty(t, meta.DOI)
	assert.Empty(t, meta.Abstract)
}

func TestParser_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "not xml", in: "%PDF-1.4 binary"},
		{name: "wrong root", in: `<html><body>hi</body></html>`},
		{name: "no title", in: `<article><front><article-meta></article-meta></front></article>`},
		{name: "empty", in: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, submission.ErrInvalidJATS)
		})
	}
}

func TestTextContent(t *testing.T) {
	assert.Equal(t, "a b", textContent("  a \n b "))
	assert.Equal(t, "Tom & Jerry", textContent("Tom &amp; Jerry"))
	assert.Equal(t, "Univ X", textContent("<label>1</label>Univ <italic>X</italic>", "label"))
	assert.Equal(t, "café", textContent("caf&eacute;"))
}
