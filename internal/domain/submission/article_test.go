package submission

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArticle(t *testing.T) *Article {
	t.Helper()
	return NewArticle(uuid.New(), 1)
}

func TestNewArticle(t *testing.T) {
	journalID := uuid.New()
	a := NewArticle(journalID, 7)

	assert.Equal(t, journalID, a.JournalID)
	assert.Equal(t, 7, a.Number)
	assert.Equal(t, StageBackContent, a.Stage)
	assert.False(t, a.IsPublished())
	require.Len(t, a.GetDomainEvents(), 1)
	_, ok := a.GetDomainEvents()[0].(*ArticleCreatedEvent)
	assert.True(t, ok)
}

func TestArticle_SaveInfo(t *testing.T) {
	t.Run("saves trimmed fields and normalizes language", func(t *testing.T) {
		a := newTestArticle(t)
		err := a.SaveInfo(ArticleInfo{
			Title:    "  On Back Content  ",
			Language: "en",
			Keywords: []string{"History", " history ", "", "Archives"},
		})

		require.NoError(t, err)
		assert.Equal(t, "On Back Content", a.Title)
		assert.Equal(t, "eng", a.Language)
		assert.Equal(t, []string{"History", "Archives"}, a.Keywords)
		assert.Equal(t, 2, a.Version)
	})

	t.Run("title is required", func(t *testing.T) {
		a := newTestArticle(t)
		err := a.SaveInfo(ArticleInfo{Title: "   "})
		assert.Error(t, err)
	})

	t.Run("title limit is 999 characters", func(t *testing.T) {
		a := newTestArticle(t)
		require.NoError(t, a.SaveInfo(ArticleInfo{Title: strings.Repeat("é", 999)}))
		assert.Error(t, a.SaveInfo(ArticleInfo{Title: strings.Repeat("a", 1000)}))
	})

	t.Run("rejects unknown language", func(t *testing.T) {
		a := newTestArticle(t)
		err := a.SaveInfo(ArticleInfo{Title: "T", Language: "not a language"})
		assert.Error(t, err)
	})
}

func TestArticle_SavePublicationInfo(t *testing.T) {
	a := newTestArticle(t)
	accepted := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	published := time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)

	err := a.SavePublicationInfo(PublicationInfo{DateAccepted: &accepted, DatePublished: &published})
	assert.Error(t, err)

	published = time.Date(2019, 4, 1, 0, 0, 0, 0, time.UTC)
	issueID := uuid.New()
	err = a.SavePublicationInfo(PublicationInfo{
		DateAccepted:   &accepted,
		DatePublished:  &published,
		PageNumbers:    " 1-20 ",
		PrimaryIssueID: &issueID,
		PeerReviewed:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "1-20", a.PageNumbers)
	assert.Equal(t, &issueID, a.PrimaryIssueID)
	assert.True(t, a.PeerReviewed)
}

func TestArticle_Authors(t *testing.T) {
	a := newTestArticle(t)
	first, second, third := uuid.New(), uuid.New(), uuid.New()

	assert.True(t, a.AddAuthor(first))
	assert.True(t, a.AddAuthor(second))
	assert.False(t, a.AddAuthor(first), "re-adding is a no-op")
	assert.True(t, a.AddAuthor(third))
	assert.Equal(t, []uuid.UUID{first, second, third}, a.AuthorIDs())

	t.Run("correspondence author must be attached", func(t *testing.T) {
		assert.ErrorIs(t, a.SetCorrespondenceAuthor(uuid.New()), ErrAuthorNotAttached)
		require.NoError(t, a.SetCorrespondenceAuthor(second))
		assert.Equal(t, second, *a.CorrespondenceAuthorID)
	})

	t.Run("remove renumbers and clears correspondence", func(t *testing.T) {
		require.NoError(t, a.RemoveAuthor(second))
		assert.Nil(t, a.CorrespondenceAuthorID)
		sorted := a.SortedAuthors()
		require.Len(t, sorted, 2)
		assert.Equal(t, ArticleAuthor{AccountID: first, Order: 0}, sorted[0])
		assert.Equal(t, ArticleAuthor{AccountID: third, Order: 1}, sorted[1])
		assert.ErrorIs(t, a.RemoveAuthor(second), ErrAuthorNotAttached)
	})

	t.Run("reorder requires exact set", func(t *testing.T) {
		assert.Error(t, a.ReorderAuthors([]uuid.UUID{first}))
		assert.Error(t, a.ReorderAuthors([]uuid.UUID{first, first}))
		assert.Error(t, a.ReorderAuthors([]uuid.UUID{first, uuid.New()}))

		require.NoError(t, a.ReorderAuthors([]uuid.UUID{third, first}))
		assert.Equal(t, []uuid.UUID{third, first}, a.AuthorIDs())
	})

	t.Run("next order follows the max", func(t *testing.T) {
		fourth := uuid.New()
		a.AddAuthor(fourth)
		assert.Equal(t, []uuid.UUID{third, first, fourth}, a.AuthorIDs())
	})
}

func TestArticle_Identifiers(t *testing.T) {
	a := newTestArticle(t)

	id, err := a.AddIdentifier(IdentifierDOI, " https://doi.org/10.16995/olh.42 ")
	require.NoError(t, err)
	assert.Equal(t, "10.16995/olh.42", id.Value)
	assert.True(t, id.Enabled)
	assert.Equal(t, "10.16995/olh.42", a.DOI())

	_, err = a.AddIdentifier(IdentifierDOI, "10.1000/other")
	assert.Error(t, err)

	_, err = a.AddIdentifier(IdentifierDOI, "not-a-doi")
	assert.Error(t, err)
}

func TestNormalizeDOI(t *testing.T) {
	cases := map[string]string{
		"10.1000/xyz":                 "10.1000/xyz",
		"  doi:10.1000/xyz ":          "10.1000/xyz",
		"DOI:10.1000/XYZ":             "10.1000/XYZ",
		"https://dx.doi.org/10.1/abc": "10.1/abc",
		"http://doi.org/10.1000/x":    "10.1000/x",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDOI(in), in)
	}
}

func TestArticle_Publish(t *testing.T) {
	t.Run("snapshots accounts and emits event", func(t *testing.T) {
		a := newTestArticle(t)
		require.NoError(t, a.SaveInfo(ArticleInfo{Title: "T"}))
		first, second := uuid.New(), uuid.New()
		a.AddAuthor(first)
		a.AddAuthor(second)
		a.ClearDomainEvents()

		frozen := a.SnapshotAuthors(map[uuid.UUID]AuthorDetails{
			second: {LastName: "Second"},
			first:  {LastName: "First"},
		})
		require.Len(t, frozen, 2)
		assert.Equal(t, "First", frozen[0].LastName)
		assert.Equal(t, first, *frozen[0].AccountID)

		now := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, a.Publish(frozen, now))

		assert.True(t, a.IsPublished())
		assert.Equal(t, now, *a.DatePublished)
		require.Len(t, a.GetDomainEvents(), 1)
		ev, ok := a.GetDomainEvents()[0].(*ArticlePublishedEvent)
		require.True(t, ok)
		assert.Equal(t, EventTypeArticlePublished, ev.EventType())
		assert.Equal(t, 2, ev.AuthorCount)
	})

	t.Run("republish is rejected", func(t *testing.T) {
		a := newTestArticle(t)
		require.NoError(t, a.Publish(nil, time.Now()))
		assert.ErrorIs(t, a.Publish(nil, time.Now()), ErrArticleAlreadyPublished)
	})

	t.Run("keeps provisional authors and existing date", func(t *testing.T) {
		a := newTestArticle(t)
		require.NoError(t, a.AddProvisionalAuthor(AuthorDetails{FirstName: "Ada", LastName: "Lovelace"}))
		published := time.Date(1843, 9, 1, 0, 0, 0, 0, time.UTC)
		a.DatePublished = &published

		require.NoError(t, a.Publish(a.SnapshotAuthors(nil), time.Now()))
		require.Len(t, a.FrozenAuthors, 1)
		assert.True(t, a.FrozenAuthors[0].IsProvisional())
		assert.Equal(t, "Ada Lovelace", a.FrozenAuthors[0].FullName())
		assert.Equal(t, published, *a.DatePublished)
	})
}

func TestNewGalley(t *testing.T) {
	journalID, articleID := uuid.New(), uuid.New()

	t.Run("builds storage key", func(t *testing.T) {
		g, err := NewGalley(journalID, articleID, GalleyPDF, "../Paper.PDF", "application/pdf", 1024, 0)
		require.NoError(t, err)
		assert.Equal(t, "Paper.PDF", g.OriginalName)
		assert.True(t, strings.HasSuffix(g.FileName, ".pdf"))
		assert.Equal(t, "journals/"+journalID.String()+"/articles/"+articleID.String()+"/galleys/"+g.FileName, g.StorageKey)
		assert.False(t, g.IsOther)
	})

	t.Run("content type whitelist per kind", func(t *testing.T) {
		_, err := NewGalley(journalID, articleID, GalleyPDF, "a.xml", "application/xml", 10, 0)
		assert.Error(t, err)

		g, err := NewGalley(journalID, articleID, GalleyXML, "a.xml", "text/xml; charset=utf-8", 10, 0)
		require.NoError(t, err)
		assert.True(t, g.IsXML())

		_, err = NewGalley(journalID, articleID, GalleyOther, "a.svg", "image/svg+xml", 10, 0)
		assert.Error(t, err)

		g, err = NewGalley(journalID, articleID, GalleyOther, "data.zip", "application/zip", 10, 0)
		require.NoError(t, err)
		assert.True(t, g.IsOther)
	})

	t.Run("size limits", func(t *testing.T) {
		_, err := NewGalley(journalID, articleID, GalleyPDF, "a.pdf", "application/pdf", 0, 0)
		assert.Error(t, err)
		_, err = NewGalley(journalID, articleID, GalleyPDF, "a.pdf", "application/pdf", MaxGalleySize+1, 0)
		assert.Error(t, err)
	})
}

func TestParseGalleyLabel(t *testing.T) {
	l, err := ParseGalleyLabel("PDF")
	require.NoError(t, err)
	assert.Equal(t, GalleyPDF, l)

	_, err = ParseGalleyLabel("epub")
	assert.Error(t, err)
}
