package citation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const landingPage = `<!DOCTYPE html>
<html><head>
<title>Wing venation | Journal of Backfiles</title>
<meta name="Citation_Title" content="Wing venation in island Drosophila">
<meta name="citation_author" content="Byron, Ada">
<meta name="citation_author_institution" content="University of Somewhere">
<meta name="citation_author_orcid" content="https://orcid.org/0000-0002-1825-0097">
<meta name="citation_author" content="Charles Babbage">
<meta name="citation_author_email" content="cb@example.org">
<meta name="citation_publication_date" content="2019/07/01">
<meta name="citation_doi" content="doi:10.1234/jb.2019.07">
<meta name="citation_language" content="en">
<meta name="citation_keywords" content="genetics; evolution">
<meta name="citation_keywords" content="Genetics">
<meta name="citation_firstpage" content="101">
<meta name="citation_lastpage" content="118">
<meta name="citation_volume" content="12">
<meta name="citation_issue" content="3">
<meta name="citation_journal_title" content="Journal of Backfiles">
<meta property="og:description" content="Open graph text">
<meta name="description" content="&lt;p&gt;We measured &lt;b&gt;wings&lt;/b&gt;.&lt;/p&gt;">
</head><body><p>Body</p></body></html>`

func newTestScraper(t *testing.T, handler http.Handler) (*Scraper, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewScraper(&Config{AllowPrivateHosts: true, Timeout: 5 * time.Second}, zap.NewNop()), server
}

func TestScraper_Scrape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/article/7", http.StatusMovedPermanently)
	})
	var gotUA string
	mux.HandleFunc("/article/7", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(landingPage))
	})
	s, server := newTestScraper(t, mux)

	meta, err := s.Scrape(context.Background(), server.URL+"/old")
	require.NoError(t, err)

	published := time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC)
	want := &submission.ImportedMetadata{
		Title:         "Wing venation in island Drosophila",
		Abstract:      meta.Abstract,
		Language:      "en",
		DOI:           "10.1234/jb.2019.07",
		DatePublished: &published,
		Authors: []submission.ImportedAuthor{
			{Given: "Ada", Family: "Byron", Affiliation: "University of Somewhere", ORCID: "0000-0002-1825-0097"},
			{Given: "Charles", Family: "Babbage", Email: "cb@example.org"},
		},
		Keywords:       []string{"genetics", "evolution"},
		PageNumbers:    "101-118",
		Volume:         "12",
		Issue:          "3",
		ContainerTitle: "Journal of Backfiles",
		RemoteURL:      server.URL + "/article/7",
		IsRemote:       true,
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, meta.Abstract, "**wings**")
	assert.NotContains(t, meta.Abstract, "<p>")
	assert.Contains(t, gotUA, "backcontent")
}

func TestScraper_Fallbacks(t *testing.T) {
	page := `<html><head>
<meta name="citation_title" content="Only a title">
<meta name="citation_online_date" content="2020-02-03">
<meta property="og:description" content="Plain summary">
<meta name="citation_keywords" content="a, b, A">
</head></html>`
	s, server := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))

	meta, err := s.Scrape(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Plain summary", meta.Abstract)
	require.NotNil(t, meta.DatePublished)
	assert.Equal(t, "2020-02-03", meta.DatePublished.Format("2006-01-02"))
	assert.Equal(t, []string{"a", "b"}, meta.Keywords)
	assert.Empty(t, meta.DOI)
	assert.Empty(t, meta.Authors)
}

func TestScraper_Errors(t *testing.T) {
	t.Run("missing citation_title", func(t *testing.T) {
		s, server := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html><head><meta name="description" content="x"></head></html>`))
		}))
		_, err := s.Scrape(context.Background(), server.URL)
		assert.ErrorIs(t, err, submission.ErrNoCitationMetadata)
	})

	t.Run("http error", func(t *testing.T) {
		s, server := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusGone)
		}))
		_, err := s.Scrape(context.Background(), server.URL)
		assert.ErrorIs(t, err, submission.ErrRemoteFetchFailed)
	})

	t.Run("redirect loop", func(t *testing.T) {
		s, server := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
		}))
		_, err := s.Scrape(context.Background(), server.URL+"/a")
		assert.ErrorIs(t, err, submission.ErrRemoteFetchFailed)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		s := NewScraper(&Config{}, zap.NewNop())
		_, err := s.Scrape(context.Background(), "ftp://example.org/a")
		assert.ErrorIs(t, err, submission.ErrUnsupportedRemoteURL)
	})

	t.Run("private hosts are blocked by default", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(landingPage))
		}))
		defer server.Close()

		s := NewScraper(&Config{}, zap.NewNop())
		_, err := s.Scrape(context.Background(), server.URL)
		require.ErrorIs(t, err, submission.ErrRemoteFetchFailed)
		assert.Contains(t, err.Error(), "private address")
	})
}

func TestScraper_BodyLimit(t *testing.T) {
	// the title sits past the limit, so it is never seen
	page := "<html><head>" + strings.Repeat("<meta name=\"x\" content=\"y\">", 200) +
		`<meta name="citation_title" content="Late">` + "</head></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	s := NewScraper(&Config{AllowPrivateHosts: true, MaxBodyBytes: 1024}, zap.NewNop())
	_, err := s.Scrape(context.Background(), server.URL)
	assert.ErrorIs(t, err, submission.ErrNoCitationMetadata)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, given, family string
	}{
		{"Byron, Ada", "Ada", "Byron"},
		{"Ada King Byron", "Ada King", "Byron"},
		{"Plato", "", "Plato"},
		{"  ", "", ""},
	}
	for _, tt := range tests {
		given, family := splitName(tt.in)
		assert.Equal(t, tt.given, given, tt.in)
		assert.Equal(t, tt.family, family, tt.in)
	}
}
