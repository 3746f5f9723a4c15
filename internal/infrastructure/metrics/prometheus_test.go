package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder(config.MetricsConfig{Namespace: "test"})

	r.ArticleCreated("doi")
	r.ArticleCreated("doi")
	r.ArticleCreated("blank")
	r.ArticlePublished()
	r.ImportFailed("url", "NO_CITATION_METADATA")
	r.GalleyUploaded("PDF", 2048)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.articlesCreated.WithLabelValues("doi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.articlesCreated.WithLabelValues("blank")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.articlesPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.importFailures.WithLabelValues("url", "NO_CITATION_METADATA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.galleysUploaded.WithLabelValues("PDF")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.galleyBytes))
}

func TestRecorder_EventCounter(t *testing.T) {
	r := NewRecorder(config.MetricsConfig{})
	h := r.NewEventCounter(submission.EventTypeArticlePublished)
	assert.Equal(t, []string{submission.EventTypeArticlePublished}, h.EventTypes())

	base := shared.NewBaseDomainEvent(submission.EventTypeArticlePublished, "Article", uuid.New(), uuid.New())
	require.NoError(t, h.Handle(context.Background(), &base))
	require.NoError(t, h.Handle(context.Background(), &base))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.domainEvents.WithLabelValues(submission.EventTypeArticlePublished)))
}

func TestRecorder_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRecorder(config.MetricsConfig{Namespace: "bc"})

	engine := gin.New()
	engine.Use(r.GinMiddleware())
	engine.GET("/api/v1/articles/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	engine.GET("/metrics", gin.WrapH(r.Handler()))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/articles/42", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET", "/api/v1/articles/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "bc_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}
