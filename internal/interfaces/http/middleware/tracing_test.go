package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := gin.New()
	r.Use(RequestID(), TracingWithConfig(DefaultTracingConfig()))
	r.Use(func(c *gin.Context) {
		c.Set(JournalIDKey, "journal-1")
		c.Next()
	})
	r.Use(TracingAttributeInjector())
	r.GET("/api/v1/articles/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/articles/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1, "health checks are not traced")
	assert.Equal(t, "GET /api/v1/articles/:id", spans[0].Name())

	attrs := map[attribute.Key]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "journal-1", attrs["journal.id"])
	assert.NotEmpty(t, attrs["request_id"])
}

func TestTracing_Disabled(t *testing.T) {
	cfg := DefaultTracingConfig()
	cfg.Enabled = false
	w := httptest.NewRecorder()
	okRouter(TracingWithConfig(cfg)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
