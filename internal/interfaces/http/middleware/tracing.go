package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths are not traced; probes and scrapes would drown real requests
	SkipPaths []string
}

// DefaultTracingConfig returns default tracing configuration
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "backcontent",
		Enabled:     true,
		SkipPaths:   []string{"/health", "/ready", "/metrics"},
	}
}

// TracingWithConfig wraps otelgin. Span names follow "METHOD /route/:param"
// and otelgin marks 5xx responses as failed spans.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	skip := cfg.SkipPaths
	return otelgin.Middleware(cfg.ServiceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			for _, p := range skip {
				if strings.HasPrefix(r.URL.Path, p) {
					return false
				}
			}
			return true
		}),
	)
}

// TracingAttributeInjector tags the request span with the request, journal
// and account IDs. It runs after the JWT middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			attrs := make([]attribute.KeyValue, 0, 3)
			for attr, key := range map[string]string{
				"request_id": RequestIDKey,
				"journal.id": JournalIDKey,
				"account.id": AccountIDKey,
			} {
				if v := c.GetString(key); v != "" {
					attrs = append(attrs, attribute.String(attr, v))
				}
			}
			span.SetAttributes(attrs...)
		}
		c.Next()
	}
}
