// Package metrics exposes back content activity to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/infrastructure/config"
)

// galleyBuckets spans 16KB to 256MB
var galleyBuckets = prometheus.ExponentialBuckets(16*1024, 4, 8)

// Recorder owns a private registry with the service's collectors.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Recorder struct {
	registry *prometheus.Registry

	articlesCreated   *prometheus.CounterVec
	articlesPublished prometheus.Counter
	importFailures    *prometheus.CounterVec
	galleysUploaded   *prometheus.CounterVec
	galleyBytes       *prometheus.HistogramVec
	domainEvents      *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewRecorder creates a Recorder. The Go runtime and process collectors are
// registered alongside the service metrics.
func NewRecorder(cfg config.MetricsConfig) *Recorder {
	ns := cfg.Namespace
	if ns == "" {
		ns = "backcontent"
	}

	// a private registry avoids clashing with anything on the default one
	registry := prometheus.NewRegistry()
	r := &Recorder{
		registry: registry,
		articlesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "articles_created_total",
			Help:      "Back content articles created, by source (blank, doi, url, jats).",
		}, []string{"source"}),
		articlesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "articles_published_total",
			Help:      "Articles that passed the publication gate.",
		}),
		importFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "import_failures_total",
			Help:      "Failed imports, by source and error code.",
		}, []string{"source", "code"}),
		galleysUploaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "galleys_uploaded_total",
			Help:      "Galley files stored, by label.",
		}, []string{"label"}),
		galleyBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "galley_size_bytes",
			Help:      "Size of uploaded galley files.",
			Buckets:   galleyBuckets,
		}, []string{"label"}),
		domainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "domain_events_total",
			Help:      "Domain events seen on the event bus, by type.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.articlesCreated,
		r.articlesPublished,
		r.importFailures,
		r.galleysUploaded,
		r.galleyBytes,
		r.domainEvents,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry:          r.registry,
		EnableOpenMetrics: true,
	})
}

func (r *Recorder) ArticleCreated(source string) {
	r.articlesCreated.WithLabelValues(source).Inc()
}

func (r *Recorder) ArticlePublished() {
	r.articlesPublished.Inc()
}

func (r *Recorder) ImportFailed(source, code string) {
	r.importFailures.WithLabelValues(source, code).Inc()
}

func (r *Recorder) GalleyUploaded(label string, size int64) {
	r.galleysUploaded.WithLabelValues(label).Inc()
	r.galleyBytes.WithLabelValues(label).Observe(float64(size))
}

// GinMiddleware records request counts and latency. Unmatched routes are
// grouped under one label to keep cardinality bounded.
func (r *Recorder) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		r.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// EventCounter counts domain events by type
type EventCounter struct {
	recorder   *Recorder
	eventTypes []string
}

// NewEventCounter counts the given event types, or every event when none are given
func (r *Recorder) NewEventCounter(eventTypes ...string) *EventCounter {
	return &EventCounter{recorder: r, eventTypes: eventTypes}
}

func (h *EventCounter) Handle(_ context.Context, e shared.DomainEvent) error {
	h.recorder.domainEvents.WithLabelValues(e.EventType()).Inc()
	return nil
}

func (h *EventCounter) EventTypes() []string {
	return h.eventTypes
}

var (
	_ backcontent.Metrics = (*Recorder)(nil)
	_ shared.EventHandler = (*EventCounter)(nil)
)
