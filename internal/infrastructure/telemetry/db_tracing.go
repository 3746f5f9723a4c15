package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/scholarly/backcontent/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables; never in production
	SlowQueryThresh time.Duration // default 200ms
	DBSystem        string        // default "postgresql"

	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

// NewDBTracingConfig converts the application telemetry settings
func NewDBTracingConfig(cfg config.TelemetryConfig) DBTracingConfig {
	return DBTracingConfig{
		Enabled:         cfg.Enabled && cfg.DBTraceEnabled,
		LogFullSQL:      cfg.DBLogFullSQL,
		SlowQueryThresh: cfg.DBSlowQueryThresh,
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

var tracedOperations = []string{"create", "query", "update", "delete", "row", "raw"}

// RegisterDBTracing installs otelgorm on db plus callbacks that tag each span
// with its table and rows affected, and flag queries slower than the threshold.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}

	// our after callbacks must run before otelgorm ends the span, and gorm
	// keeps registration order between callbacks with the same anchor
	for _, op := range tracedOperations {
		if err := registerCallback(db, op, true, "otel_timing:before_"+op, markQueryStart); err != nil {
			return err
		}
		if err := registerCallback(db, op, false, "otel_timing:after_"+op, annotateSpan(cfg.SlowQueryThresh)); err != nil {
			return err
		}
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

func registerCallback(db *gorm.DB, op string, before bool, name string, fn func(*gorm.DB)) error {
	cb := db.Callback()
	p := cb.Query()
	switch op {
	case "create":
		p = cb.Create()
	case "update":
		p = cb.Update()
	case "delete":
		p = cb.Delete()
	case "row":
		p = cb.Row()
	case "raw":
		p = cb.Raw()
	}
	anchor := "gorm:" + op
	if before {
		return p.Before(anchor).Register(name, fn)
	}
	return p.After(anchor).Register(name, fn)
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func annotateSpan(threshold time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		if db.Statement.RowsAffected >= 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		}
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}

		start, ok := ctx.Value(queryStartTimeKey).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed >= threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", threshold.Milliseconds()),
			))
		}
	}
}
