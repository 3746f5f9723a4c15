package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger adapts zap to GORM's logger interface. Statements carry the
// request, journal and trace fields of their context.
type GormLogger struct {
	logger        *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	logNotFound   bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold logs statements slower than threshold as warnings.
// Zero keeps the default; a negative value disables slow query logging.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		if threshold != 0 {
			l.slowThreshold = threshold
		}
	}
}

// WithRecordNotFound logs gorm.ErrRecordNotFound as an error.
// Repositories translate it into *_NOT_FOUND domain errors, so it is quiet by default.
func WithRecordNotFound(log bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.logNotFound = log
	}
}

// NewGormLogger creates a GORM logger writing to zapLogger under the "gorm" name
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		logger:        zapLogger.Named("gorm"),
		level:         level,
		slowThreshold: defaultSlowQuery,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.sugar(ctx).Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.sugar(ctx).Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.sugar(ctx).Errorf(msg, data...)
	}
}

func (l *GormLogger) sugar(ctx context.Context) *zap.SugaredLogger {
	return l.logger.With(Fields(ctx)...).Sugar()
}

// Trace logs one statement: errors at error level, slow statements at warn,
// everything else at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold
	failed := err != nil && (l.logNotFound || !errors.Is(err, gormlogger.ErrRecordNotFound))

	switch {
	case failed && l.level >= gormlogger.Error:
		l.logger.Error("SQL error", append(l.statementFields(ctx, elapsed, fc), zap.Error(err))...)
	case slow && l.level >= gormlogger.Warn:
		l.logger.Warn("Slow SQL", append(l.statementFields(ctx, elapsed, fc), zap.Duration("threshold", l.slowThreshold))...)
	case l.level >= gormlogger.Info:
		l.logger.Debug("SQL", l.statementFields(ctx, elapsed, fc)...)
	}
}

func (l *GormLogger) statementFields(ctx context.Context, elapsed time.Duration, fc func() (string, int64)) []zap.Field {
	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	return append(fields, Fields(ctx)...)
}

// MapGormLogLevel maps the application log level to a GORM level.
// Statements are only traced at debug.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
