package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestContextValues(t *testing.T) {
	ctx := WithAccountID(WithJournalID(WithRequestID(context.Background(), "req-1"), "j-1"), "a-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "j-1", GetJournalID(ctx))
	assert.Equal(t, "a-1", GetAccountID(ctx))
	assert.Empty(t, GetTraceID(ctx))
}

func TestGetTraceID_WithSpan(t *testing.T) {
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(spanContext(t)))
}

func TestContextLogger_EnrichesEntries(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := WithJournalID(WithRequestID(spanContext(t), "req-7"), "journal-3")
	ctx = WithContext(ctx, zap.New(core))

	L(ctx).With(zap.String("article_id", "art-1")).Info("published")

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, "journal-3", fields["journal_id"])
	assert.Equal(t, "art-1", fields["article_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.NotContains(t, fields, "account_id")
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := WithLogger(context.Background(), nil)

	assert.NotPanics(t, func() {
		cl.Warn("nothing")
		cl.With(zap.Int("n", 1)).Error("still nothing")
	})
	assert.NotNil(t, cl.Zap())
}
