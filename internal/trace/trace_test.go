package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledTracingIsNoop(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "false")
	require.NoError(t, Init())
	assert.False(t, Enabled())

	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())

	_, _, ok := GetTraceFields(ctx)
	assert.False(t, ok)
}

func TestEnabledTracingStampsSpans(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "true")
	require.NoError(t, Init())
	t.Cleanup(func() {
		_ = Shutdown(context.Background())
		enabled = false
	})
	assert.True(t, Enabled())

	ctx, span := StartSpan(context.Background(), "request")
	defer span.End()

	traceID, spanID, ok := GetTraceFields(ctx)
	require.True(t, ok)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
	assert.Len(t, spanID, 16)
}
