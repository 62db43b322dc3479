package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error", "INFO"} {
		log, err := New(level, "development")
		require.NoError(t, err, "level %q", level)
		assert.NotNil(t, log)
	}

	log, err := New("info", "production")
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = New("verbose", "development")
	assert.Error(t, err)
}

func TestTraceID(t *testing.T) {
	assert.Equal(t, "no-trace", TraceID(context.Background()))
	assert.Equal(t, "no-trace", TraceID(WithTraceID(context.Background(), "")))

	ctx := WithTraceID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", TraceID(ctx))
	assert.Equal(t, "abc-123", Trace(ctx).String)
}
