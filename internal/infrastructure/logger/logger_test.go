package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{
			name:   "default config",
			config: DefaultConfig(),
		},
		{
			name:   "production config",
			config: ProductionConfig(),
		},
		{
			name: "json to stderr",
			config: &Config{
				Level:  "debug",
				Format: "json",
				Output: "stderr",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			require.NoError(t, err)
			require.NotNil(t, l)
		})
	}
}

func TestNewForEnvironment(t *testing.T) {
	l, err := NewForEnvironment("production")
	require.NoError(t, err)
	assert.NotNil(t, l)

	l, err = NewForEnvironment("development")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestContext(t *testing.T) {
	base := zap.NewNop()

	ctx := WithContext(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))

	// Missing logger falls back to a no-op
	assert.NotNil(t, FromContext(context.Background()))
}

func TestWithRequestID(t *testing.T) {
	base := zap.NewNop()

	ctx, enriched := WithRequestID(context.Background(), base, "req-123")
	assert.NotNil(t, enriched)
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Same(t, enriched, FromContext(ctx))

	assert.Empty(t, GetRequestID(context.Background()))
}

func TestWithTraceContext_NoSpan(t *testing.T) {
	base := zap.NewNop()

	// Without a span the logger passes through unchanged
	assert.Same(t, base, WithTraceContext(context.Background(), base))
}
