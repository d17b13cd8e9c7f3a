package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/erp/webhook-bridge/internal/infrastructure/telemetry"
)

// setupTestTracer sets up a test tracer with an in-memory span recorder.
// Returns the span recorder for assertions and a cleanup function.
func setupTestTracer(t *testing.T) (*tracetest.SpanRecorder, func()) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sr),
	)

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		_ = tp.Shutdown(context.Background())
	}

	return sr, cleanup
}

func TestStartSpan(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	require.NotNil(t, span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	assert.Equal(t, "test.operation", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
}

func TestStartSpan_WithOptions(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "test.operation",
		telemetry.WithAttribute("partner_id", int64(7)),
		telemetry.WithAttribute("strategy", "origin"),
		telemetry.WithSpanKind(trace.SpanKindClient),
	)
	require.NotNil(t, span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("partner_id", 7))
	assert.Contains(t, spans[0].Attributes(), attribute.String("strategy", "origin"))
}

func TestSetAttribute(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.SetAttribute(span, "uid", int64(2))
	telemetry.SetAttribute(span, "cached", true)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("uid", 2))
	assert.Contains(t, spans[0].Attributes(), attribute.Bool("cached", true))
}

func TestRecordError(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.RecordError(span, errors.New("remote read failed"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "remote read failed", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestRecordError_NilSafe(t *testing.T) {
	_, cleanup := setupTestTracer(t)
	defer cleanup()

	// Neither a nil span nor a nil error should panic
	telemetry.RecordError(nil, errors.New("boom"))

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.RecordError(span, nil)
	span.End()
}

func TestGetTraceID(t *testing.T) {
	_, cleanup := setupTestTracer(t)
	defer cleanup()

	assert.Empty(t, telemetry.GetTraceID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "test.operation")
	defer span.End()

	traceID := telemetry.GetTraceID(ctx)
	assert.Len(t, traceID, 32)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	spanID := telemetry.GetSpanID(ctx)
	assert.Len(t, spanID, 16)
}
