package telemetry

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
)

// newRecordingProvider installs an in-memory exporter as the global
// tracer provider and restores the previous one on cleanup.
func newRecordingProvider(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
	})

	return recorder
}

func TestStartSpan(t *testing.T) {
	recorder := newRecordingProvider(t)

	ctx, span := StartSpan(context.Background(), "scoring.score_text")
	assert.NotNil(t, ctx)
	require.NotNil(t, span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "scoring.score_text", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
}

func TestStartSpan_WithOptions(t *testing.T) {
	recorder := newRecordingProvider(t)

	_, span := StartSpan(context.Background(), "llm.generate",
		WithSpanKind(trace.SpanKindClient),
		WithAttribute(SpanAttrModel, "gemini-1.5-flash"),
		WithAttribute(SpanAttrAttempts, 2),
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())

	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String(SpanAttrModel, "gemini-1.5-flash"))
	assert.Contains(t, attrs, attribute.Int(SpanAttrAttempts, 2))
}

func TestStartServiceSpan(t *testing.T) {
	recorder := newRecordingProvider(t)

	_, span := StartServiceSpan(context.Background(), "scoring", "score_upload")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "scoring.score_upload", spans[0].Name())
}

func TestSetAttributes(t *testing.T) {
	recorder := newRecordingProvider(t)

	_, span := StartSpan(context.Background(), "test")
	SetAttributes(span,
		SpanAttrAnalysisID, "abc-123",
		SpanAttrOverallScore, 7.5,
		SpanAttrPages, 3,
		"truncated", true,
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String(SpanAttrAnalysisID, "abc-123"))
	assert.Contains(t, attrs, attribute.Float64(SpanAttrOverallScore, 7.5))
	assert.Contains(t, attrs, attribute.Int(SpanAttrPages, 3))
	assert.Contains(t, attrs, attribute.Bool("truncated", true))
}

func TestSetAttributes_SkipsNonStringKeys(t *testing.T) {
	recorder := newRecordingProvider(t)

	_, span := StartSpan(context.Background(), "test")
	SetAttributes(span, 42, "value", "valid_key", "kept")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String("valid_key", "kept"))
	assert.Len(t, attrs, 1)
}

func TestSetAttributes_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "key", "value")
		SetAttribute(nil, "key", "value")
	})
}

func TestRecordError(t *testing.T) {
	recorder := newRecordingProvider(t)

	_, span := StartSpan(context.Background(), "test")
	RecordError(span, errors.New("model returned malformed JSON"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "model returned malformed JSON", spans[0].Status().Description)

	events := spans[0].Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "exception", events[0].Name)
}

func TestRecordError_NilCases(t *testing.T) {
	recorder := newRecordingProvider(t)

	assert.NotPanics(t, func() {
		RecordError(nil, errors.New("err"))
	})

	_, span := StartSpan(context.Background(), "test")
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestSetOK(t *testing.T) {
	recorder := newRecordingProvider(t)

	_, span := StartSpan(context.Background(), "test")
	SetOK(span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestAddEvent(t *testing.T) {
	recorder := newRecordingProvider(t)

	_, span := StartSpan(context.Background(), "test")
	AddEvent(span, "cache_hit", SpanAttrDigest, "deadbeef")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "cache_hit", events[0].Name)
	assert.Contains(t, events[0].Attributes, attribute.String(SpanAttrDigest, "deadbeef"))
}

func TestGetTraceIDAndSpanID(t *testing.T) {
	newRecordingProvider(t)

	t.Run("returns IDs inside a span", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "test")
		defer span.End()

		traceID := GetTraceID(ctx)
		spanID := GetSpanID(ctx)

		assert.Len(t, traceID, 32)
		assert.Len(t, spanID, 16)
	})

	t.Run("returns empty outside a span", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
		assert.Empty(t, GetSpanID(context.Background()))
	})
}

func TestSpanFromContextRoundTrip(t *testing.T) {
	newRecordingProvider(t)

	ctx, span := StartSpan(context.Background(), "test")
	defer span.End()

	got := SpanFromContext(ctx)
	assert.Equal(t, span.SpanContext().SpanID(), got.SpanContext().SpanID())

	ctx2 := ContextWithSpan(context.Background(), span)
	assert.Equal(t, span.SpanContext().SpanID(), SpanFromContext(ctx2).SpanContext().SpanID())
}

func TestToAttribute(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected attribute.KeyValue
	}{
		{"string", "v", attribute.String("k", "v")},
		{"int", 42, attribute.Int("k", 42)},
		{"int64", int64(42), attribute.Int64("k", 42)},
		{"float64", 7.5, attribute.Float64("k", 7.5)},
		{"bool", true, attribute.Bool("k", true)},
		{"string slice", []string{"a", "b"}, attribute.StringSlice("k", []string{"a", "b"})},
		{"fallback formats value", struct{ X int }{1}, attribute.String("k", "{1}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, toAttribute("k", tt.value))
		})
	}
}
