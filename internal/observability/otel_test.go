package observability

import (
	"context"
	"testing"
)

func TestOtelHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "api-key=abc, bad ,x=")
	h := otelHeaders()
	if len(h) != 1 || h["api-key"] != "abc" {
		t.Fatalf("headers=%v", h)
	}
}

func TestSampleRatioClamped(t *testing.T) {
	t.Setenv("OTEL_SAMPLER_RATIO", "4")
	if got := sampleRatio(); got != 1 {
		t.Fatalf("ratio=%v", got)
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "-1")
	if got := sampleRatio(); got != 0 {
		t.Fatalf("ratio=%v", got)
	}
}

func TestStartSpanWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "stage", "task_id", "t1")
	defer span.End()
	if ctx == nil {
		t.Fatalf("nil ctx")
	}
}
