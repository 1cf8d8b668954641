package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartToolSpan(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartToolSpan(context.Background(), "get_message")
	if GetTraceID(ctx) == "" {
		t.Error("expected trace ID in context")
	}
	if GetSpanID(ctx) == "" {
		t.Error("expected span ID in context")
	}
	SetSpanSuccess(span)
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	got := ended[0]
	if got.Name() != "tool.get_message" {
		t.Errorf("span name = %q, want tool.get_message", got.Name())
	}
	if got.SpanKind() != trace.SpanKindServer {
		t.Errorf("span kind = %v, want server", got.SpanKind())
	}
	if got.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status().Code)
	}
}

func TestStartRemoteSpan(t *testing.T) {
	recorder := installRecorder(t)

	parentCtx, parent := StartToolSpan(context.Background(), "mark_read")
	_, span := StartRemoteSpan(parentCtx, "markRead")
	SetSpanError(span, errors.New("HTTP error! status: 500"))
	span.End()
	parent.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(ended))
	}
	child := ended[0]
	if child.Name() != "gas.markRead" {
		t.Errorf("span name = %q, want gas.markRead", child.Name())
	}
	if child.SpanKind() != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", child.SpanKind())
	}
	if child.Parent().SpanID() != ended[1].SpanContext().SpanID() {
		t.Error("expected remote span to be a child of the tool span")
	}
	if child.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", child.Status().Code)
	}
	if len(child.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestSetSpanError_NilIsNoop(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "noop")
	SetSpanError(span, nil)
	span.End()

	if code := recorder.Ended()[0].Status().Code; code != codes.Unset {
		t.Errorf("status = %v, want Unset", code)
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace ID, got %q", id)
	}
	if id := GetSpanID(context.Background()); id != "" {
		t.Errorf("expected empty span ID, got %q", id)
	}
}
