package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func captureLogger(buf *bytes.Buffer) *slog.Logger {
	base := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(&traceHandler{baseHandler: base})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	return entry
}

func TestTraceHandlerAddsTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(NewNoopTraceExporter()),
	)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	captureLogger(&buf).InfoContext(ctx, "order created", "order_id", "o1")

	entry := decodeLine(t, &buf)
	if entry["trace_id"] == nil || entry["trace_id"] == "" {
		t.Error("expected trace_id in log entry")
	}
	if entry["span_id"] == nil || entry["span_id"] == "" {
		t.Error("expected span_id in log entry")
	}
	if entry["order_id"] != "o1" {
		t.Errorf("expected order_id attribute, got %v", entry["order_id"])
	}
}

func TestTraceHandlerWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	captureLogger(&buf).Info("plain message")

	entry := decodeLine(t, &buf)
	if _, ok := entry["trace_id"]; ok {
		t.Error("did not expect trace_id without an active span")
	}
	if entry["msg"] != "plain message" {
		t.Errorf("unexpected message %v", entry["msg"])
	}
}

func TestTraceHandlerWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogger(&buf).With("service", "storefront").WithGroup("order")
	logger.Info("created", "id", "o1")

	entry := decodeLine(t, &buf)
	if entry["service"] != "storefront" {
		t.Errorf("expected service attribute, got %v", entry["service"])
	}
	group, ok := entry["order"].(map[string]any)
	if !ok {
		t.Fatalf("expected order group, got %v", entry["order"])
	}
	if group["id"] != "o1" {
		t.Errorf("expected grouped id, got %v", group["id"])
	}
}
