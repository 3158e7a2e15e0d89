package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid json log line %q: %v", buf.String(), err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json", Output: "stdout"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "huddle").WithComponent("audio").Info("hello")

	m := decodeLine(t, &buf)
	if m[FieldComponent] != "audio" {
		t.Errorf("expected component=audio, got %v", m[FieldComponent])
	}
	if m["service"] != "huddle" {
		t.Errorf("expected service=huddle, got %v", m["service"])
	}
}

func TestMeetingFields(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "huddle").Info("chunk appended", MeetingFields("ABC123", "bytes", 42))

	m := decodeLine(t, &buf)
	if m[FieldMeetingID] != "ABC123" {
		t.Errorf("expected meeting_id, got %v", m[FieldMeetingID])
	}
	if m["bytes"] != float64(42) {
		t.Errorf("expected bytes=42, got %v", m["bytes"])
	}
}

func TestWithContext_RequestAndTrace(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx = trace.ContextWithSpanContext(ctx, sc)

	NewWithWriter(&buf, "huddle").WithContext(ctx).Info("traced")

	m := decodeLine(t, &buf)
	if m[FieldRequestID] != "req-1" {
		t.Errorf("expected request_id, got %v", m[FieldRequestID])
	}
	if m[FieldTraceID] != sc.TraceID().String() {
		t.Errorf("expected trace_id, got %v", m[FieldTraceID])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "huddle").WithError(errors.New("boom")).Error("failed")

	m := decodeLine(t, &buf)
	if m["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", m["error"])
	}
}

func TestFields_OddArgs(t *testing.T) {
	f := Fields("a", 1, "dangling")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("unexpected fields %v", f)
	}
}

func TestDurationFields(t *testing.T) {
	f := DurationFields("transcode", 1500*time.Millisecond)
	if f[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", f[FieldDuration])
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestRegistry_Get(t *testing.T) {
	l := NewDefault("huddle")
	Register("custom", l)
	if Get("custom") != l {
		t.Error("expected registered logger")
	}
	if Get("unregistered") == nil {
		t.Error("expected fallback logger")
	}
	found := false
	for _, n := range Names() {
		if n == "custom" {
			found = true
		}
	}
	if !found {
		t.Errorf("Names() = %v, want custom listed", Names())
	}
}
