package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf, Component: ComponentLedger})

	logger.Info("balance adjusted", FieldSubject, "u1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != ComponentLedger || entry[FieldSubject] != "u1" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf}).With(FieldRequestID, "req_1")
	ctx := WithLogger(context.Background(), logger)

	FromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Errorf("request id missing from %q", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext must fall back to the default logger")
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf})
	sl := NewStructuredLogger(logger)
	r := httptest.NewRequest("GET", "/transactions", nil)

	for status, want := range map[int]string{200: "INFO", 404: "WARN", 500: "ERROR"} {
		buf.Reset()
		sl.LogHTTPEnd(context.Background(), r, status, 3, "10.0.0.1")
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if entry["level"] != want {
			t.Errorf("status %d logged at %v, want %s", status, entry["level"], want)
		}
		if entry[FieldComponent] != ComponentHTTP {
			t.Errorf("component = %v, want http", entry[FieldComponent])
		}
	}
}

func TestLogErrorFields(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))
	sl.LogError(context.Background(), "publish failed", errors.New("boom"), ComponentAMQP, OpPublish,
		NewFields().WithResource("u1", "transactions", "t1"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[FieldError] != "boom" || entry[FieldOperation] != OpPublish || entry[FieldResourceID] != "t1" || entry[FieldComponent] != ComponentAMQP {
		t.Errorf("unexpected entry: %v", entry)
	}
}
