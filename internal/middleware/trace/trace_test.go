package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plenio/internal/log"
)

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if !strings.HasPrefix(a, "req_") || len(a) != len("req_")+16 {
		t.Errorf("unexpected request id %q", a)
	}
	if a == b {
		t.Error("request ids should be unique")
	}
}

func TestMiddlewarePropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Format: "json", Output: &buf})

	var seen string
	handler := NewMiddleware(logger, func(*http.Request) string { return "198.51.100.1" }).
		Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
			log.FromContext(r.Context()).Info("inside handler")
			w.WriteHeader(http.StatusNotFound)
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/profile", nil))

	if seen == "" {
		t.Fatal("request id missing from context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("%s = %q, want %q", RequestIDHeader, got, seen)
	}

	out := buf.String()
	if n := strings.Count(out, seen); n != 3 {
		t.Errorf("request id logged %d times, want 3:\n%s", n, out)
	}
	if !strings.Contains(out, `"status_code":404`) || !strings.Contains(out, `"level":"WARN"`) {
		t.Errorf("completion line should record 404 at warn:\n%s", out)
	}
	if !strings.Contains(out, "198.51.100.1") {
		t.Error("client ip not logged")
	}
}

func TestMetrics(t *testing.T) {
	logger := log.New(log.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
	m := NewMiddleware(logger, nil)
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	}
	if got := m.GetMetrics().TotalRequests; got != 3 {
		t.Errorf("TotalRequests = %d, want 3", got)
	}
	if GetRequestID(httptest.NewRequest("GET", "/", nil).Context()) != "" {
		t.Error("empty context should have no request id")
	}
}
