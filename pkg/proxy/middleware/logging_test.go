package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"xget-hq/edge/pkg/telemetry/logging"
)

func newBufferLogger(t *testing.T, level string) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: level, Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New() error = %v", err)
	}
	return logger, &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	return rec
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"success logs info", http.StatusOK, "INFO"},
		{"client error logs warn", http.StatusNotFound, "WARN"},
		{"server error logs error", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(t, "info")
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if GetStartTime(r.Context()).IsZero() {
					t.Error("start time not set")
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("hello"))
			})

			wrapped := RequestIDMiddleware(LoggingMiddleware(logger)(handler))
			req := httptest.NewRequest(http.MethodGet, "/path", nil)
			req.Header.Set("X-Request-ID", "req-1")
			wrapped.ServeHTTP(httptest.NewRecorder(), req)

			rec := lastRecord(t, buf)
			if rec["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", rec["level"], tt.wantLevel)
			}
			if rec["msg"] != "request completed" {
				t.Errorf("msg = %v", rec["msg"])
			}
			if rec["status"] != float64(tt.status) {
				t.Errorf("status = %v", rec["status"])
			}
			if rec["bytes"] != float64(5) {
				t.Errorf("bytes = %v", rec["bytes"])
			}
			if rec["path"] != "/path" {
				t.Errorf("path = %v", rec["path"])
			}
			if rec["request_id"] != "req-1" {
				t.Errorf("request_id = %v", rec["request_id"])
			}
			if _, ok := rec["latency_ms"]; !ok {
				t.Error("latency_ms missing")
			}
		})
	}
}

func TestLoggingMiddleware_DebugRedactsHeaders(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/path", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	LoggingMiddleware(logger)(handler).ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, "request started") {
		t.Error("debug start record missing")
	}
	if strings.Contains(out, "secret-token") {
		t.Error("authorization header leaked into logs")
	}
}
