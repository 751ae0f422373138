package proxy

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"xget-hq/edge/pkg/telemetry/logging"
)

func TestIsSecure(t *testing.T) {
	tests := []struct {
		name  string
		tls   bool
		proto string
		want  bool
	}{
		{"plain", false, "", false},
		{"tls connection", true, "", true},
		{"forwarded https", false, "https", true},
		{"forwarded HTTPS", false, "HTTPS", true},
		{"forwarded http", false, "http", false},
		{"first value wins", false, "http, https", false},
		{"first https in list", false, "https,http", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			}
			if tt.proto != "" {
				r.Header.Set(ForwardedProtoHeader, tt.proto)
			}
			if got := IsSecure(r); got != tt.want {
				t.Errorf("IsSecure() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	if got := ClientIP(r); got != "10.0.0.7" {
		t.Errorf("ClientIP() = %q, want 10.0.0.7", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.9" {
		t.Errorf("ClientIP() = %q, want 203.0.113.9", got)
	}
}

func TestExtractRequestMetadata(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "http://example.com/items", nil)
	r.Header.Set("User-Agent", "curl/8.0")
	r = r.WithContext(logging.WithRequestID(r.Context(), "req-1"))

	m := ExtractRequestMetadata(r)
	if m.RequestID != "req-1" {
		t.Errorf("RequestID = %q", m.RequestID)
	}
	if m.Method != http.MethodPost || m.Path != "/items" || m.Host != "example.com" {
		t.Errorf("unexpected metadata %+v", m)
	}
	if m.UserAgent != "curl/8.0" {
		t.Errorf("UserAgent = %q", m.UserAgent)
	}
	if len(m.Attrs()) == 0 {
		t.Error("expected log attributes")
	}
}
