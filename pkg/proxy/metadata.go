package proxy

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"xget-hq/edge/pkg/telemetry/logging"
)

// RequestMetadata contains extracted metadata from an HTTP request.
// It is used for access logging and tracing.
type RequestMetadata struct {
	// RequestID is the unique identifier for the request.
	RequestID string

	// Method is the HTTP method (GET, POST, etc.).
	Method string

	// Path is the HTTP request path.
	Path string

	// Host is the Host header as received.
	Host string

	// Proto is the protocol version, e.g. "HTTP/1.1".
	Proto string

	// UserAgent is the client's user agent string.
	UserAgent string

	// RemoteAddr is the peer address of the connection.
	RemoteAddr string

	// ClientIP is the first X-Forwarded-For entry, or the peer IP.
	ClientIP string

	// Secure reports whether the request is considered secure.
	Secure bool

	// Timestamp is when the metadata was extracted.
	Timestamp time.Time
}

// ExtractRequestMetadata extracts metadata from an HTTP request.
func ExtractRequestMetadata(r *http.Request) *RequestMetadata {
	return &RequestMetadata{
		RequestID:  ExtractRequestID(r),
		Method:     r.Method,
		Path:       r.URL.Path,
		Host:       r.Host,
		Proto:      r.Proto,
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
		ClientIP:   ClientIP(r),
		Secure:     IsSecure(r),
		Timestamp:  time.Now(),
	}
}

// Attrs returns the metadata as structured log attributes.
func (m *RequestMetadata) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("method", m.Method),
		slog.String("path", m.Path),
		slog.String("host", m.Host),
		slog.String("proto", m.Proto),
		slog.String("remote_addr", m.RemoteAddr),
		slog.String("client_ip", m.ClientIP),
		slog.String("user_agent", m.UserAgent),
		slog.Bool("secure", m.Secure),
	}
}

// ExtractRequestID returns the request ID stored in the request context,
// falling back to the X-Request-ID header.
func ExtractRequestID(r *http.Request) string {
	if id := logging.GetRequestID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get(RequestIDHeader)
}

// ClientIP returns the originating client address. The first
// X-Forwarded-For entry wins over the connection's peer address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// IsSecure reports whether a request reached the service over TLS, either
// directly or through a terminating proxy that set X-Forwarded-Proto to
// https. Only the first X-Forwarded-Proto value is considered.
func IsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto := r.Header.Get(ForwardedProtoHeader)
	first, _, _ := strings.Cut(proto, ",")
	return strings.EqualFold(strings.TrimSpace(first), "https")
}
