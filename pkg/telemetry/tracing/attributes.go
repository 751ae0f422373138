package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Standard keys follow the OpenTelemetry HTTP conventions;
// custom keys use the "xget." namespace.
const (
	AttrHTTPMethod     = "http.method"
	AttrHTTPStatusCode = "http.status_code"
	AttrHTTPScheme     = "http.scheme"
	AttrURLPath        = "url.path"
	AttrServerAddress  = "server.address"
	AttrUserAgent      = "user_agent.original"

	AttrRoute        = "xget.route"
	AttrBodyStrategy = "xget.body.strategy"
	AttrErrorKind    = "xget.error.kind"
	AttrUpstream     = "xget.upstream"
)

// RequestAttributes returns the span attributes describing r.
func RequestAttributes(r *http.Request) []attribute.KeyValue {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, r.Method),
		attribute.String(AttrHTTPScheme, scheme),
		attribute.String(AttrURLPath, r.URL.Path),
		attribute.String(AttrServerAddress, r.Host),
		attribute.String(AttrUserAgent, r.UserAgent()),
	}
}

// SetStatusCode records the HTTP status on span and marks 5xx as errors.
func SetStatusCode(span trace.Span, status int) {
	span.SetAttributes(attribute.Int(AttrHTTPStatusCode, status))
	if status >= 500 {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// SetDispatchAttributes records the route and chosen body strategy.
func SetDispatchAttributes(span trace.Span, route, strategy string) {
	span.SetAttributes(
		attribute.String(AttrRoute, route),
		attribute.String(AttrBodyStrategy, strategy),
	)
}
