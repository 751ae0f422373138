package logging

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

// RedactedValue replaces sensitive header values in logs.
const RedactedValue = "[REDACTED]"

// sensitiveHeaders are never logged verbatim.
var sensitiveHeaders = []string{
	"Authorization",
	"Cookie",
	"Proxy-Authorization",
	"Set-Cookie",
	"X-Api-Key",
}

// Redactor masks sensitive header values before they are logged.
type Redactor struct {
	names []string
}

// NewRedactor creates a Redactor for the default sensitive headers plus any
// extra names.
func NewRedactor(extra ...string) *Redactor {
	names := make([]string, 0, len(sensitiveHeaders)+len(extra))
	for _, n := range append(slices.Clone(sensitiveHeaders), extra...) {
		names = append(names, http.CanonicalHeaderKey(n))
	}
	return &Redactor{names: names}
}

// IsSensitive reports whether the named header is masked.
func (r *Redactor) IsSensitive(name string) bool {
	return slices.Contains(r.names, http.CanonicalHeaderKey(name))
}

// HeaderAttr returns h as a log group with sensitive values masked.
func (r *Redactor) HeaderAttr(key string, h http.Header) slog.Attr {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)

	attrs := make([]any, 0, len(names))
	for _, name := range names {
		value := strings.Join(h[name], ", ")
		if r.IsSensitive(name) {
			value = RedactedValue
		}
		attrs = append(attrs, slog.String(name, value))
	}
	return slog.Group(key, attrs...)
}
