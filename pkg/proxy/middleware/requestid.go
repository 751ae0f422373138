package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"xget-hq/edge/pkg/proxy"
	"xget-hq/edge/pkg/telemetry/logging"
)

// maxRequestIDLength bounds client-supplied request IDs.
const maxRequestIDLength = 128

// RequestIDMiddleware assigns every request an ID. A client-provided
// X-Request-ID is reused when it is printable and short enough; otherwise a
// UUID v4 is generated.
//
// The request ID is:
//   - Added to the request context (see logging.GetRequestID)
//   - Included in the X-Request-ID response header
//
// Example usage:
//
//	handler = RequestIDMiddleware(handler)
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(proxy.RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(proxy.RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	return !strings.ContainsFunc(id, func(r rune) bool {
		return r < 0x21 || r > 0x7e
	})
}
