package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"xget-hq/edge/pkg/proxy/types"
)

// ErrorKind tags the stage of request processing that failed.
type ErrorKind int

const (
	// KindAdapter marks a failure to build the uniform request.
	KindAdapter ErrorKind = iota + 1
	// KindHandler marks a failure returned or raised by a handler.
	KindHandler
	// KindSerialization marks a failure to encode the response body.
	KindSerialization
)

// String returns the label used in logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindAdapter:
		return "adapter_error"
	case KindHandler:
		return "handler_error"
	case KindSerialization:
		return "serialization_error"
	default:
		return "unknown_error"
	}
}

// Error is a tagged dispatch failure. Every error that reaches the dispatch
// boundary is converted to an *Error before it is reported.
type Error struct {
	// Kind is the failing stage.
	Kind ErrorKind

	// Message is the human-readable failure description sent to clients.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// AdapterError reports that the inbound request could not be converted.
func AdapterError(message string, cause error) *Error {
	return &Error{Kind: KindAdapter, Message: message, Cause: cause}
}

// HandlerError wraps a failure returned by a handler. The handler's own
// message becomes the client-visible message. An error that is already
// tagged is returned unchanged.
func HandlerError(cause error) *Error {
	var tagged *Error
	if errors.As(cause, &tagged) {
		return tagged
	}
	msg := "handler failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: KindHandler, Message: msg, Cause: cause}
}

// SerializationError reports that a response body could not be encoded.
func SerializationError(message string, cause error) *Error {
	return &Error{Kind: KindSerialization, Message: message, Cause: cause}
}

// KindOf returns the tag of err. Untagged errors count as handler errors.
func KindOf(err error) ErrorKind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return KindHandler
}

// TimestampLayout formats failure timestamps in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FailureResponse builds the 500 response reported for err at time now.
// Adapter failures get a generic message. Handler and serialization
// failures carry their own message.
func FailureResponse(err error, now time.Time) *types.Response {
	msg := types.MessageRequestFailed
	var tagged *Error
	if errors.As(err, &tagged) {
		if tagged.Kind != KindAdapter {
			msg = tagged.Message
		}
	} else if err != nil {
		msg = err.Error()
	}

	return jsonResponse(http.StatusInternalServerError, types.ErrorBody{
		Error:     types.ErrorInternal,
		Message:   msg,
		Timestamp: FormatTimestamp(now),
	})
}

// HealthFailureResponse builds the 500 response reported when the health
// handler fails. The body never carries failure details.
func HealthFailureResponse() *types.Response {
	return jsonResponse(http.StatusInternalServerError, types.HealthErrorBody{
		Error: types.ErrorHealthCheckFailed,
	})
}

// StatusResponse builds a short JSON error body for the given status.
func StatusResponse(status int, message string) *types.Response {
	return jsonResponse(status, types.StatusBody{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// jsonResponse encodes bodies built only from strings, which cannot fail.
func jsonResponse(status int, v any) *types.Response {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`{"error":"Internal server error"}`)
	}
	return types.NewResponse(status,
		types.NewHeaders(types.Header{Name: "Content-Type", Value: types.JSONContentType}),
		types.Text(string(data)))
}
