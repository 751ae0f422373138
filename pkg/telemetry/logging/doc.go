// Package logging builds the process logger on log/slog.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
// Records logged with a context automatically include:
//   - request_id, set by the request ID middleware through WithRequestID
//   - trace_id and span_id, when the context carries a valid span
//
// Header dumps go through a Redactor so that credentials never reach the
// log output.
package logging
