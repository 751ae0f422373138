// Package proxy converts between net/http and the uniform request and
// response models in package types.
//
// # Request Adapter
//
// FromHTTPRequest builds a types.Request from an inbound *http.Request. The
// URL is rebuilt against localhost and the local port, every header field is
// copied, and the body is buffered for every method except GET and HEAD.
//
// # Response Adapter
//
// WriteResponse writes a types.Response to an http.ResponseWriter. The body
// strategy depends on the Content-Type and body kind:
//
//   - Content-Type containing application/json: parsed and re-encoded
//   - binary body: sent byte-for-byte
//   - anything else: sent as text
//
// The body is prepared before the status line is written, so an encoding
// failure is still reported to the client as a 500.
//
// # Errors
//
// Failures are tagged with the stage that produced them (AdapterError,
// HandlerError, SerializationError). FailureResponse turns any of them into
// the JSON 500 body clients receive:
//
//	{"error":"Internal server error","message":"...","timestamp":"2024-01-01T00:00:00.000Z"}
package proxy
