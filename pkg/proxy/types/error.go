package types

// Error bodies returned to clients when a request cannot be served.
const (
	// ErrorInternal is the error field of a failed dispatch.
	ErrorInternal = "Internal server error"

	// ErrorHealthCheckFailed is the error field of a failed health check.
	ErrorHealthCheckFailed = "Health check failed"

	// MessageRequestFailed is the message returned when the inbound request
	// could not be adapted.
	MessageRequestFailed = "Failed to process request"
)

// ErrorBody is the JSON body returned when a handler fails.
type ErrorBody struct {
	// Error is a fixed summary, always ErrorInternal.
	Error string `json:"error"`

	// Message describes the failure.
	Message string `json:"message"`

	// Timestamp is the failure time in ISO-8601 UTC with millisecond precision.
	Timestamp string `json:"timestamp"`
}

// HealthErrorBody is the JSON body returned when the health handler fails.
type HealthErrorBody struct {
	Error string `json:"error"`
}

// StatusBody is a short JSON body used for client-side errors such as a
// missing Host header or an unconfigured upstream.
type StatusBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
