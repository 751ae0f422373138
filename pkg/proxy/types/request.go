package types

import "net/http"

// Request is the uniform request handed to handlers. It carries no
// reference to the HTTP framework it was built from.
type Request struct {
	// Method is the HTTP method, e.g. "GET".
	Method string

	// URL is the absolute request URL: scheme, host "localhost", the local
	// port, then the original path and query.
	URL string

	// Header holds every inbound header field.
	Header Headers

	// Body is the buffered request body. It is nil for GET and HEAD, and
	// for those methods only.
	Body []byte
}

// NewRequest builds a Request. The body is discarded for methods that do
// not carry one, so HasBody is false exactly for GET and HEAD.
func NewRequest(method, url string, header Headers, body []byte) *Request {
	if !MethodAllowsBody(method) {
		body = nil
	} else if body == nil {
		body = []byte{}
	}
	return &Request{
		Method: method,
		URL:    url,
		Header: header,
		Body:   body,
	}
}

// HasBody reports whether the request carries a body.
func (r *Request) HasBody() bool {
	return r.Body != nil
}

// MethodAllowsBody reports whether a request with this method keeps its body.
func MethodAllowsBody(method string) bool {
	return method != http.MethodGet && method != http.MethodHead
}
