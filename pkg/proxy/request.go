package proxy

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"xget-hq/edge/pkg/proxy/types"
)

const (
	// DefaultMaxBodyBytes caps the request body when RequestOptions leaves
	// MaxBodyBytes at zero.
	DefaultMaxBodyBytes = 50 << 20

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"

	// ForwardedProtoHeader carries the client-facing scheme set by a TLS
	// terminating load balancer.
	ForwardedProtoHeader = "X-Forwarded-Proto"
)

// RequestOptions configures FromHTTPRequest.
type RequestOptions struct {
	// Port is used in the request URL when the local port of the connection
	// cannot be determined.
	Port int

	// MaxBodyBytes caps the buffered body. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// FromHTTPRequest converts an inbound HTTP request into a uniform Request.
//
// The URL is rebuilt as scheme://localhost:<port><path-and-query>, where the
// scheme is https when the connection is TLS and the port is the local port
// the request arrived on. Every header field is copied, including Host. The
// body is buffered for every method except GET and HEAD.
//
// Any failure is returned as an adapter error.
func FromHTTPRequest(r *http.Request, opts RequestOptions) (*types.Request, error) {
	if r == nil || r.URL == nil {
		return nil, AdapterError(types.MessageRequestFailed, errors.New("nil request"))
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://localhost:%d%s", scheme, localPort(r, opts.Port), r.URL.RequestURI())

	hdr := r.Header.Clone()
	if hdr == nil {
		hdr = http.Header{}
	}
	if r.Host != "" && hdr.Get("Host") == "" {
		hdr.Set("Host", r.Host)
	}

	var body []byte
	if types.MethodAllowsBody(r.Method) {
		var err error
		body, err = readBody(r.Body, opts.MaxBodyBytes)
		if err != nil {
			return nil, err
		}
	}

	return types.NewRequest(r.Method, url, types.HeadersFromHTTP(hdr), body), nil
}

func readBody(rc io.ReadCloser, limit int64) ([]byte, error) {
	if rc == nil || rc == http.NoBody {
		return []byte{}, nil
	}
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, AdapterError(types.MessageRequestFailed, fmt.Errorf("read request body: %w", err))
	}
	if int64(len(data)) > limit {
		return nil, AdapterError(types.MessageRequestFailed, fmt.Errorf("request body exceeds %d bytes", limit))
	}
	return data, nil
}

// localPort returns the port of the local address the request arrived on,
// or fallback when the server did not record it.
func localPort(r *http.Request, fallback int) int {
	addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr)
	if !ok {
		return fallback
	}
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.Port != 0 {
		return tcp.Port
	}
	return fallback
}
