package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"xget-hq/edge/pkg/proxy"
	"xget-hq/edge/pkg/proxy/types"
	"xget-hq/edge/pkg/telemetry/tracing"
)

// Hop-by-hop headers that must not be forwarded.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"TE",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// connectionHeaders returns the hop-by-hop headers of h: the fixed set plus
// every field named by a Connection header.
func connectionHeaders(h types.Headers) []string {
	names := append([]string(nil), hopByHopHeaders...)
	for _, v := range h.Values("Connection") {
		for _, tok := range strings.Split(v, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				names = append(names, tok)
			}
		}
	}
	return names
}

// ForwarderConfig configures a Forwarder.
type ForwarderConfig struct {
	// Upstream is the base URL requests are forwarded to. Empty disables
	// forwarding and every request is answered with 404.
	Upstream string

	// Timeout bounds one upstream exchange including reading the body.
	Timeout time.Duration

	// Transport overrides the HTTP transport. Nil uses a clone of
	// http.DefaultTransport.
	Transport http.RoundTripper
}

// Forwarder is the routing handler. It replays each uniform request against
// a fixed upstream and returns the upstream's response as a binary stream.
type Forwarder struct {
	upstream *url.URL
	client   *http.Client
}

// NewForwarder creates a Forwarder for cfg.
func NewForwarder(cfg ForwarderConfig) (*Forwarder, error) {
	f := &Forwarder{}

	if cfg.Upstream != "" {
		u, err := url.Parse(cfg.Upstream)
		if err != nil {
			return nil, fmt.Errorf("invalid upstream %q: %w", cfg.Upstream, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("invalid upstream %q: scheme must be http or https", cfg.Upstream)
		}
		f.upstream = u
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	f.client = &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
		// Redirects are the client's business.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f, nil
}

// Handle implements Handler.
func (f *Forwarder) Handle(ctx context.Context, req *types.Request) (*types.Response, error) {
	if f.upstream == nil {
		return proxy.StatusResponse(http.StatusNotFound, "no upstream configured"), nil
	}

	target, err := f.targetURL(req.URL)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.HasBody() {
		body = bytes.NewReader(req.Body)
	}
	out, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	// Accept-Encoding is left to the transport so it can decode gzip itself;
	// the body is re-framed and possibly re-encoded on the way back.
	outHeader := req.Header.Without(connectionHeaders(req.Header)...).
		Without("Host", "Content-Length", "Accept-Encoding")
	for _, h := range outHeader.Fields() {
		out.Header.Add(h.Name, h.Value)
	}
	if host := req.Header.Get("Host"); host != "" {
		out.Header.Set("X-Forwarded-Host", host)
	}
	tracing.Inject(ctx, out.Header)

	resp, err := f.client.Do(out)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}

	in := types.HeadersFromHTTP(resp.Header)
	headers := in.Without(connectionHeaders(in)...)
	if resp.Uncompressed {
		headers = headers.Without("Content-Encoding", "Content-Length")
	}
	return types.NewResponse(resp.StatusCode, headers, types.Binary(resp.Body)), nil
}

// targetURL joins the request's path and query onto the upstream base.
func (f *Forwarder) targetURL(raw string) (*url.URL, error) {
	in, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse request URL: %w", err)
	}

	target := *f.upstream
	target.Path = joinPath(f.upstream.Path, in.Path)
	target.RawPath = ""
	if f.upstream.RawPath != "" || in.RawPath != "" {
		target.RawPath = joinPath(f.upstream.EscapedPath(), in.EscapedPath())
	}
	target.RawQuery = in.RawQuery
	return &target, nil
}

func joinPath(base, path string) string {
	switch {
	case base == "" || base == "/":
		return path
	case path == "" || path == "/":
		return strings.TrimSuffix(base, "/") + "/"
	default:
		return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
	}
}
