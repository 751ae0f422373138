package health

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"xget-hq/edge/pkg/proxy/types"
)

// Handle serves the health endpoint. It runs every registered check and
// answers 200 when all pass or 503 when any fails. The body is JSON unless
// the client prefers text/plain, in which case it is the bare status word.
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "tls_certificate": {"status": "unhealthy", "message": "certificate expires in 3 days", "duration_ms": 0.2}
//	    },
//	    "timestamp": "2025-11-20T10:30:00Z"
//	}
//
// An error is returned only when the request context is already done.
func (c *Checker) Handle(ctx context.Context, req *types.Request) (*types.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("health check aborted: %w", err)
	}

	status := c.Check(ctx)
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}

	headers := types.NewHeaders(types.Header{Name: "Cache-Control", Value: "no-store"})

	if prefersText(req.Header.Get("Accept")) {
		return types.NewResponse(code,
			headers.With("Content-Type", "text/plain; charset=utf-8"),
			types.Text(status.Status+"\n")), nil
	}

	resp, err := types.JSON(code, status)
	if err != nil {
		return nil, err
	}
	resp.Header = headers.With("Content-Type", types.JSONContentType)
	return resp, nil
}

// prefersText reports whether the first acceptable media type in an Accept
// header is text/plain.
func prefersText(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case "text/plain":
			return true
		case "application/json", "*/*", "application/*":
			return false
		}
	}
	return false
}
