package handlers

import (
	"context"

	"xget-hq/edge/pkg/proxy/types"
)

// Handler serves a uniform request. A returned error is reported to the
// client as a 500 by the Dispatcher; the handler never writes to the wire.
type Handler interface {
	Handle(ctx context.Context, req *types.Request) (*types.Response, error)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, req *types.Request) (*types.Response, error)

// Handle calls f(ctx, req).
func (f HandlerFunc) Handle(ctx context.Context, req *types.Request) (*types.Response, error) {
	return f(ctx, req)
}
