package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"xget-hq/edge/pkg/proxy"
	"xget-hq/edge/pkg/proxy/types"
	"xget-hq/edge/pkg/telemetry/logging"
	"xget-hq/edge/pkg/telemetry/metrics"
	"xget-hq/edge/pkg/telemetry/tracing"
)

// HealthPath is the only path served by the health handler.
const HealthPath = "/api/health"

// Route names the handler a request is dispatched to.
type Route string

const (
	// RouteHealth is the health handler.
	RouteHealth Route = "health"
	// RouteProxy is the routing handler.
	RouteProxy Route = "proxy"
)

// RouteFor returns the route for a request path. Only an exact match on
// HealthPath selects the health handler, whatever the method.
func RouteFor(path string) Route {
	if path == HealthPath {
		return RouteHealth
	}
	return RouteProxy
}

// DispatcherConfig holds the dependencies of a Dispatcher. Every field is
// optional.
type DispatcherConfig struct {
	// Port is the configured port of the listener, used in request URLs when
	// the connection's local port is unknown.
	Port int

	// MaxBodyBytes caps buffered request bodies.
	MaxBodyBytes int64

	Logger  *slog.Logger
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer

	// Now is the clock used for failure timestamps.
	Now func() time.Time
}

// Dispatcher is the http.Handler that sits between the middleware chain and
// the application handlers. It adapts the request, picks a handler by path,
// adapts the response, and turns every failure into a JSON 500.
type Dispatcher struct {
	health  Handler
	routing Handler

	port    int
	maxBody int64
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	now     func() time.Time
}

// NewDispatcher creates a Dispatcher for the two application handlers.
func NewDispatcher(health, routing Handler, cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		health:  health,
		routing: routing,
		port:    cfg.Port,
		maxBody: cfg.MaxBodyBytes,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		tracer:  cfg.Tracer,
		now:     cfg.Now,
	}
	if d.logger == nil {
		d.logger = logging.Discard()
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := RouteFor(r.URL.Path)
	h := d.routing
	if route == RouteHealth {
		h = d.health
	}

	ctx, span := d.tracer.Start(r.Context(), "dispatch "+string(route))
	defer span.End()
	r = r.WithContext(ctx)

	resp, err := d.invoke(r, h)
	if err != nil {
		tracing.SetError(span, err)
		d.fail(w, r, route, err)
		return
	}

	result, err := write(w, r, resp)
	tracing.SetDispatchAttributes(span, string(route), string(result.Strategy))
	if err != nil {
		if !result.HeaderWritten {
			tracing.SetError(span, err)
			d.fail(w, r, route, err)
			return
		}
		// The client went away mid-body; the status line is already sent.
		d.logger.DebugContext(ctx, "response write failed",
			"route", route,
			"error", err,
		)
	}
	d.metrics.RecordResponseBody(string(result.Strategy), result.Bytes)
}

// write sends resp, omitting the body when r is a HEAD request.
func write(w http.ResponseWriter, r *http.Request, resp *types.Response) (proxy.WriteResult, error) {
	if r.Method == http.MethodHead {
		return proxy.WriteHeadResponse(w, resp)
	}
	return proxy.WriteResponse(w, resp)
}

// invoke adapts r and calls h. Panics raised by h are converted to handler
// errors, except http.ErrAbortHandler which keeps its meaning.
func (d *Dispatcher) invoke(r *http.Request, h Handler) (resp *types.Response, err error) {
	req, err := proxy.FromHTTPRequest(r, proxy.RequestOptions{
		Port:         d.port,
		MaxBodyBytes: d.maxBody,
	})
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			if p == http.ErrAbortHandler {
				panic(p)
			}
			err = proxy.HandlerError(fmt.Errorf("handler panic: %v", p))
		}
	}()

	if h == nil {
		return nil, proxy.HandlerError(errors.New("no handler configured"))
	}
	resp, err = h.Handle(r.Context(), req)
	if err != nil {
		return nil, proxy.HandlerError(err)
	}
	if resp == nil {
		return nil, proxy.HandlerError(errors.New("handler returned no response"))
	}
	return resp, nil
}

// fail logs err and writes the failure response for route.
func (d *Dispatcher) fail(w http.ResponseWriter, r *http.Request, route Route, err error) {
	kind := proxy.KindOf(err)
	d.logger.ErrorContext(r.Context(), "request failed",
		"route", route,
		"kind", kind.String(),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	d.metrics.RecordDispatchFailure(string(route), kind.String())

	var resp *types.Response
	if route == RouteHealth {
		resp = proxy.HealthFailureResponse()
	} else {
		resp = proxy.FailureResponse(err, d.now())
	}

	if _, werr := write(w, r, resp); werr != nil {
		d.logger.DebugContext(r.Context(), "failure response write failed", "error", werr)
	}
}
