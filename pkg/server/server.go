package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"xget-hq/edge/pkg/config"
	"xget-hq/edge/pkg/proxy/handlers"
	"xget-hq/edge/pkg/proxy/middleware"
	sectls "xget-hq/edge/pkg/security/tls"
	"xget-hq/edge/pkg/telemetry/health"
	"xget-hq/edge/pkg/telemetry/logging"
	"xget-hq/edge/pkg/telemetry/metrics"
	"xget-hq/edge/pkg/telemetry/tracing"
)

// Mode is the serving mode, fixed at construction by security.tls.enabled.
type Mode int

const (
	// ModePlaintext serves the pipeline on the HTTP port only.
	ModePlaintext Mode = iota
	// ModeTLS serves the pipeline on the HTTPS port and redirects the HTTP
	// port to it.
	ModeTLS
)

func (m Mode) String() string {
	if m == ModeTLS {
		return "tls"
	}
	return "plaintext"
}

// Listener names accepted by Addr.
const (
	ListenerHTTP    = "http"
	ListenerHTTPS   = "https"
	ListenerMetrics = "metrics"
)

// Options holds the collaborators of a Server.
type Options struct {
	// Health serves /api/health. When it is a *health.Checker and TLS is
	// enabled, a tls_certificate check is registered on it.
	Health handlers.Handler

	// Routing serves every other path.
	Routing handlers.Handler

	Logger  *slog.Logger
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer

	// Certificates overrides the certificate files named in the
	// configuration. Used by tests and embedders.
	Certificates sectls.CertificateSource
}

type listener struct {
	name string
	srv  *http.Server
	ln   net.Listener
}

// Server is the server bootstrap. It owns every listener and their
// background helpers (certificate watcher, expiry monitor).
type Server struct {
	cfg    config.Config
	mode   Mode
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	listeners []*listener
	reloader  *sectls.CertificateReloader
	monitor   *sectls.ExpiryMonitor
}

// New creates a Server. cfg is copied; later changes to the caller's value
// are not observed.
func New(cfg config.Config, opts Options) *Server {
	s := &Server{
		cfg:    cfg,
		opts:   opts,
		logger: opts.Logger,
	}
	if cfg.TLSEnabled() {
		s.mode = ModeTLS
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s
}

// Mode returns the serving mode.
func (s *Server) Mode() Mode {
	return s.mode
}

// Start binds every listener and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Listen binds every listener without serving. In TLS mode the certificate
// is loaded first; a missing or invalid certificate is returned as an error
// and nothing is bound.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.listeners) > 0 {
		return fmt.Errorf("server is already listening")
	}

	var bound []*listener
	fail := func(err error) error {
		for _, l := range bound {
			_ = l.ln.Close()
		}
		return err
	}

	srvCfg := s.cfg.Server
	switch s.mode {
	case ModeTLS:
		source, err := s.certificateSource()
		if err != nil {
			return fail(fmt.Errorf("failed to load TLS certificate: %w", err))
		}
		tlsConfig, err := sectls.FromConfig(s.cfg.Security.TLS).ToTLSConfig(source)
		if err != nil {
			return fail(fmt.Errorf("failed to configure TLS: %w", err))
		}

		l, err := s.bind(ListenerHTTPS, srvCfg.HTTPSPort, s.pipeline(srvCfg.HTTPSPort, true))
		if err != nil {
			return fail(err)
		}
		l.srv.TLSConfig = tlsConfig
		l.ln = tls.NewListener(l.ln, tlsConfig)
		bound = append(bound, l)

		l, err = s.bind(ListenerHTTP, srvCfg.HTTPPort, s.pipeline(srvCfg.HTTPPort, true))
		if err != nil {
			return fail(err)
		}
		bound = append(bound, l)

	default:
		l, err := s.bind(ListenerHTTP, srvCfg.HTTPPort, s.pipeline(srvCfg.HTTPPort, false))
		if err != nil {
			return fail(err)
		}
		bound = append(bound, l)
	}

	if m := s.cfg.Telemetry.Metrics; m.Enabled && m.Port != 0 && s.opts.Metrics != nil {
		mux := http.NewServeMux()
		mux.Handle(m.Path, s.opts.Metrics.Handler())
		l, err := s.bind(ListenerMetrics, m.Port, mux)
		if err != nil {
			return fail(err)
		}
		bound = append(bound, l)
	}

	s.listeners = bound
	for _, l := range bound {
		s.logger.Info("listener bound",
			"listener", l.name,
			"address", l.ln.Addr().String(),
			"mode", s.mode.String(),
		)
	}
	return nil
}

// Serve serves every bound listener until ctx is canceled or one of them
// fails, then shuts all of them down within server.shutdown_timeout.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	listeners := s.listeners
	reloader := s.reloader
	s.mu.Unlock()

	if len(listeners) == 0 {
		return fmt.Errorf("server is not listening")
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, l := range listeners {
		g.Go(func() error {
			if err := l.srv.Serve(l.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s listener: %w", l.name, err)
			}
			return nil
		})
	}

	if reloader != nil && s.cfg.Security.TLS.Watch {
		g.Go(func() error {
			if err := reloader.Watch(gctx); err != nil {
				// Serving continues with the loaded certificate.
				s.logger.Error("certificate watcher failed", "error", err)
			}
			return nil
		})
	}

	if reloader != nil {
		s.monitor = sectls.NewExpiryMonitor(reloader.Leaf, sectls.ExpiryMonitorConfig{
			Schedule:    s.cfg.Security.TLS.ExpirySchedule(),
			WarningDays: s.cfg.Security.TLS.ExpiryWarningDays,
			Logger:      s.logger,
			Metrics:     s.opts.Metrics,
		})
		if err := s.monitor.Start(); err != nil {
			s.logger.Error("certificate expiry monitor not started", "error", err)
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown(listeners)
	})

	return g.Wait()
}

// Addr returns the bound address of the named listener, or "" if it is not
// bound.
func (s *Server) Addr(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.listeners {
		if l.name == name {
			return l.ln.Addr().String()
		}
	}
	return ""
}

func (s *Server) shutdown(listeners []*listener) error {
	s.logger.Info("initiating graceful shutdown", "timeout", s.cfg.Server.ShutdownTimeout.String())

	if s.monitor != nil {
		s.monitor.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, l := range listeners {
		if err := l.srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s listener shutdown: %w", l.name, err))
		}
	}

	s.logger.Info("server stopped")
	return errors.Join(errs...)
}

// certificateSource returns the configured source, or loads the
// certificate files into a reloader.
func (s *Server) certificateSource() (sectls.CertificateSource, error) {
	if s.opts.Certificates != nil {
		return s.opts.Certificates, nil
	}

	t := s.cfg.Security.TLS
	reloader := sectls.NewCertificateReloader(t.CertFile, t.KeyFile, sectls.ReloaderOptions{
		Logger:  s.logger,
		Metrics: s.opts.Metrics,
	})
	if err := reloader.Load(); err != nil {
		return nil, err
	}
	s.reloader = reloader

	if checker, ok := s.opts.Health.(*health.Checker); ok {
		checker.RegisterCheck("tls_certificate", reloader.HealthCheck())
	}

	leaf := reloader.Leaf()
	s.logger.Info("certificate loaded",
		"subject", leaf.Subject.CommonName,
		"issuer", leaf.Issuer.CommonName,
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
	)
	return reloader, nil
}

// bind listens on the configured address and wraps h in an http.Server.
func (s *Server) bind(name string, port int, h http.Handler) (*listener, error) {
	addr := net.JoinHostPort(s.cfg.Server.BindAddress, strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s listener on %s: %w", name, addr, err)
	}

	srvCfg := s.cfg.Server
	return &listener{
		name: name,
		ln:   ln,
		srv: &http.Server{
			Handler:           h,
			ReadTimeout:       srvCfg.ReadTimeout,
			ReadHeaderTimeout: srvCfg.ReadTimeout,
			WriteTimeout:      srvCfg.WriteTimeout,
			IdleTimeout:       srvCfg.IdleTimeout,
			MaxHeaderBytes:    srvCfg.MaxHeaderBytes,
			ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
		},
	}, nil
}

// pipeline builds a fresh handler chain for one listener. Chains share no
// mutable state; the dispatcher reports port in request URLs when the
// connection's local port is unknown.
func (s *Server) pipeline(port int, redirect bool) http.Handler {
	dispatcher := handlers.NewDispatcher(s.opts.Health, s.opts.Routing, handlers.DispatcherConfig{
		Port:         port,
		MaxBodyBytes: s.cfg.Server.MaxBodyBytes,
		Logger:       s.logger,
		Metrics:      s.opts.Metrics,
		Tracer:       s.opts.Tracer,
	})

	mws := []middleware.Middleware{
		middleware.RecoveryMiddleware(s.logger),
		middleware.RequestIDMiddleware,
		tracing.HTTPMiddleware(s.opts.Tracer),
		middleware.LoggingMiddleware(s.logger),
		middleware.MetricsMiddleware(s.opts.Metrics),
	}
	if redirect {
		mws = append(mws, middleware.RedirectMiddleware(s.opts.Metrics))
	}
	return middleware.Chain(dispatcher, mws...)
}
