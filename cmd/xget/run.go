package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"xget-hq/edge/pkg/cli"
	"xget-hq/edge/pkg/config"
	"xget-hq/edge/pkg/proxy/handlers"
	"xget-hq/edge/pkg/server"
	"xget-hq/edge/pkg/telemetry/health"
	"xget-hq/edge/pkg/telemetry/logging"
	"xget-hq/edge/pkg/telemetry/metrics"
	"xget-hq/edge/pkg/telemetry/tracing"
)

var runFlags struct {
	httpPort  int
	httpsPort int
	tls       bool
	upstream  string
	logLevel  string
	dryRun    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the edge server",
	Long: `Start the edge server with the specified configuration.

Without TLS the server listens on the HTTP port only. With TLS enabled it
serves HTTPS on the HTTPS port and answers every plaintext request with a
302 redirect to the same host and path over HTTPS.

The configuration file is optional: when the default config.yaml does not
exist the server starts from defaults plus environment overrides (PORT,
HTTPS_PORT, SSL_ENABLED and XGET_*).

Examples:
  # Start with default config
  xget run

  # Start in TLS mode with the conventional certificate files
  xget run --tls --https-port 8443

  # Forward to a local upstream
  xget run --upstream http://127.0.0.1:9000

  # Validate config without starting server
  xget run --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runFlags.httpPort, "http-port", 0, "override server.http_port")
	runCmd.Flags().IntVar(&runFlags.httpsPort, "https-port", 0, "override server.https_port")
	runCmd.Flags().BoolVar(&runFlags.tls, "tls", false, "override security.tls.enabled")
	runCmd.Flags().StringVar(&runFlags.upstream, "upstream", "", "override routing.upstream")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, cfgFile)
	if err != nil {
		return err
	}
	config.SetConfig(cfg)

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		fmt.Fprintf(out, "  Mode: %s\n", modeOf(cfg))
		return nil
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Tracing.Timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(cfg.Telemetry.Metrics, prometheus.NewRegistry())

	forwarder, err := handlers.NewForwarder(handlers.ForwarderConfig{
		Upstream: cfg.Routing.Upstream,
		Timeout:  cfg.Routing.Timeout,
	})
	if err != nil {
		return cli.NewConfigError("routing.upstream", err.Error())
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout, health.WithVersion(Version))

	srv := server.New(*cfg, server.Options{
		Health:  checker,
		Routing: forwarder,
		Logger:  logger,
		Metrics: collector,
		Tracer:  tracer,
	})

	printBanner(out, cfg)
	if err := srv.Listen(); err != nil {
		return cli.NewCommandError("run", err)
	}
	printListeners(out, srv)

	start := time.Now()
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintf(out, "✓ Server stopped after %s\n", time.Since(start).Round(time.Second))
	return nil
}

// loadConfig reads the configuration file, applies environment and flag
// overrides and validates the result. A missing default config file is not
// an error.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	if path == defaultConfigFile && !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("http-port") {
		cfg.Server.HTTPPort = runFlags.httpPort
	}
	if flags.Changed("https-port") {
		cfg.Server.HTTPSPort = runFlags.httpsPort
	}
	if flags.Changed("tls") {
		cfg.Security.TLS.Enabled = runFlags.tls
	}
	if flags.Changed("upstream") {
		cfg.Routing.Upstream = runFlags.upstream
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func modeOf(cfg *config.Config) server.Mode {
	if cfg.TLSEnabled() {
		return server.ModeTLS
	}
	return server.ModePlaintext
}

func printBanner(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "xget edge v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(w, "Configuration: %s\n", cfgFile)
	}
	fmt.Fprintf(w, "Mode: %s\n", modeOf(cfg))
	if cfg.Routing.Upstream != "" {
		fmt.Fprintf(w, "Upstream: %s\n", cfg.Routing.Upstream)
	} else {
		fmt.Fprintln(w, "Upstream: none (routing answers 404)")
	}
}

func printListeners(w io.Writer, srv *server.Server) {
	fmt.Fprintln(w)
	if addr := srv.Addr(server.ListenerHTTPS); addr != "" {
		fmt.Fprintf(w, "✓ HTTPS listening on %s\n", addr)
		fmt.Fprintf(w, "✓ HTTP redirecting on %s\n", srv.Addr(server.ListenerHTTP))
		fmt.Fprintf(w, "✓ Health endpoint: https://%s%s\n", addr, handlers.HealthPath)
	} else {
		addr := srv.Addr(server.ListenerHTTP)
		fmt.Fprintf(w, "✓ HTTP listening on %s\n", addr)
		fmt.Fprintf(w, "✓ Health endpoint: http://%s%s\n", addr, handlers.HealthPath)
	}
	if addr := srv.Addr(server.ListenerMetrics); addr != "" {
		fmt.Fprintf(w, "✓ Metrics endpoint: http://%s\n", addr)
	}
	fmt.Fprintln(w, "\nPress Ctrl+C to stop")
}
