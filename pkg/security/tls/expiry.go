package tls

import (
	"crypto/x509"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"xget-hq/edge/pkg/telemetry/logging"
	"xget-hq/edge/pkg/telemetry/metrics"
)

// ExpiryMonitorConfig configures an ExpiryMonitor.
type ExpiryMonitorConfig struct {
	// Schedule is a standard cron expression or descriptor ("@hourly").
	Schedule string

	// WarningDays is the threshold below which a warning is logged.
	WarningDays int

	Logger  *slog.Logger
	Metrics *metrics.Collector

	// Now is the clock. Default: time.Now.
	Now func() time.Time
}

// ExpiryMonitor periodically checks the serving certificate, publishes the
// remaining days as a gauge and warns when renewal is due.
type ExpiryMonitor struct {
	leaf     func() *x509.Certificate
	schedule string
	warnDays int
	logger   *slog.Logger
	metrics  *metrics.Collector
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewExpiryMonitor creates a monitor that inspects the certificate returned
// by leaf on every run.
func NewExpiryMonitor(leaf func() *x509.Certificate, cfg ExpiryMonitorConfig) *ExpiryMonitor {
	m := &ExpiryMonitor{
		leaf:     leaf,
		schedule: cfg.Schedule,
		warnDays: cfg.WarningDays,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		now:      cfg.Now,
		cron:     cron.New(),
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Start runs one check immediately and then schedules the rest. An empty
// schedule disables the monitor.
func (m *ExpiryMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("expiry monitor already running")
	}
	if m.schedule == "" {
		m.logger.Info("certificate expiry monitor disabled (no schedule)")
		return nil
	}

	if _, err := cron.ParseStandard(m.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", m.schedule, err)
	}
	if _, err := m.cron.AddFunc(m.schedule, func() { _, _ = m.Check() }); err != nil {
		return fmt.Errorf("failed to schedule expiry check: %w", err)
	}

	_, _ = m.Check()
	m.cron.Start()
	m.running = true

	m.logger.Info("certificate expiry monitor started",
		"schedule", m.schedule,
		"warning_days", m.warnDays,
	)
	return nil
}

// Stop stops the schedule and waits for a running check to finish.
func (m *ExpiryMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	<-m.cron.Stop().Done()
	m.running = false
	m.logger.Info("certificate expiry monitor stopped")
}

// Check inspects the certificate once and returns the days remaining.
func (m *ExpiryMonitor) Check() (int, error) {
	leaf := m.leaf()
	if leaf == nil {
		m.logger.Error("certificate expiry check failed", "error", ErrNoCertificate)
		return 0, ErrNoCertificate
	}

	now := m.now()
	days, warning := expirationAt(leaf, m.warnDays, now)
	m.metrics.SetCertificateExpiry(leaf.NotAfter.Sub(now).Hours() / 24)

	if err := validateAt(leaf, now); err != nil {
		m.logger.Error("serving certificate is not valid",
			"subject", leaf.Subject.CommonName,
			"error", err,
		)
		return days, err
	}
	if warning != "" {
		m.logger.Warn("certificate expiring soon",
			"subject", leaf.Subject.CommonName,
			"expires_in_days", days,
			"expires_at", leaf.NotAfter.Format(time.RFC3339),
		)
	}
	return days, nil
}
