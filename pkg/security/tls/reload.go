package tls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"xget-hq/edge/pkg/telemetry/health"
	"xget-hq/edge/pkg/telemetry/logging"
	"xget-hq/edge/pkg/telemetry/metrics"
)

// DefaultReloadDebounce is how long the reloader waits after the last file
// event before reloading.
const DefaultReloadDebounce = 250 * time.Millisecond

// ErrNoCertificate is returned by GetCertificate before a successful Load.
var ErrNoCertificate = errors.New("no certificate loaded")

// ReloaderOptions configures a CertificateReloader.
type ReloaderOptions struct {
	// Debounce coalesces bursts of file events. Default: DefaultReloadDebounce.
	Debounce time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// CertificateReloader holds the serving certificate and replaces it when
// the files on disk change, so renewals take effect without a restart.
// A failed reload keeps the previous certificate.
type CertificateReloader struct {
	certFile string
	keyFile  string
	debounce time.Duration
	logger   *slog.Logger
	metrics  *metrics.Collector

	mu   sync.RWMutex
	cert *tls.Certificate
}

// NewCertificateReloader creates a reloader for the given files. Call Load
// before serving.
func NewCertificateReloader(certFile, keyFile string, opts ReloaderOptions) *CertificateReloader {
	r := &CertificateReloader{
		certFile: certFile,
		keyFile:  keyFile,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if r.debounce <= 0 {
		r.debounce = DefaultReloadDebounce
	}
	if r.logger == nil {
		r.logger = logging.Discard()
	}
	return r
}

// Load reads and validates the certificate and key. On success it becomes
// the serving certificate; on failure the current one is kept.
func (r *CertificateReloader) Load() error {
	material, err := ReadMaterial(r.certFile, r.keyFile)
	if err != nil {
		return err
	}
	cert, err := material.KeyPair()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	r.metrics.SetCertificateExpiry(time.Until(cert.Leaf.NotAfter).Hours() / 24)
	return nil
}

// Certificate returns the serving certificate, or nil before Load.
func (r *CertificateReloader) Certificate() *tls.Certificate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert
}

// Leaf returns the parsed leaf of the serving certificate, or nil.
func (r *CertificateReloader) Leaf() *x509.Certificate {
	if cert := r.Certificate(); cert != nil {
		return cert.Leaf
	}
	return nil
}

// GetCertificate implements CertificateSource.
func (r *CertificateReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	if cert := r.Certificate(); cert != nil {
		return cert, nil
	}
	return nil, ErrNoCertificate
}

// HealthCheck reports the serving certificate as unhealthy when none is
// loaded or it is outside its validity window.
func (r *CertificateReloader) HealthCheck() health.CheckFunc {
	return func(ctx context.Context) error {
		leaf := r.Leaf()
		if leaf == nil {
			return ErrNoCertificate
		}
		return ValidateX509Certificate(leaf)
	}
}

// Watch reloads the certificate whenever the certificate or key file is
// written, created, renamed or removed. It watches the parent directories
// so atomic replacements (rename over, symlink swap) are seen. Watch blocks
// until ctx is done.
func (r *CertificateReloader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]bool, 2)
	for _, f := range []string{r.certFile, r.keyFile} {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", f, err)
		}
		targets[abs] = true
	}
	dirs := make(map[string]bool, 2)
	for f := range targets {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %q: %w", dir, err)
		}
		dirs[dir] = true
	}

	r.logger.Info("certificate watcher started",
		"cert_file", r.certFile,
		"key_file", r.keyFile,
		"debounce_ms", r.debounce.Milliseconds(),
	)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("certificate watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !relevant(event, targets) {
				continue
			}
			r.logger.Debug("certificate file event", "path", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.AfterFunc(r.debounce, r.reload)
			} else {
				timer.Reset(r.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			r.logger.Error("certificate watcher error", "error", err)
		}
	}
}

// reload is the debounced reload triggered by Watch.
func (r *CertificateReloader) reload() {
	if err := r.Load(); err != nil {
		r.metrics.RecordCertificateReload(false)
		r.logger.Error("failed to reload certificate, keeping previous",
			"error", err,
			"cert_file", r.certFile,
			"key_file", r.keyFile,
		)
		return
	}

	r.metrics.RecordCertificateReload(true)
	leaf := r.Leaf()
	r.logger.Info("certificate reloaded",
		"cert_file", r.certFile,
		"subject", leaf.Subject.CommonName,
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
	)
}

// relevant reports whether event concerns one of the target files.
// Kubernetes secret volumes swap a "..data" symlink instead of touching
// the files themselves.
func relevant(event fsnotify.Event, targets map[string]bool) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	if targets[filepath.Clean(event.Name)] {
		return true
	}
	return filepath.Base(event.Name) == "..data"
}
