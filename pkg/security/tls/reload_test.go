package tls

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"xget-hq/edge/pkg/config"
	"xget-hq/edge/pkg/telemetry/metrics"
)

func TestCertificateReloader_Load(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeMaterial(t, dir, generate(t, GenerateOptions{}))

	reloader := NewCertificateReloader(certFile, keyFile, ReloaderOptions{})

	if _, err := reloader.GetCertificate(nil); err != ErrNoCertificate {
		t.Errorf("GetCertificate() before Load error = %v, want ErrNoCertificate", err)
	}
	if err := reloader.HealthCheck()(context.Background()); err == nil {
		t.Error("health check should fail before Load")
	}

	if err := reloader.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cert, err := reloader.GetCertificate(nil)
	if err != nil || cert == nil {
		t.Fatalf("GetCertificate() = %v, %v", cert, err)
	}
	if reloader.Leaf() == nil {
		t.Error("Leaf() = nil after Load")
	}
	if err := reloader.HealthCheck()(context.Background()); err != nil {
		t.Errorf("health check error = %v", err)
	}
}

func TestCertificateReloader_Load_MissingFiles(t *testing.T) {
	reloader := NewCertificateReloader("nonexistent.crt", "nonexistent.key", ReloaderOptions{})
	if err := reloader.Load(); err == nil {
		t.Fatal("Load() should fail with nonexistent files")
	}
}

func TestCertificateReloader_FailedLoadKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeMaterial(t, dir, generate(t, GenerateOptions{}))

	reloader := NewCertificateReloader(certFile, keyFile, ReloaderOptions{})
	if err := reloader.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before := reloader.Certificate()

	if err := os.WriteFile(certFile, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := reloader.Load(); err == nil {
		t.Fatal("Load() should fail for invalid certificate")
	}
	if reloader.Certificate() != before {
		t.Error("failed load replaced the certificate")
	}
}

func TestCertificateReloader_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeMaterial(t, dir, generate(t, GenerateOptions{}))

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(config.MetricsConfig{Enabled: true, Namespace: "test", Subsystem: "tls"}, registry)

	reloader := NewCertificateReloader(certFile, keyFile, ReloaderOptions{
		Debounce: 20 * time.Millisecond,
		Metrics:  collector,
	})
	if err := reloader.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	original := reloader.Leaf().SerialNumber

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reloader.Watch(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	}()

	// The watcher starts asynchronously; keep rewriting until it notices.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		writeMaterial(t, dir, generate(t, GenerateOptions{}))
		time.Sleep(100 * time.Millisecond)
		if reloader.Leaf().SerialNumber.Cmp(original) != 0 {
			break
		}
	}
	if reloader.Leaf().SerialNumber.Cmp(original) == 0 {
		t.Fatal("certificate was not reloaded")
	}

	if got := counterTotal(t, registry, "test_tls_tls_certificate_reloads_total"); got < 1 {
		t.Errorf("reload counter = %v, want >= 1", got)
	}
}

// counterTotal sums every series of a counter family.
func counterTotal(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestCertificateReloader_WatchMissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	reloader := NewCertificateReloader(filepath.Join(missing, "a.crt"), filepath.Join(missing, "a.key"), ReloaderOptions{})
	if err := reloader.Watch(context.Background()); err == nil {
		t.Error("Watch() should fail for a missing directory")
	}
}

func TestCertificateReloader_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeMaterial(t, dir, generate(t, GenerateOptions{}))

	reloader := NewCertificateReloader(certFile, keyFile, ReloaderOptions{})
	if err := reloader.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := reloader.GetCertificate(nil); err != nil {
					t.Error(err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			_ = reloader.Load()
		}()
	}
	wg.Wait()
}
