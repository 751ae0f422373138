package health

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
)

// Check and overall status values.
const (
	StatusOK        = "ok"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// CheckFunc is a function that performs a health check for a component.
// It returns nil if the component is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// CheckResult represents the result of a single health check.
type CheckResult struct {
	// Status is StatusOK or StatusUnhealthy.
	Status string `json:"status"`

	// Message describes the problem for unhealthy checks.
	Message string `json:"message,omitempty"`

	// DurationMS is how long the check took in milliseconds.
	DurationMS float64 `json:"duration_ms"`
}

// HealthStatus represents the overall health status of the service.
type HealthStatus struct {
	// Status is StatusOK when every check passed, StatusDegraded otherwise.
	Status string `json:"status"`

	// Version is the running build, if known.
	Version string `json:"version,omitempty"`

	// Checks contains the status of individual components.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	// Timestamp is when the health check was performed.
	Timestamp time.Time `json:"timestamp"`
}

// Healthy reports whether every check passed.
func (s HealthStatus) Healthy() bool {
	return s.Status == StatusOK
}

// Checker manages health checks for service components.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	checkTimeout time.Duration
	version      string
	now          func() time.Time
}

// ErrCheckTimeout is reported when a health check exceeds the check timeout.
var ErrCheckTimeout = errors.New("health check timeout")

// Option configures a Checker.
type Option func(*Checker)

// WithVersion reports version in every health response.
func WithVersion(version string) Option {
	return func(c *Checker) { c.version = version }
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

// New creates a new health checker with the specified check timeout.
// If timeout is 0, defaults to 5 seconds per check.
func New(checkTimeout time.Duration, opts ...Option) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}

	c := &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterCheck registers a health check function for a named component.
// If a check with the same name already exists, it will be replaced.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check
}

// UnregisterCheck removes a health check for a named component.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.checks, name)
}

// ListChecks returns the sorted names of all registered health checks.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Sorted(maps.Keys(c.checks))
}

// Check runs every registered check concurrently and aggregates the results.
// All checks share one deadline; a check still running when it passes is
// reported as timed out and left to finish on its own. With no checks
// registered the service is healthy.
func (c *Checker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	names := slices.Sorted(maps.Keys(c.checks))
	checks := make([]CheckFunc, len(names))
	for i, name := range names {
		checks[i] = c.checks[name]
	}
	c.mu.RUnlock()

	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	type outcome struct {
		name   string
		result CheckResult
	}
	// Buffered so late checks never block after Check has returned.
	done := make(chan outcome, len(checks))
	start := time.Now()
	for i, check := range checks {
		go func() {
			err := check(checkCtx)
			done <- outcome{name: names[i], result: checkResult(checkCtx, err, start)}
		}()
	}

	results := make(map[string]CheckResult, len(names))
collect:
	for range checks {
		select {
		case o := <-done:
			results[o.name] = o.result
		case <-checkCtx.Done():
			break collect
		}
	}

	status := StatusOK
	for _, name := range names {
		r, ok := results[name]
		if !ok {
			r = timeoutResult(start)
			results[name] = r
		}
		if r.Status == StatusUnhealthy {
			status = StatusDegraded
		}
	}

	return HealthStatus{
		Status:    status,
		Version:   c.version,
		Checks:    results,
		Timestamp: c.now().UTC(),
	}
}

// checkResult converts the return value of a check. A check that returns
// after the deadline counts as timed out whatever it returned.
func checkResult(ctx context.Context, err error, start time.Time) CheckResult {
	if ctx.Err() != nil {
		return timeoutResult(start)
	}
	elapsed := millis(time.Since(start))
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Message: err.Error(), DurationMS: elapsed}
	}
	return CheckResult{Status: StatusOK, DurationMS: elapsed}
}

func timeoutResult(start time.Time) CheckResult {
	return CheckResult{
		Status:     StatusUnhealthy,
		Message:    ErrCheckTimeout.Error(),
		DurationMS: millis(time.Since(start)),
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
