// Package health reports whether the site can serve pages and live
// sessions.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Status is the outcome of a probe or of the whole report.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// defaultTimeout applies to probes registered without one.
const defaultTimeout = 2 * time.Second

// ProbeFunc checks one dependency. A nil error means healthy.
type ProbeFunc func(ctx context.Context) error

// Result is the outcome of a single probe.
type Result struct {
	Status     Status `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
	Details    any    `json:"details,omitempty"`
}

// Report aggregates every probe.
type Report struct {
	Status    Status            `json:"status"`
	Checks    map[string]Result `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
}

type probe struct {
	name     string
	fn       ProbeFunc
	timeout  time.Duration
	critical bool
}

// Checker runs registered probes concurrently.
type Checker struct {
	probes  []probe
	version string
	mu      sync.RWMutex
}

// NewChecker creates a checker reporting the given build version.
func NewChecker(version string) *Checker {
	return &Checker{version: version}
}

// Add registers a probe whose failure only degrades the report.
func (c *Checker) Add(name string, fn ProbeFunc, timeout time.Duration) {
	c.add(probe{name: name, fn: fn, timeout: timeout})
}

// AddCritical registers a probe whose failure makes the report unhealthy.
func (c *Checker) AddCritical(name string, fn ProbeFunc, timeout time.Duration) {
	c.add(probe{name: name, fn: fn, timeout: timeout, critical: true})
}

func (c *Checker) add(p probe) {
	if p.timeout <= 0 {
		p.timeout = defaultTimeout
	}
	c.mu.Lock()
	c.probes = append(c.probes, p)
	c.mu.Unlock()
}

// Names returns the registered probe names in order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.probes))
	for i, p := range c.probes {
		names[i] = p.name
	}
	sort.Strings(names)
	return names
}

// Run executes every probe and folds the results into a report.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	probes := append([]probe(nil), c.probes...)
	version := c.version
	c.mu.RUnlock()

	report := Report{
		Status:    StatusHealthy,
		Checks:    make(map[string]Result, len(probes)),
		Timestamp: time.Now().UTC(),
		Version:   version,
	}

	results := make([]Result, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func(i int, p probe) {
			defer wg.Done()
			results[i] = runProbe(ctx, p)
		}(i, p)
	}
	wg.Wait()

	for i, p := range probes {
		res := results[i]
		report.Checks[p.name] = res
		if res.Status == StatusHealthy {
			continue
		}
		if p.critical {
			report.Status = StatusUnhealthy
		} else if report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	}
	return report
}

func runProbe(ctx context.Context, p probe) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := p.fn(ctx)
	res := Result{
		Status:     StatusHealthy,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		res.Status = StatusUnhealthy
		res.Error = err.Error()
		if pe, ok := err.(*ProbeError); ok {
			res.Details = pe.Details
		}
	}
	return res
}

// LivenessHandler answers 200 while the process runs.
func (c *Checker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "alive",
			"timestamp": time.Now().UTC(),
		})
	})
}

// ReadinessHandler answers 503 when a critical probe fails.
func (c *Checker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())
		code := http.StatusOK
		if report.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, report)
	})
}

// HealthHandler always answers 200 with the full report.
func (c *Checker) HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Run(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// ProbeError is a probe failure carrying details for the report.
type ProbeError struct {
	Message string
	Details map[string]any
}

func (e *ProbeError) Error() string {
	return e.Message
}

// CapacityProbe fails once count reaches max. A max of zero never fails.
func CapacityProbe(count func() int, max int) ProbeFunc {
	return func(ctx context.Context) error {
		n := count()
		if max > 0 && n >= max {
			return &ProbeError{
				Message: "live connections at capacity",
				Details: map[string]any{"current": n, "max": max},
			}
		}
		return nil
	}
}

// MinimumProbe fails when count is below min, e.g. an empty image catalog.
func MinimumProbe(what string, count func() int, min int) ProbeFunc {
	return func(ctx context.Context) error {
		if n := count(); n < min {
			return &ProbeError{
				Message: fmt.Sprintf("%s: have %d, want at least %d", what, n, min),
				Details: map[string]any{"current": n, "min": min},
			}
		}
		return nil
	}
}

// MemoryProbe fails when the Go heap exceeds maxBytes.
func MemoryProbe(maxBytes uint64) ProbeFunc {
	return func(ctx context.Context) error {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		if maxBytes > 0 && ms.HeapAlloc > maxBytes {
			return &ProbeError{
				Message: "heap above limit",
				Details: map[string]any{"heap_alloc": ms.HeapAlloc, "max": maxBytes},
			}
		}
		return nil
	}
}
