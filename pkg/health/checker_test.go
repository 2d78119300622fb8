package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRun_AllHealthy(t *testing.T) {
	c := NewChecker("1.2.0")
	c.Add("ping", func(ctx context.Context) error { return nil }, time.Second)
	c.AddCritical("catalog", MinimumProbe("images", func() int { return 8 }, 1), 0)

	report := c.Run(context.Background())
	if report.Status != StatusHealthy {
		t.Fatalf("status = %s, want healthy", report.Status)
	}
	if report.Version != "1.2.0" {
		t.Errorf("version = %q", report.Version)
	}
	if len(report.Checks) != 2 {
		t.Errorf("checks = %d, want 2", len(report.Checks))
	}
}

func TestRun_NonCriticalDegrades(t *testing.T) {
	c := NewChecker("")
	c.AddCritical("catalog", func(ctx context.Context) error { return nil }, 0)
	c.Add("memory", func(ctx context.Context) error { return errors.New("too big") }, 0)

	report := c.Run(context.Background())
	if report.Status != StatusDegraded {
		t.Fatalf("status = %s, want degraded", report.Status)
	}
	if got := report.Checks["memory"].Error; got != "too big" {
		t.Errorf("error = %q", got)
	}
}

func TestRun_CriticalFailure(t *testing.T) {
	c := NewChecker("")
	c.Add("memory", func(ctx context.Context) error { return errors.New("x") }, 0)
	c.AddCritical("catalog", MinimumProbe("images", func() int { return 0 }, 1), 0)

	report := c.Run(context.Background())
	if report.Status != StatusUnhealthy {
		t.Fatalf("status = %s, want unhealthy", report.Status)
	}
	details, ok := report.Checks["catalog"].Details.(map[string]any)
	if !ok || details["min"] != 1 {
		t.Errorf("details = %#v", report.Checks["catalog"].Details)
	}
}

func TestRun_ProbeTimeout(t *testing.T) {
	c := NewChecker("")
	c.AddCritical("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 20*time.Millisecond)

	start := time.Now()
	report := c.Run(context.Background())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("probe was not bounded by its timeout: %v", elapsed)
	}
	if report.Status != StatusUnhealthy {
		t.Errorf("status = %s", report.Status)
	}
}

func TestCapacityProbe(t *testing.T) {
	n := 3
	probe := CapacityProbe(func() int { return n }, 3)
	if err := probe(context.Background()); err == nil {
		t.Error("expected capacity error")
	}
	n = 2
	if err := probe(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CapacityProbe(func() int { return 1 << 20 }, 0)(context.Background()); err != nil {
		t.Errorf("zero max must be unlimited: %v", err)
	}
}

func TestMemoryProbe(t *testing.T) {
	if err := MemoryProbe(1)(context.Background()); err == nil {
		t.Error("a one-byte limit must fail")
	}
	if err := MemoryProbe(0)(context.Background()); err != nil {
		t.Errorf("zero limit must pass: %v", err)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ready", nil, http.StatusOK},
		{"not ready", errors.New("down"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker("")
			c.AddCritical("catalog", func(ctx context.Context) error { return tt.err }, 0)

			rec := httptest.NewRecorder()
			c.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.want {
				t.Errorf("code = %d, want %d", rec.Code, tt.want)
			}
			var report Report
			if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, ok := report.Checks["catalog"]; !ok {
				t.Error("report is missing the catalog check")
			}
		})
	}
}

func TestLivenessAndHealthHandlers(t *testing.T) {
	c := NewChecker("")
	c.AddCritical("down", func(ctx context.Context) error { return errors.New("down") }, 0)

	rec := httptest.NewRecorder()
	c.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("liveness code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health code = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestNames(t *testing.T) {
	c := NewChecker("")
	c.Add("sockets", nil, 0)
	c.Add("catalog", nil, 0)
	got := c.Names()
	if len(got) != 2 || got[0] != "catalog" || got[1] != "sockets" {
		t.Errorf("names = %v", got)
	}
}
