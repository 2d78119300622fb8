// Package metrics keeps in-process counters for the site and exposes them
// in the Prometheus text format.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Counter is a monotonically increasing counter.
type Counter struct {
	value atomic.Int64
}

// Inc adds one.
func (c *Counter) Inc() { c.value.Add(1) }

// Value returns the current count.
func (c *Counter) Value() int64 { return c.value.Load() }

// CounterVec is a counter split by one label.
type CounterVec struct {
	label  string
	values map[string]*Counter
	mu     sync.RWMutex
}

// NewCounterVec creates a counter vector keyed by label.
func NewCounterVec(label string) *CounterVec {
	return &CounterVec{label: label, values: make(map[string]*Counter)}
}

// Inc increments the counter for value.
func (cv *CounterVec) Inc(value string) {
	cv.mu.RLock()
	c, ok := cv.values[value]
	cv.mu.RUnlock()
	if !ok {
		cv.mu.Lock()
		if c, ok = cv.values[value]; !ok {
			c = &Counter{}
			cv.values[value] = c
		}
		cv.mu.Unlock()
	}
	c.Inc()
}

// Values returns a snapshot of every label value.
func (cv *CounterVec) Values() map[string]int64 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	out := make(map[string]int64, len(cv.values))
	for k, c := range cv.values {
		out[k] = c.Value()
	}
	return out
}

// Summary tracks the count and sum of observed durations.
type Summary struct {
	count atomic.Int64
	nanos atomic.Int64
}

// Observe records d.
func (s *Summary) Observe(d time.Duration) {
	s.count.Add(1)
	s.nanos.Add(int64(d))
}

// Count returns the number of observations.
func (s *Summary) Count() int64 { return s.count.Load() }

// Sum returns the total observed time.
func (s *Summary) Sum() time.Duration { return time.Duration(s.nanos.Load()) }

// Site holds the metrics the page reports.
type Site struct {
	namespace string

	Events      *CounterVec
	Contact     *CounterVec
	Newsletter  Counter
	Renders     Summary
	Connections func() int
}

// New creates the site metrics. Metric names are prefixed by namespace.
func New(namespace string) *Site {
	return &Site{
		namespace: namespace,
		Events:    NewCounterVec("event"),
		Contact:   NewCounterVec("outcome"),
	}
}

// Event counts a handled client event.
func (s *Site) Event(name string) { s.Events.Inc(name) }

// ContactSubmitted counts a finished contact delivery; outcome is "sent"
// or "failed".
func (s *Site) ContactSubmitted(outcome string) { s.Contact.Inc(outcome) }

// NewsletterSignup counts a newsletter subscription.
func (s *Site) NewsletterSignup() { s.Newsletter.Inc() }

// Rendered records the time taken by one render.
func (s *Site) Rendered(d time.Duration) { s.Renders.Observe(d) }

// Handler serves the metrics.
func (s *Site) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		s.WriteTo(w)
	})
}

// WriteTo writes the Prometheus exposition.
func (s *Site) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if s.Connections != nil {
		s.gauge(cw, "live_connections", "Open live sockets.", float64(s.Connections()))
	}
	s.vec(cw, "events_total", "Client events handled.", s.Events)
	s.vec(cw, "contact_submissions_total", "Contact deliveries by outcome.", s.Contact)
	s.counter(cw, "newsletter_signups_total", "Newsletter subscriptions.", s.Newsletter.Value())

	name := s.name("render_seconds")
	fmt.Fprintf(cw, "# HELP %s Live render time.\n# TYPE %s summary\n", name, name)
	fmt.Fprintf(cw, "%s_sum %g\n%s_count %d\n", name, s.Renders.Sum().Seconds(), name, s.Renders.Count())
	return cw.n, cw.err
}

func (s *Site) name(metric string) string {
	if s.namespace == "" {
		return metric
	}
	return s.namespace + "_" + metric
}

func (s *Site) gauge(w io.Writer, metric, help string, v float64) {
	name := s.name(metric)
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %g\n", name, help, name, name, v)
}

func (s *Site) counter(w io.Writer, metric, help string, v int64) {
	name := s.name(metric)
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, v)
}

func (s *Site) vec(w io.Writer, metric, help string, cv *CounterVec) {
	name := s.name(metric)
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n", name, help, name)
	values := cv.Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s{%s=%q} %d\n", name, cv.label, k, values[k])
	}
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
