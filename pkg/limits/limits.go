// Package limits bounds how hard a single client can lean on the server:
// concurrent live sockets per address and request rate per address.
package limits

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ClientIP returns the request's remote address without the port. It
// expects chi's RealIP middleware to have run first.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Connections caps concurrent WebSocket connections per client address.
type Connections struct {
	max   int
	mu    sync.Mutex
	count map[string]int
}

// NewConnections allows max concurrent sockets per address; zero or less
// means 20.
func NewConnections(max int) *Connections {
	if max <= 0 {
		max = 20
	}
	return &Connections{max: max, count: make(map[string]int)}
}

// Acquire takes a slot for ip.
func (c *Connections) Acquire(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count[ip] >= c.max {
		return false
	}
	c.count[ip]++
	return true
}

// Release returns a slot taken by Acquire.
func (c *Connections) Release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count[ip] <= 1 {
		delete(c.count, ip)
		return
	}
	c.count[ip]--
}

// Count returns the open slots held by ip.
func (c *Connections) Count(ip string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count[ip]
}

// Middleware takes a slot for each WebSocket upgrade. The slot goes back
// when the handler returns unless the handler called Detach, in which case
// it is held until the returned release func runs. Plain requests pass
// through.
func (c *Connections) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next.ServeHTTP(w, r)
			return
		}
		ip := ClientIP(r)
		if !c.Acquire(ip) {
			http.Error(w, "too many connections", http.StatusTooManyRequests)
			return
		}
		l := &lease{release: func() { c.Release(ip) }}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), leaseKey{}, l)))
		if !l.detached.Load() {
			l.done()
		}
	})
}

type leaseKey struct{}

type lease struct {
	release  func()
	once     sync.Once
	detached atomic.Bool
}

func (l *lease) done() { l.once.Do(l.release) }

// Detach keeps the connection slot of the request in ctx past the end of
// the handler, for connections that outlive their upgrade request. The
// returned func gives the slot back; it is safe to call more than once.
// Without a slot in ctx it returns a no-op.
func Detach(ctx context.Context) (release func()) {
	l, ok := ctx.Value(leaseKey{}).(*lease)
	if !ok {
		return func() {}
	}
	l.detached.Store(true)
	return l.done
}

// TokenBucket is a per-key token bucket. Buckets live in an LRU so an
// address scan cannot grow memory without bound.
type TokenBucket struct {
	rate  float64
	burst float64
	now   func() time.Time

	mu      sync.Mutex
	buckets *lru.Cache[string, *bucket]
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket refills rate tokens per second up to burst, tracking at
// most keys buckets.
func NewTokenBucket(rate float64, burst, keys int) *TokenBucket {
	if keys <= 0 {
		keys = 10000
	}
	cache, err := lru.New[string, *bucket](keys)
	if err != nil {
		panic(err)
	}
	return &TokenBucket{rate: rate, burst: float64(burst), now: time.Now, buckets: cache}
}

// Allow takes one token for key.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets.Get(key)
	if !ok {
		b = &bucket{tokens: tb.burst, last: now}
		tb.buckets.Add(key, b)
	}
	b.tokens += now.Sub(b.last).Seconds() * tb.rate
	if b.tokens > tb.burst {
		b.tokens = tb.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Middleware rejects requests over the limit with 429.
func (tb *TokenBucket) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.Allow(ClientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
