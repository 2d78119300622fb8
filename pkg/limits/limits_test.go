package limits

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnections_AcquireRelease(t *testing.T) {
	c := NewConnections(2)

	assert.True(t, c.Acquire("10.0.0.1"))
	assert.True(t, c.Acquire("10.0.0.1"))
	assert.False(t, c.Acquire("10.0.0.1"))
	assert.True(t, c.Acquire("10.0.0.2"), "limit is per address")

	c.Release("10.0.0.1")
	assert.Equal(t, 1, c.Count("10.0.0.1"))
	assert.True(t, c.Acquire("10.0.0.1"))

	c.Release("10.0.0.2")
	c.Release("10.0.0.2")
	assert.Equal(t, 0, c.Count("10.0.0.2"))
}

func TestConnections_MiddlewareOnlyLimitsUpgrades(t *testing.T) {
	c := NewConnections(1)
	c.Acquire("192.0.2.7")

	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	plain.RemoteAddr = "192.0.2.7:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, plain)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	upgrade := httptest.NewRequest(http.MethodGet, "/_live/websocket", nil)
	upgrade.RemoteAddr = "192.0.2.7:5001"
	upgrade.Header.Set("Upgrade", "websocket")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, upgrade)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestConnections_DetachHoldsSlot(t *testing.T) {
	c := NewConnections(1)

	var release func()
	detach := true
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if detach {
			release = Detach(r.Context())
		}
		w.WriteHeader(http.StatusSwitchingProtocols)
	}))
	upgrade := func() int {
		req := httptest.NewRequest(http.MethodGet, "/_live/websocket", nil)
		req.RemoteAddr = "192.0.2.9:6000"
		req.Header.Set("Upgrade", "websocket")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusSwitchingProtocols, upgrade())
	assert.Equal(t, 1, c.Count("192.0.2.9"), "detached slot outlives the handler")
	assert.Equal(t, http.StatusTooManyRequests, upgrade())

	release()
	release()
	assert.Equal(t, 0, c.Count("192.0.2.9"))

	detach = false
	assert.Equal(t, http.StatusSwitchingProtocols, upgrade())
	assert.Equal(t, 0, c.Count("192.0.2.9"), "slot returned when the handler does not detach")
}

func TestDetach_WithoutSlot(t *testing.T) {
	release := Detach(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.NotPanics(t, release)
}

func TestTokenBucket_Refill(t *testing.T) {
	now := time.Unix(0, 0)
	tb := NewTokenBucket(2, 3, 0)
	tb.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow("a"), "burst token %d", i)
	}
	assert.False(t, tb.Allow("a"))
	assert.True(t, tb.Allow("b"))

	now = now.Add(500 * time.Millisecond)
	assert.True(t, tb.Allow("a"))
	assert.False(t, tb.Allow("a"))

	now = now.Add(time.Hour)
	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow("a"))
	}
	assert.False(t, tb.Allow("a"), "refill caps at burst")
}

func TestTokenBucket_Middleware(t *testing.T) {
	tb := NewTokenBucket(0, 1, 0)
	h := tb.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
