package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gabrielmiguelok/pakheritage/pkg/core"
	"github.com/gabrielmiguelok/pakheritage/pkg/limits"
	"github.com/gabrielmiguelok/pakheritage/pkg/protocol"
)

// counter is a small live component with one dynamic slot and a timer.
type counter struct {
	core.BaseComponent
	count      int
	mounts     *atomic.Int32
	terminated chan core.TerminateReason
}

func (c *counter) Name() string { return "counter" }

func (c *counter) Mount(ctx context.Context, params core.Params, session core.Session) error {
	if c.mounts != nil {
		c.mounts.Add(1)
	}
	if params.Get("fail") == "1" {
		return errors.New("mount refused")
	}
	return nil
}

func (c *counter) Render(ctx context.Context) core.Renderer {
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div data-live-view="counter"><span data-slot="count">%d</span><p data-slot="static">hello</p></div>`, c.count)
		return err
	})
}

func (c *counter) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	switch event {
	case "inc":
		c.count++
	case "noop":
		return core.ErrNoChange
	case "boom":
		return errors.New("boom")
	case "later":
		_, err := c.SendAfter(10*time.Millisecond, "tick")
		if err != nil {
			return err
		}
		return core.ErrNoChange
	case "much-later":
		_, err := c.SendAfter(time.Hour, "tick")
		if err != nil {
			return err
		}
		return core.ErrNoChange
	}
	return nil
}

func (c *counter) HandleInfo(ctx context.Context, msg any) error {
	if msg == "tick" {
		c.count += 10
		return nil
	}
	return core.ErrNoChange
}

func (c *counter) Terminate(ctx context.Context, reason core.TerminateReason) error {
	if c.terminated != nil {
		c.terminated <- reason
	}
	return nil
}

type fixture struct {
	router     *Router
	server     *httptest.Server
	terminated chan core.TerminateReason
	mounts     *atomic.Int32
}

func newFixture(t *testing.T, mutate ...func(*core.Config)) *fixture {
	t.Helper()

	cfg := core.DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	return newFixtureWith(t, cfg)
}

func newFixtureWith(t *testing.T, cfg core.Config, mws ...Middleware) *fixture {
	t.Helper()

	f := &fixture{
		terminated: make(chan core.TerminateReason, 8),
		mounts:     &atomic.Int32{},
	}
	f.router = New(cfg, nil, mws...)
	f.router.Live("/", func() core.Component {
		return &counter{terminated: f.terminated, mounts: f.mounts}
	})
	f.server = httptest.NewServer(f.router)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + SocketPath + "?" + query
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

type wireMsg struct {
	Ref     string         `json:"ref"`
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

func send(t *testing.T, conn *websocket.Conn, ref, event string, payload map[string]any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, wireMsg{Ref: ref, Topic: "lv:test", Event: event, Payload: payload}))
}

func recv(t *testing.T, conn *websocket.Conn) wireMsg {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var msg wireMsg
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	return msg
}

func join(t *testing.T, conn *websocket.Conn) wireMsg {
	t.Helper()
	send(t, conn, "1", protocol.EventJoin, map[string]any{})
	reply := recv(t, conn)
	require.Equal(t, protocol.EventReply, reply.Event)
	require.Equal(t, "ok", reply.Payload["status"])
	return reply
}

func waitReason(t *testing.T, ch chan core.TerminateReason) core.TerminateReason {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(3 * time.Second):
		t.Fatal("component was not terminated")
		return 0
	}
}

func TestRouter_InitialHTTPRender(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), `<span data-slot="count">0</span>`)
}

func TestRouter_HTTPMountError(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/?fail=1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRouter_SocketUnknownPath(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + SocketPath + "?path=/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_JoinEventDiff(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "path=/&vsn=json")

	reply := join(t, conn)
	response := reply.Payload["response"].(map[string]any)
	rendered := response["rendered"].(map[string]any)["s"].([]any)
	assert.Contains(t, rendered[0], `data-slot="count">0<`)
	assert.True(t, strings.HasPrefix(response["topic"].(string), "lv:"))

	send(t, conn, "2", "inc", nil)
	diff := recv(t, conn)
	assert.Equal(t, protocol.EventDiff, diff.Event)
	assert.Equal(t, map[string]any{"count": "1"}, diff.Payload["s"])

	// ErrNoChange sends nothing, so the next frame is the diff for "inc".
	send(t, conn, "3", "noop", nil)
	send(t, conn, "4", "inc", nil)
	diff = recv(t, conn)
	assert.Equal(t, protocol.EventDiff, diff.Event)
	assert.Equal(t, map[string]any{"count": "2"}, diff.Payload["s"])
}

func TestRouter_EventErrorReply(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "vsn=json")
	join(t, conn)

	send(t, conn, "9", "boom", nil)
	reply := recv(t, conn)
	assert.Equal(t, "9", reply.Ref)
	assert.Equal(t, "error", reply.Payload["status"])
	assert.Equal(t, map[string]any{"reason": "boom"}, reply.Payload["response"])
}

func TestRouter_EventBeforeJoin(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "vsn=json")

	send(t, conn, "1", "inc", nil)
	reply := recv(t, conn)
	assert.Equal(t, "error", reply.Payload["status"])
	assert.Equal(t, ErrNotJoined.Error(), reply.Payload["response"].(map[string]any)["reason"])
}

func TestRouter_Heartbeat(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "vsn=json")

	send(t, conn, "5", protocol.EventHeartbeat, nil)
	reply := recv(t, conn)
	assert.Equal(t, "5", reply.Ref)
	assert.Equal(t, "ok", reply.Payload["status"])
}

func TestRouter_TimerDeliversInfo(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "vsn=json")
	join(t, conn)

	send(t, conn, "2", "later", nil)
	diff := recv(t, conn)
	assert.Equal(t, protocol.EventDiff, diff.Event)
	assert.Equal(t, map[string]any{"count": "10"}, diff.Payload["s"])
}

func TestRouter_LeaveTerminatesNormally(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "vsn=json")
	join(t, conn)

	send(t, conn, "3", protocol.EventLeave, nil)
	assert.Equal(t, core.TerminateNormal, waitReason(t, f.terminated))
	assert.Eventually(t, func() bool { return f.router.Sessions().Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestRouter_DisconnectCancelsTimers(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "vsn=json")
	join(t, conn)
	send(t, conn, "2", "much-later", nil)

	require.Eventually(t, func() bool {
		for _, s := range f.router.Sessions().All() {
			return s.Socket.Scheduler().Pending() == 1
		}
		return false
	}, time.Second, 5*time.Millisecond)

	sessions := f.router.Sessions().All()
	require.Len(t, sessions, 1)
	scheduler := sessions[0].Socket.Scheduler()

	conn.Close(websocket.StatusNormalClosure, "bye")
	assert.Equal(t, core.TerminateClosed, waitReason(t, f.terminated))
	assert.Equal(t, 0, scheduler.Pending())
	assert.Equal(t, 0, f.router.Sockets().Count())
}

func TestRouter_Shutdown(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "vsn=json")
	join(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, f.router.Shutdown(ctx))

	assert.Equal(t, core.TerminateShutdown, waitReason(t, f.terminated))
	assert.Equal(t, 0, f.router.Sessions().Count())
	assert.True(t, f.router.Sockets().IsShutdown())
}

func TestRouter_MsgPackCodec(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "vsn=msgpack")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	frame, err := msgpack.Marshal(&protocol.Message{Ref: "1", Topic: "lv:x", Event: protocol.EventJoin})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageBinary, frame))

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageBinary, typ)

	reply, err := protocol.NewMsgPackCodec().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "1", reply.Ref)
	assert.Equal(t, "ok", reply.String("status"))
}

func TestRouter_PhoenixIsDefault(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "path=/")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`["1","1","lv:x","phx_join",{}]`)))
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	reply, err := protocol.NewPhoenixCodec().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgReply, reply.Type)
	assert.Equal(t, "1", reply.JoinRef)
}

func TestRouter_MaxConnections(t *testing.T) {
	f := newFixture(t, func(c *core.Config) { c.MaxConnections = 1 })
	conn := f.dial(t, "vsn=json")
	join(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(f.server.URL, "http")+SocketPath, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRouter_ConnectionsPerAddressHeldWhileOpen(t *testing.T) {
	conns := limits.NewConnections(1)
	f := newFixtureWith(t, core.DefaultConfig(), conns.Middleware)

	conn := f.dial(t, "vsn=json")
	join(t, conn)
	assert.Equal(t, 1, conns.Count("127.0.0.1"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + SocketPath + "?vsn=json"
	_, resp, err := websocket.Dial(ctx, url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	conn.Close(websocket.StatusNormalClosure, "bye")
	waitReason(t, f.terminated)
	require.Eventually(t, func() bool { return conns.Count("127.0.0.1") == 0 }, time.Second, 10*time.Millisecond)

	second, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	second.CloseNow()
}

func TestRouter_RenderRoute(t *testing.T) {
	f := newFixture(t)

	var sb strings.Builder
	require.NoError(t, f.router.RenderRoute(context.Background(), "/", nil, &sb))
	assert.Contains(t, sb.String(), `data-live-view="counter"`)

	err := f.router.RenderRoute(context.Background(), "/nope", nil, &sb)
	assert.ErrorIs(t, err, ErrRouteNotFound)
	assert.ElementsMatch(t, []string{"/"}, f.router.Routes())
}

func TestExtractParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?image=3&vsn=msgpack", nil)
	params := extractParams(req, &LiveRoute{Path: "/gallery"})

	assert.Equal(t, "3", params.Get("image"))
	assert.Equal(t, "/gallery", params.Get("route"))
	assert.Empty(t, params.Get("vsn"))
}

func TestSecureHeaders(t *testing.T) {
	cfg := DefaultSecureHeadersConfig()
	cfg.ImageSources = []string{"https://images.unsplash.com"}
	cfg.FrameSources = []string{"https://www.google.com"}

	var nonce string
	h := SecureHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce = CSPNonce(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, nonce)
	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "'nonce-"+nonce+"'")
	assert.Contains(t, csp, "img-src 'self' data: https://images.unsplash.com")
	assert.Contains(t, csp, "frame-src https://www.google.com")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}
