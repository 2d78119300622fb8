// Package livetest drives live components without a browser or WebSocket.
//
// A View mounts a component on an in-memory socket, pushes events the way
// the router's message loop does, delivers scheduled timer messages on
// demand and exposes the rendered HTML as a goquery document.
package livetest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/gabrielmiguelok/pakheritage/pkg/core"
)

// Recorder is an in-memory core.Transport that keeps every pushed message.
type Recorder struct {
	sent   []core.Message
	closed bool
	mu     sync.Mutex
}

// Send records msg.
func (r *Recorder) Send(msg core.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return core.ErrSocketClosed
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Close marks the recorder closed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// IsConnected reports whether Close has not been called.
func (r *Recorder) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []core.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Message(nil), r.sent...)
}

type options struct {
	params  core.Params
	session core.Session
	static  bool
}

// Option configures Mount.
type Option func(*options)

// WithParams sets the mount params.
func WithParams(p core.Params) Option {
	return func(o *options) { o.params = p }
}

// WithSession sets the mount session.
func WithSession(s core.Session) Option {
	return func(o *options) { o.session = s }
}

// Static renders as a plain HTTP request would: no socket in the context
// and no scheduler.
func Static() Option {
	return func(o *options) { o.static = true }
}

// View is a mounted component under test.
type View struct {
	t         testing.TB
	component core.Component
	socket    *core.Socket
	recorder  *Recorder
	ctx       context.Context

	html    string
	renders int
	skipped int
	closed  bool
}

// Mount mounts comp and performs the initial render. The component is
// terminated when the test ends.
func Mount(t testing.TB, comp core.Component, opts ...Option) *View {
	t.Helper()

	o := options{params: core.Params{}, session: core.Session{}}
	for _, opt := range opts {
		opt(&o)
	}

	v := &View{t: t, component: comp, recorder: &Recorder{}}
	v.ctx = core.WithParams(context.Background(), o.params)

	if !o.static {
		v.socket = core.NewSocket("test-"+uuid.NewString()[:8], v.recorder)
		if sc, ok := comp.(interface{ SetSocket(*core.Socket) }); ok {
			sc.SetSocket(v.socket)
		}
		v.ctx = core.BuildContext(context.Background(), v.socket, o.session, o.params)
	}

	if err := comp.Mount(v.ctx, o.params, o.session); err != nil {
		t.Fatalf("mount %s: %v", comp.Name(), err)
	}
	v.render()

	t.Cleanup(func() { v.Close(core.TerminateNormal) })
	return v
}

// Push sends an event to the component. A handler error fails the test.
func (v *View) Push(event string, payload map[string]any) *View {
	v.t.Helper()
	if err := v.PushErr(event, payload); err != nil {
		v.t.Errorf("event %q: %v", event, err)
	}
	return v
}

// PushErr sends an event and returns the handler error. core.ErrNoChange
// is not an error; it skips the re-render.
func (v *View) PushErr(event string, payload map[string]any) error {
	v.t.Helper()
	if payload == nil {
		payload = map[string]any{}
	}
	err := v.component.HandleEvent(v.ctx, event, payload)
	return v.after(err)
}

// Info delivers msg to HandleInfo directly, bypassing the scheduler.
func (v *View) Info(msg any) *View {
	v.t.Helper()
	if err := v.after(v.component.HandleInfo(v.ctx, msg)); err != nil {
		v.t.Errorf("info %T: %v", msg, err)
	}
	return v
}

// Await waits up to timeout for the next scheduled message and delivers
// it. It reports whether one arrived.
func (v *View) Await(timeout time.Duration) bool {
	v.t.Helper()
	if v.socket == nil {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-v.socket.Scheduler().Inbox():
		if err := v.after(v.component.HandleInfo(v.ctx, msg)); err != nil {
			v.t.Errorf("info %T: %v", msg, err)
		}
		return true
	case <-timer.C:
		return false
	}
}

// MustAwait is Await that fails the test on timeout.
func (v *View) MustAwait(timeout time.Duration) *View {
	v.t.Helper()
	if !v.Await(timeout) {
		v.t.Fatalf("no scheduled message within %v", timeout)
	}
	return v
}

// Drain delivers scheduled messages until none arrives for quiet.
func (v *View) Drain(quiet time.Duration) int {
	n := 0
	for v.Await(quiet) {
		n++
	}
	return n
}

// Pending returns the number of scheduled tasks not yet delivered.
func (v *View) Pending() int {
	if v.socket == nil {
		return 0
	}
	return v.socket.Scheduler().Pending()
}

// Close terminates the component and stops its scheduler. Later calls do
// nothing.
func (v *View) Close(reason core.TerminateReason) {
	if v.closed {
		return
	}
	v.closed = true
	if v.socket != nil {
		v.socket.Close()
	}
	v.component.Terminate(context.Background(), reason)
}

func (v *View) after(err error) error {
	if errors.Is(err, core.ErrNoChange) {
		v.skipped++
		return nil
	}
	if err != nil {
		return err
	}
	v.render()
	return nil
}

func (v *View) render() {
	v.t.Helper()
	r := v.component.Render(v.ctx)
	if r == nil {
		v.t.Fatalf("%s returned a nil renderer", v.component.Name())
	}
	var buf bytes.Buffer
	if err := r.Render(v.ctx, &buf); err != nil {
		v.t.Fatalf("render %s: %v", v.component.Name(), err)
	}
	v.html = buf.String()
	v.renders++
}

// HTML returns the latest render.
func (v *View) HTML() string { return v.html }

// Renders counts renders, including the initial one.
func (v *View) Renders() int { return v.renders }

// Skipped counts handler calls that returned core.ErrNoChange.
func (v *View) Skipped() int { return v.skipped }

// Socket returns the in-memory socket, or nil for Static views.
func (v *View) Socket() *core.Socket { return v.socket }

// Recorder returns the transport recording pushed messages.
func (v *View) Recorder() *Recorder { return v.recorder }

// Doc parses the latest render.
func (v *View) Doc() *goquery.Document {
	v.t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(v.html))
	if err != nil {
		v.t.Fatalf("parse html: %v", err)
	}
	return doc
}

// Find runs a CSS selector against the latest render.
func (v *View) Find(selector string) *goquery.Selection {
	return v.Doc().Find(selector)
}

// Text returns the trimmed text of the first match.
func (v *View) Text(selector string) string {
	return strings.TrimSpace(v.Find(selector).First().Text())
}

// Attr returns an attribute of the first match.
func (v *View) Attr(selector, name string) (string, bool) {
	return v.Find(selector).First().Attr(name)
}

// Count returns the number of matches.
func (v *View) Count(selector string) int {
	return v.Find(selector).Length()
}

// AssertHas fails unless selector matches.
func (v *View) AssertHas(selector string) *View {
	v.t.Helper()
	if v.Count(selector) == 0 {
		v.t.Errorf("no element matches %q", selector)
	}
	return v
}

// AssertMissing fails if selector matches.
func (v *View) AssertMissing(selector string) *View {
	v.t.Helper()
	if n := v.Count(selector); n > 0 {
		v.t.Errorf("%d elements match %q, want none", n, selector)
	}
	return v
}

// AssertText fails unless the first match has text want.
func (v *View) AssertText(selector, want string) *View {
	v.t.Helper()
	if got := v.Text(selector); got != want {
		v.t.Errorf("text of %q = %q, want %q", selector, got, want)
	}
	return v
}
