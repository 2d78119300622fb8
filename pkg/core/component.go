// Package core provides the fundamental abstractions for live page components.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNoChange may be returned from HandleEvent or HandleInfo when the
// component state did not change in a way that affects rendering.
// The router skips the render pass and sends no error reply.
var ErrNoChange = errors.New("no render needed")

// Component is the interface that all live components must implement.
// Components are stateful server-side entities that live for one
// browser connection and render HTML that is diffed by data-slot.
type Component interface {
	// Name returns the unique identifier for this component type.
	Name() string

	// Mount is called when the component is first connected.
	// It receives the connection parameters and session data.
	Mount(ctx context.Context, params Params, session Session) error

	// Render returns the current HTML representation of the component.
	// This is called after Mount and after each event that modifies state.
	Render(ctx context.Context) Renderer

	// HandleEvent processes user interactions (clicks, form submissions, etc.).
	HandleEvent(ctx context.Context, event string, payload map[string]any) error

	// HandleInfo processes internal messages, typically timers scheduled
	// with SendAfter.
	HandleInfo(ctx context.Context, msg any) error

	// Terminate is called when the component is being destroyed.
	Terminate(ctx context.Context, reason TerminateReason) error
}

// Renderer is the interface for rendering HTML content.
type Renderer interface {
	Render(ctx context.Context, w io.Writer) error
}

// RendererFunc is an adapter to allow ordinary functions to be used as Renderers.
type RendererFunc func(ctx context.Context, w io.Writer) error

func (f RendererFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

// StringRenderer renders a fixed string.
type StringRenderer string

func (s StringRenderer) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, string(s))
	return err
}

// Params contains URL parameters and query strings from the connection.
type Params map[string]string

// Get returns a parameter value or empty string if not found.
func (p Params) Get(key string) string {
	return p[key]
}

// GetDefault returns a parameter value or the default if not found.
func (p Params) GetDefault(key, defaultValue string) string {
	if v, ok := p[key]; ok && v != "" {
		return v
	}
	return defaultValue
}

// Session contains request scoped data passed from the HTTP handler.
type Session map[string]any

// GetString returns a session value as string.
func (s Session) GetString(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// TerminateReason indicates why a component is being terminated.
type TerminateReason int

const (
	// TerminateNormal indicates the client left the channel.
	TerminateNormal TerminateReason = iota
	// TerminateShutdown indicates server shutdown.
	TerminateShutdown
	// TerminateClosed indicates the transport went away.
	TerminateClosed
	// TerminateError indicates termination due to an error.
	TerminateError
)

func (r TerminateReason) String() string {
	switch r {
	case TerminateNormal:
		return "normal"
	case TerminateShutdown:
		return "shutdown"
	case TerminateClosed:
		return "closed"
	case TerminateError:
		return "error"
	default:
		return "unknown"
	}
}

// BaseComponent provides default implementations for Component methods.
// Embed this in your components to avoid implementing unused methods.
type BaseComponent struct {
	socket  *Socket
	assigns *Assigns
}

// SetSocket sets the socket for the component (called by the framework).
func (bc *BaseComponent) SetSocket(s *Socket) {
	bc.socket = s
}

// Socket returns the component's socket connection.
func (bc *BaseComponent) Socket() *Socket {
	return bc.socket
}

// Assigns returns the component's assigns store.
func (bc *BaseComponent) Assigns() *Assigns {
	if bc.assigns == nil {
		bc.assigns = NewAssigns()
	}
	return bc.assigns
}

// SendAfter delivers msg to HandleInfo once d has elapsed, unless the
// component is terminated first. Components rendered without a socket
// (plain HTTP renders) get ErrSocketClosed.
func (bc *BaseComponent) SendAfter(d time.Duration, msg any) (TaskRef, error) {
	if bc.socket == nil {
		return 0, ErrSocketClosed
	}
	return bc.socket.Scheduler().SendAfter(d, msg)
}

// CancelTask stops a pending SendAfter. It reports whether the task was
// still pending.
func (bc *BaseComponent) CancelTask(ref TaskRef) bool {
	if bc.socket == nil || ref == 0 {
		return false
	}
	return bc.socket.Scheduler().Cancel(ref)
}

// Name returns an empty string (override in your component).
func (bc *BaseComponent) Name() string {
	return ""
}

// Mount does nothing by default.
func (bc *BaseComponent) Mount(ctx context.Context, params Params, session Session) error {
	return nil
}

// HandleEvent does nothing by default.
func (bc *BaseComponent) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	return nil
}

// HandleInfo does nothing by default.
func (bc *BaseComponent) HandleInfo(ctx context.Context, msg any) error {
	return nil
}

// Terminate does nothing by default.
func (bc *BaseComponent) Terminate(ctx context.Context, reason TerminateReason) error {
	return nil
}
