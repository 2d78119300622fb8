// Package router serves live components over HTTP and WebSocket.
package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/gabrielmiguelok/pakheritage/pkg/core"
	"github.com/gabrielmiguelok/pakheritage/pkg/limits"
	"github.com/gabrielmiguelok/pakheritage/pkg/logging"
	"github.com/gabrielmiguelok/pakheritage/pkg/pool"
	"github.com/gabrielmiguelok/pakheritage/pkg/protocol"
	"github.com/gabrielmiguelok/pakheritage/pkg/transport"
)

// Common router errors.
var (
	ErrRouteNotFound  = errors.New("live route not found")
	ErrNilRenderer    = errors.New("component returned nil renderer")
	ErrNotJoined      = errors.New("channel not joined")
	ErrTooManySockets = errors.New("too many live connections")
)

// SocketPath is where the client opens its WebSocket. The page path is
// passed as the "path" query parameter.
const SocketPath = "/_live/websocket"

// Router handles HTTP routing and live connections.
type Router struct {
	mux          chi.Router
	routes       map[string]*LiveRoute
	sessions     *SessionManager
	sockets      *core.SocketManager
	codecs       *protocol.CodecRegistry
	config       core.Config
	logger       logging.Logger
	errorHandler ErrorHandler

	cancels map[string]context.CancelFunc
	loops   sync.WaitGroup
	mu      sync.RWMutex
}

// LiveRoute defines a route that renders a live component.
type LiveRoute struct {
	Path      string
	Component func() core.Component
	Meta      map[string]any
}

// RouteOption configures a LiveRoute.
type RouteOption func(*LiveRoute)

// WithMeta adds metadata to the route.
func WithMeta(key string, value any) RouteOption {
	return func(r *LiveRoute) {
		r.Meta[key] = value
	}
}

// ErrorHandler handles errors during request processing.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// New creates a router. The middleware runs after request id, real ip,
// request logging and panic recovery.
func New(cfg core.Config, logger logging.Logger, mws ...Middleware) *Router {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	codecs := protocol.NewCodecRegistry()
	if cfg.Codec != "" {
		if err := codecs.SetDefault(cfg.Codec); err != nil {
			logger.Warn("unknown codec, using default", logging.String("codec", cfg.Codec))
		}
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(logger), middleware.Recoverer)
	mux.Use(mws...)

	r := &Router{
		mux:      mux,
		routes:   make(map[string]*LiveRoute),
		sessions: NewSessionManager(),
		sockets:  core.NewSocketManager(),
		codecs:   codecs,
		config:   cfg,
		logger:   logger,
		cancels:  make(map[string]context.CancelFunc),
	}
	r.errorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
		logging.L(req.Context()).Error("render failed", logging.Err(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	mux.Get(SocketPath, r.handleSocketEndpoint)
	return r
}

// SetErrorHandler sets the error handler for HTTP renders.
func (r *Router) SetErrorHandler(handler ErrorHandler) {
	r.errorHandler = handler
}

// Sessions returns the live session manager.
func (r *Router) Sessions() *SessionManager {
	return r.sessions
}

// Sockets returns the socket manager.
func (r *Router) Sockets() *core.SocketManager {
	return r.sockets
}

// Live registers a live route. GET renders the component as HTML and a
// WebSocket upgrade on the same path starts a live session.
func (r *Router) Live(path string, component func() core.Component, opts ...RouteOption) {
	route := &LiveRoute{
		Path:      path,
		Component: component,
		Meta:      make(map[string]any),
	}
	for _, opt := range opts {
		opt(route)
	}

	r.mu.Lock()
	r.routes[path] = route
	r.mu.Unlock()

	r.mux.Get(path, r.handleLive(route))
}

// Route returns the live route registered for path.
func (r *Router) Route(path string) (*LiveRoute, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[path]
	return route, ok
}

// Routes returns the registered live paths.
func (r *Router) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	paths := make([]string, 0, len(r.routes))
	for p := range r.routes {
		paths = append(paths, p)
	}
	return paths
}

// Handle registers a standard HTTP handler.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// HandleFunc registers a standard HTTP handler function.
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.mux.HandleFunc(pattern, handler)
}

// NotFound sets the 404 handler.
func (r *Router) NotFound(handler http.HandlerFunc) {
	r.mux.NotFound(handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) handleLive(route *LiveRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if isWebSocketRequest(req) {
			r.serveSocket(w, req, route)
			return
		}
		r.renderHTTP(w, req, route)
	}
}

func (r *Router) handleSocketEndpoint(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}
	route, ok := r.Route(path)
	if !ok {
		http.Error(w, ErrRouteNotFound.Error(), http.StatusNotFound)
		return
	}
	r.serveSocket(w, req, route)
}

// RenderRoute mounts a fresh component for path and writes its HTML.
// It backs both HTTP requests and static export.
func (r *Router) RenderRoute(ctx context.Context, path string, params core.Params, w io.Writer) error {
	route, ok := r.Route(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}
	return r.render(ctx, route, params, w)
}

func (r *Router) render(ctx context.Context, route *LiveRoute, params core.Params, w io.Writer) error {
	comp := route.Component()
	ctx = core.WithParams(ctx, params)

	mountCtx, cancel := context.WithTimeout(ctx, r.config.Timeouts.ComponentMount)
	err := comp.Mount(mountCtx, params, core.Session{})
	cancel()
	if err != nil {
		return fmt.Errorf("mount %s: %w", comp.Name(), err)
	}
	defer comp.Terminate(ctx, core.TerminateNormal)

	renderer := comp.Render(ctx)
	if renderer == nil {
		return ErrNilRenderer
	}
	return renderer.Render(ctx, w)
}

func (r *Router) renderHTTP(w http.ResponseWriter, req *http.Request, route *LiveRoute) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := r.render(req.Context(), route, extractParams(req, route), buf); err != nil {
		r.errorHandler(w, req, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (r *Router) transportConfig() *transport.TransportConfig {
	cfg := transport.DefaultTransportConfig()
	t := r.config.Timeouts
	if t.WebSocketRead > 0 {
		cfg.ReadTimeout = t.WebSocketRead
	}
	if t.WebSocketWrite > 0 {
		cfg.WriteTimeout = t.WebSocketWrite
	}
	if t.WebSocketPing > 0 {
		cfg.PingInterval = t.WebSocketPing
	}
	if r.config.MaxMessageSize > 0 {
		cfg.MaxMessageSize = r.config.MaxMessageSize
	}
	return cfg
}

// serveSocket upgrades the request and starts the session message loop.
func (r *Router) serveSocket(w http.ResponseWriter, req *http.Request, route *LiveRoute) {
	log := logging.L(req.Context())

	if max := r.config.MaxConnections; max > 0 && r.sockets.Count() >= max {
		http.Error(w, ErrTooManySockets.Error(), http.StatusServiceUnavailable)
		return
	}

	codec := r.codecs.Negotiate(req.URL.Query().Get("vsn"))
	ws := transport.NewWebSocketTransport(r.transportConfig(), transport.WebSocketConfig{
		AllowedOrigins:  r.config.AllowedOrigins,
		InsecureDevMode: r.config.InsecureDevMode,
	}, codec)

	socketID := uuid.NewString()
	connLog := r.logger.With(logging.String("socket_id", socketID), logging.String("path", route.Path))
	ws.SetLogger(connLog)

	if err := ws.Upgrade(w, req); err != nil {
		log.Warn("websocket upgrade failed", logging.Err(err), logging.String("origin", req.Header.Get("Origin")))
		return
	}

	socket := core.NewSocket(socketID, socketTransport{ws})
	if err := r.sockets.Add(socket); err != nil {
		socket.Close()
		return
	}

	comp := route.Component()
	if sc, ok := comp.(interface{ SetSocket(*core.Socket) }); ok {
		sc.SetSocket(socket)
	}

	params := extractParams(req, route)
	session := NewLiveSession(socketID, route.Path, comp, params, core.Session{
		"request_id": middleware.GetReqID(req.Context()),
		"user_agent": req.UserAgent(),
	})
	session.Socket = socket
	session.Transport = ws
	session.release = limits.Detach(req.Context())
	r.sessions.Add(session)

	// The connection outlives the HTTP request, so the loop gets its own
	// context.
	ctx, cancel := context.WithCancel(context.Background())
	ctx = core.BuildContext(ctx, socket, session.Session, params)
	ctx = logging.ContextWithLogger(ctx, connLog)

	r.mu.Lock()
	r.cancels[session.ID] = cancel
	r.mu.Unlock()

	connLog.Debug("live session started", logging.String("codec", codec.Name()))

	r.loops.Add(1)
	go r.messageLoop(ctx, session)
}

// messageLoop is the single goroutine that touches the session component.
// It serialises client events and fired timers.
func (r *Router) messageLoop(ctx context.Context, session *LiveSession) {
	defer r.loops.Done()

	reason := core.TerminateClosed
	defer func() { r.teardown(session, reason) }()

	recv := session.Transport.Receive()
	done := session.Transport.Done()
	inbox := session.Socket.Scheduler().Inbox()

	for {
		select {
		case msg := <-recv:
			session.UpdateActivity()
			session.Socket.UpdateActivity()

			switch msg.Type {
			case protocol.MsgHeartbeat:
				r.sendReply(session, msg, nil)

			case protocol.MsgJoin:
				r.handleJoin(ctx, session, msg)

			case protocol.MsgLeave:
				r.sendReply(session, msg, nil)
				reason = core.TerminateNormal
				return

			default:
				if !session.IsMounted() {
					r.sendError(session, msg, ErrNotJoined)
					continue
				}
				r.handleEvent(ctx, session, msg)
			}

		case info := <-inbox:
			r.handleInfo(ctx, session, info)

		case <-done:
			return

		case <-ctx.Done():
			reason = core.TerminateShutdown
			return
		}
	}
}

func (r *Router) handleJoin(ctx context.Context, session *LiveSession, msg *protocol.Message) {
	joinRef := msg.JoinRef
	if joinRef == "" {
		joinRef = msg.Ref
	}
	session.SetJoinRef(joinRef)

	if !session.IsMounted() {
		mountCtx, cancel := context.WithTimeout(ctx, r.config.Timeouts.ComponentMount)
		err := session.Component.Mount(mountCtx, session.Params, session.Session)
		cancel()
		if err != nil {
			logging.L(ctx).Error("mount failed", logging.Err(err))
			r.sendError(session, msg, err)
			return
		}
		session.SetMounted(true)
	}

	html, err := renderComponent(ctx, session.Component)
	if err != nil {
		r.sendError(session, msg, err)
		return
	}
	seedSlotHashes(session, html)

	r.sendReply(session, msg, map[string]any{
		"rendered": map[string]any{"s": []string{html}},
		"topic":    session.Topic,
	})
}

func (r *Router) handleEvent(ctx context.Context, session *LiveSession, msg *protocol.Message) {
	payload := msg.Payload
	if payload == nil {
		payload = make(map[string]any)
	}

	evCtx, cancel := context.WithTimeout(ctx, r.config.Timeouts.ComponentEvent)
	err := session.Component.HandleEvent(evCtx, msg.Event, payload)
	cancel()

	switch {
	case errors.Is(err, core.ErrNoChange):
		return
	case err != nil:
		logging.L(ctx).Warn("event failed", logging.String("event", msg.Event), logging.Err(err))
		r.sendError(session, msg, err)
		return
	}
	r.renderAndSendDiff(ctx, session)
}

func (r *Router) handleInfo(ctx context.Context, session *LiveSession, info any) {
	infoCtx, cancel := context.WithTimeout(ctx, r.config.Timeouts.ComponentEvent)
	err := session.Component.HandleInfo(infoCtx, info)
	cancel()

	switch {
	case errors.Is(err, core.ErrNoChange):
		return
	case err != nil:
		logging.L(ctx).Warn("info failed", logging.String("info", fmt.Sprintf("%T", info)), logging.Err(err))
		return
	}
	r.renderAndSendDiff(ctx, session)
}

// renderAndSendDiff renders the component and pushes only changed slots.
func (r *Router) renderAndSendDiff(ctx context.Context, session *LiveSession) {
	html, err := renderComponent(ctx, session.Component)
	if err != nil {
		logging.L(ctx).Error("render failed", logging.Err(err))
		return
	}

	payload := buildDiffPayload(session, html)
	if err := session.Socket.SendDiff(payload); err != nil {
		logging.L(ctx).Debug("diff not sent", logging.Err(err))
	}
}

func renderComponent(ctx context.Context, comp core.Component) (string, error) {
	renderer := comp.Render(ctx)
	if renderer == nil {
		return "", ErrNilRenderer
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := renderer.Render(ctx, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// teardown runs once per session: it stops the scheduler so no timer
// fires after Terminate, then terminates the component.
func (r *Router) teardown(session *LiveSession, reason core.TerminateReason) {
	if !r.sessions.Remove(session.ID) {
		return
	}

	r.mu.Lock()
	if cancel, ok := r.cancels[session.ID]; ok {
		cancel()
		delete(r.cancels, session.ID)
	}
	r.mu.Unlock()

	session.Socket.Close()
	r.sockets.Remove(session.SocketID)
	if session.release != nil {
		session.release()
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeouts.ComponentEvent)
	defer cancel()
	if err := session.Component.Terminate(ctx, reason); err != nil {
		r.logger.Warn("terminate failed", logging.String("socket_id", session.SocketID), logging.Err(err))
	}

	r.logger.Debug("live session ended",
		logging.String("socket_id", session.SocketID),
		logging.String("reason", reason.String()),
		logging.Duration("duration", time.Since(session.CreatedAt)),
	)
}

// Shutdown ends every live session with TerminateShutdown and waits for
// their loops to exit or ctx to expire.
func (r *Router) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	for _, cancel := range r.cancels {
		cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.loops.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return r.sockets.Shutdown(ctx)
}

func (r *Router) sendReply(session *LiveSession, msg *protocol.Message, response map[string]any) {
	reply := protocol.OkReply(msg.Ref, msg.Topic, response).WithJoinRef(session.JoinRef())
	if err := session.Transport.Send(reply); err != nil {
		r.logger.Debug("reply not sent", logging.String("socket_id", session.SocketID), logging.Err(err))
	}
}

func (r *Router) sendError(session *LiveSession, msg *protocol.Message, err error) {
	reply := protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()).WithJoinRef(session.JoinRef())
	if sendErr := session.Transport.Send(reply); sendErr != nil {
		r.logger.Debug("error reply not sent", logging.String("socket_id", session.SocketID), logging.Err(sendErr))
	}
}

// socketTransport lets core.Socket push through a transport.
type socketTransport struct {
	t transport.Transport
}

func (a socketTransport) Send(msg core.Message) error {
	return a.t.Send(&protocol.Message{
		Type:      protocol.TypeOf(msg.Event),
		Ref:       msg.Ref,
		Topic:     msg.Topic,
		Event:     msg.Event,
		Payload:   msg.Payload,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (a socketTransport) Close() error     { return a.t.Close() }
func (a socketTransport) IsConnected() bool { return a.t.IsConnected() }

// extractParams collects query parameters plus the route path.
func extractParams(req *http.Request, route *LiveRoute) core.Params {
	params := make(core.Params)
	for key, values := range req.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	delete(params, "vsn")
	params["route"] = route.Path
	return params
}

func isWebSocketRequest(req *http.Request) bool {
	return strings.EqualFold(req.Header.Get("Upgrade"), "websocket")
}
