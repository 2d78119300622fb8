package router

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gabrielmiguelok/pakheritage/pkg/core"
	"github.com/gabrielmiguelok/pakheritage/pkg/transport"
)

// LiveSession binds one mounted component to its socket and transport.
// Everything except the slot hashes is touched only by the session's
// message loop.
type LiveSession struct {
	ID        string
	SocketID  string
	Topic     string
	Path      string
	Component core.Component
	Socket    *core.Socket
	Transport transport.Transport
	Params    core.Params
	Session   core.Session
	CreatedAt time.Time

	joinRef      string
	mounted      bool
	version      uint64
	lastActivity time.Time

	slotHashes map[string]uint64
	mu         sync.RWMutex

	// release returns the per-address connection slot, if one was taken.
	release func()
}

// NewLiveSession creates a session for a freshly accepted socket.
func NewLiveSession(socketID, path string, comp core.Component, params core.Params, session core.Session) *LiveSession {
	now := time.Now()
	return &LiveSession{
		ID:           uuid.NewString(),
		SocketID:     socketID,
		Topic:        "lv:" + socketID,
		Path:         path,
		Component:    comp,
		Params:       params,
		Session:      session,
		CreatedAt:    now,
		lastActivity: now,
	}
}

// UpdateActivity records inbound traffic.
func (s *LiveSession) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// LastActivity returns the time of the last inbound message.
func (s *LiveSession) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// SetMounted marks the component as mounted.
func (s *LiveSession) SetMounted(mounted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = mounted
}

// IsMounted reports whether Mount has succeeded.
func (s *LiveSession) IsMounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted
}

// SetJoinRef stores the ref of the join message.
func (s *LiveSession) SetJoinRef(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joinRef = ref
}

// JoinRef returns the ref of the join message.
func (s *LiveSession) JoinRef() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.joinRef
}

// NextVersion increments and returns the diff version.
func (s *LiveSession) NextVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	return s.version
}

// SlotHashes returns the hashes of the last rendered slots.
func (s *LiveSession) SlotHashes() map[string]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slotHashes
}

// SetSlotHashes stores the hashes of the last rendered slots.
func (s *LiveSession) SetSlotHashes(hashes map[string]uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotHashes = hashes
}

// SessionManager tracks all active live sessions.
type SessionManager struct {
	sessions map[string]*LiveSession
	bySocket map[string]*LiveSession
	mu       sync.RWMutex
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*LiveSession),
		bySocket: make(map[string]*LiveSession),
	}
}

// Add registers a session.
func (m *SessionManager) Add(s *LiveSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	m.bySocket[s.SocketID] = s
}

// Get returns a session by ID.
func (m *SessionManager) Get(id string) (*LiveSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetBySocket returns a session by socket ID.
func (m *SessionManager) GetBySocket(socketID string) (*LiveSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.bySocket[socketID]
	return s, ok
}

// Remove unregisters a session. It reports whether the session was known,
// so concurrent teardown paths run cleanup once.
func (m *SessionManager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	delete(m.bySocket, s.SocketID)
	delete(m.sessions, id)
	return true
}

// Count returns the number of active sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// All returns a snapshot of every session.
func (m *SessionManager) All() []*LiveSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*LiveSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}
