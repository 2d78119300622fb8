package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// MockTransport implements Transport for testing.
type MockTransport struct {
	connected bool
	messages  []Message
	failNext  error
	mu        sync.Mutex
}

func NewMockTransport() *MockTransport {
	return &MockTransport{connected: true}
}

func (m *MockTransport) Send(msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrSocketClosed
	}
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockTransport) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Message, len(m.messages))
	copy(result, m.messages)
	return result
}

func TestNewSocket(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())
	defer socket.Close()

	if socket.ID() != "test-id" {
		t.Errorf("expected ID 'test-id', got '%s'", socket.ID())
	}
	if socket.Topic() != "lv:test-id" {
		t.Errorf("unexpected topic %q", socket.Topic())
	}
	if !socket.IsConnected() {
		t.Error("expected socket to be connected")
	}
	if socket.Scheduler() == nil {
		t.Error("expected scheduler to be initialized")
	}
}

func TestSocket_Send(t *testing.T) {
	transport := NewMockTransport()
	socket := NewSocket("test-id", transport)
	defer socket.Close()

	if err := socket.Push("test-event", map[string]any{"key": "value"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	messages := transport.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Event != "test-event" || messages[0].Topic != "lv:test-id" {
		t.Errorf("unexpected message %+v", messages[0])
	}
}

func TestSocket_Send_Closed(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())
	socket.Close()

	if err := socket.Send(Message{Event: "test"}); err != ErrSocketClosed {
		t.Errorf("expected ErrSocketClosed, got %v", err)
	}
}

func TestSocket_Send_TransportError(t *testing.T) {
	transport := NewMockTransport()
	transport.failNext = errors.New("broken pipe")
	socket := NewSocket("test-id", transport)
	defer socket.Close()

	err := socket.Send(Message{Event: "test"})
	if !errors.Is(err, ErrSendFailed) {
		t.Errorf("expected ErrSendFailed, got %v", err)
	}
}

func TestSocket_Send_Concurrent(t *testing.T) {
	transport := NewMockTransport()
	socket := NewSocket("test-id", transport)
	defer socket.Close()

	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				socket.Push("tick", nil)
			}
		}()
	}
	wg.Wait()

	if got := len(transport.Messages()); got != goroutines*perGoroutine {
		t.Errorf("expected %d messages, got %d", goroutines*perGoroutine, got)
	}
}

func TestSocket_LastActivity(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())
	defer socket.Close()

	before := socket.LastActivity()
	time.Sleep(2 * time.Millisecond)
	socket.UpdateActivity()

	if !socket.LastActivity().After(before) {
		t.Error("expected last activity to advance")
	}
}

func TestSocket_SendDiff(t *testing.T) {
	transport := NewMockTransport()
	socket := NewSocket("test-id", transport)
	defer socket.Close()

	if err := socket.SendDiff(nil); err != nil {
		t.Fatalf("nil diff: %v", err)
	}
	if err := socket.SendDiff(&DiffPayload{Version: 1}); err != nil {
		t.Fatalf("empty diff: %v", err)
	}
	if len(transport.Messages()) != 0 {
		t.Fatal("empty diffs must not be sent")
	}

	err := socket.SendDiff(&DiffPayload{Version: 2, Slots: map[string]string{"0": "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	msgs := transport.Messages()
	if len(msgs) != 1 || msgs[0].Event != "diff" {
		t.Fatalf("expected one diff message, got %+v", msgs)
	}
	if msgs[0].Payload["v"] != uint64(2) {
		t.Errorf("expected version 2, got %v", msgs[0].Payload["v"])
	}
}

func TestDiffPayload_Size(t *testing.T) {
	d := &DiffPayload{
		Slots:     map[string]string{"a": "123"},
		HTMLSlots: map[string]string{"b": "<b>"},
		Full:      "xx",
	}
	if d.Size() != 8 {
		t.Errorf("expected size 8, got %d", d.Size())
	}
	if d.IsEmpty() {
		t.Error("expected non-empty payload")
	}
}

func TestSocket_CloseStopsScheduler(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())

	if _, err := socket.Scheduler().SendAfter(time.Hour, "late"); err != nil {
		t.Fatal(err)
	}
	socket.Close()

	if socket.Scheduler().Pending() != 0 {
		t.Error("expected no pending tasks after close")
	}
	if _, err := socket.Scheduler().SendAfter(time.Millisecond, "x"); err != ErrSchedulerStopped {
		t.Errorf("expected ErrSchedulerStopped, got %v", err)
	}
}

func TestSocketManager_Add_Remove(t *testing.T) {
	sm := NewSocketManager()
	s1 := NewSocket("s1", NewMockTransport())
	s2 := NewSocket("s2", NewMockTransport())

	sm.Add(s1)
	sm.Add(s2)
	if sm.Count() != 2 {
		t.Fatalf("expected 2 sockets, got %d", sm.Count())
	}

	if got, ok := sm.Get("s1"); !ok || got != s1 {
		t.Error("expected to find s1")
	}

	sm.Remove("s1")
	if sm.Count() != 1 || len(sm.All()) != 1 {
		t.Errorf("expected 1 socket after removal, got %d", sm.Count())
	}
	s1.Close()
	s2.Close()
}

func TestSocketManager_Shutdown(t *testing.T) {
	sm := NewSocketManager()
	transports := []*MockTransport{NewMockTransport(), NewMockTransport()}
	for i, tr := range transports {
		s := NewSocket(string(rune('a'+i)), tr)
		s.Scheduler().SendAfter(time.Hour, "never")
		sm.Add(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sm.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	for _, tr := range transports {
		if tr.IsConnected() {
			t.Error("expected transport to be closed")
		}
	}
	if err := sm.Add(NewSocket("late", NewMockTransport())); err != ErrSocketClosed {
		t.Errorf("expected ErrSocketClosed after shutdown, got %v", err)
	}
	if !sm.IsShutdown() {
		t.Error("expected IsShutdown")
	}
}

func BenchmarkSocket_Send(b *testing.B) {
	socket := NewSocket("bench", NewMockTransport())
	defer socket.Close()
	msg := Message{Event: "bench"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		socket.Send(msg)
	}
}
