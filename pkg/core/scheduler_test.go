package core

import (
	"context"
	"testing"
	"time"
)

func TestScheduler_SendAfter(t *testing.T) {
	s := NewScheduler(context.Background(), 1)
	defer s.Stop()

	ref, err := s.SendAfter(5*time.Millisecond, "reset")
	if err != nil {
		t.Fatal(err)
	}
	if ref == 0 {
		t.Error("expected non-zero ref")
	}

	select {
	case msg := <-s.Inbox():
		if msg != "reset" {
			t.Errorf("unexpected message %v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("message was not delivered")
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler(context.Background(), 1)
	defer s.Stop()

	ref, _ := s.SendAfter(20*time.Millisecond, "cancelled")
	if !s.Cancel(ref) {
		t.Fatal("expected pending task")
	}
	if s.Cancel(ref) {
		t.Error("second cancel should report false")
	}

	select {
	case msg := <-s.Inbox():
		t.Fatalf("cancelled task delivered %v", msg)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestScheduler_StopDropsPending(t *testing.T) {
	s := NewScheduler(context.Background(), 4)

	for i := 0; i < 3; i++ {
		s.SendAfter(10*time.Millisecond, i)
	}
	if s.Pending() != 3 {
		t.Fatalf("expected 3 pending, got %d", s.Pending())
	}

	s.Stop()
	s.Stop()

	select {
	case <-s.Done():
	default:
		t.Fatal("expected Done to be closed")
	}

	time.Sleep(30 * time.Millisecond)
	select {
	case msg := <-s.Inbox():
		t.Fatalf("stopped scheduler delivered %v", msg)
	default:
	}
}

func TestScheduler_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(ctx, 0)
	cancel()

	if _, err := s.SendAfter(time.Millisecond, "x"); err != ErrSchedulerStopped {
		t.Errorf("expected ErrSchedulerStopped, got %v", err)
	}
	s.Stop()
}

func TestScheduler_UnbufferedBlocksUntilRead(t *testing.T) {
	s := NewScheduler(context.Background(), 0)

	s.SendAfter(time.Millisecond, "first")
	time.Sleep(10 * time.Millisecond)

	if s.Pending() != 1 {
		t.Errorf("fired task should stay pending until read, got %d", s.Pending())
	}

	// Stop must not hang on a task blocked on the inbox.
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked")
	}
}

func TestBaseComponent_SendAfterWithoutSocket(t *testing.T) {
	var bc BaseComponent
	if _, err := bc.SendAfter(time.Millisecond, "x"); err != ErrSocketClosed {
		t.Errorf("expected ErrSocketClosed, got %v", err)
	}
	if bc.CancelTask(1) {
		t.Error("expected CancelTask to report false")
	}
}

func TestBaseComponent_SendAfter(t *testing.T) {
	socket := NewSocket("sched", NewMockTransport())
	defer socket.Close()

	var bc BaseComponent
	bc.SetSocket(socket)

	ref, err := bc.SendAfter(time.Hour, "x")
	if err != nil {
		t.Fatal(err)
	}
	if !bc.CancelTask(ref) {
		t.Error("expected task to be cancelled")
	}
}
