package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSchedulerStopped is returned when a task is scheduled after Stop.
var ErrSchedulerStopped = errors.New("scheduler stopped")

// TaskRef identifies a scheduled task. The zero value is never issued.
type TaskRef uint64

// Scheduler runs delayed messages for a single socket. Every task is a
// goroutine bound to the scheduler's context, so Stop cancels timers that
// have not fired and guarantees nothing reaches the inbox afterwards.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan any

	tasks   map[TaskRef]context.CancelFunc
	next    TaskRef
	stopped bool
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewScheduler creates a scheduler whose lifetime is bounded by parent.
// buffer sizes the inbox; fired tasks block until the owner reads them.
func NewScheduler(parent context.Context, buffer int) *Scheduler {
	if buffer < 0 {
		buffer = 0
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		inbox:  make(chan any, buffer),
		tasks:  make(map[TaskRef]context.CancelFunc),
	}
}

// SendAfter queues msg for delivery on Inbox after d.
func (s *Scheduler) SendAfter(d time.Duration, msg any) (TaskRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.ctx.Err() != nil {
		return 0, ErrSchedulerStopped
	}

	s.next++
	ref := s.next
	taskCtx, cancel := context.WithCancel(s.ctx)
	s.tasks[ref] = cancel
	s.wg.Add(1)

	go s.run(taskCtx, ref, d, msg)
	return ref, nil
}

func (s *Scheduler) run(ctx context.Context, ref TaskRef, d time.Duration, msg any) {
	defer s.wg.Done()
	defer s.forget(ref)

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return
	}

	select {
	case s.inbox <- msg:
	case <-ctx.Done():
	}
}

func (s *Scheduler) forget(ref TaskRef) {
	s.mu.Lock()
	if cancel, ok := s.tasks[ref]; ok {
		cancel()
		delete(s.tasks, ref)
	}
	s.mu.Unlock()
}

// Cancel stops a pending task. It reports whether the task was pending.
func (s *Scheduler) Cancel(ref TaskRef) bool {
	s.mu.Lock()
	cancel, ok := s.tasks[ref]
	if ok {
		delete(s.tasks, ref)
	}
	s.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// Inbox returns the channel fired messages are delivered on.
func (s *Scheduler) Inbox() <-chan any {
	return s.inbox
}

// Done is closed once Stop has been called or the parent context ended.
func (s *Scheduler) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Pending returns the number of tasks that have not fired or been cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop cancels every pending task and waits for their goroutines to exit.
// It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
