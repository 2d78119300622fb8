// Package shutdown runs ordered cleanup when the server is asked to stop.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/gabrielmiguelok/pakheritage/pkg/logging"
)

// ErrShutdownTimeout is joined into the result when the deadline passes
// before every hook ran.
var ErrShutdownTimeout = errors.New("shutdown timed out")

// Stage orders hooks. Lower stages run first.
type Stage int

const (
	// StageHTTP stops accepting requests.
	StageHTTP Stage = 100
	// StageLive ends live sessions and their timers.
	StageLive Stage = 200
	// StageFlush syncs logs and other buffered output.
	StageFlush Stage = 900
)

// Hook is one cleanup step.
type Hook struct {
	Name  string
	Stage Stage
	Fn    func(ctx context.Context) error
}

// Coordinator collects hooks and runs them once.
type Coordinator struct {
	timeout time.Duration
	logger  logging.Logger

	hooks []Hook
	once  sync.Once
	done  chan struct{}
	err   error
	mu    sync.Mutex
}

// New creates a coordinator whose hooks share one deadline.
func New(timeout time.Duration, logger logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Coordinator{
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Add registers a hook.
func (c *Coordinator) Add(name string, stage Stage, fn func(ctx context.Context) error) {
	c.mu.Lock()
	c.hooks = append(c.hooks, Hook{Name: name, Stage: stage, Fn: fn})
	c.mu.Unlock()
}

// Closer registers anything with a Close method.
func (c *Coordinator) Closer(name string, stage Stage, closer interface{ Close() error }) {
	c.Add(name, stage, func(context.Context) error { return closer.Close() })
}

// Wait blocks until ctx ends or SIGINT/SIGTERM arrives, then runs the
// hooks.
func (c *Coordinator) Wait(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		c.logger.Info("shutdown requested")
	case <-c.done:
	}
	return c.Run()
}

// Run executes the hooks in stage order. Later calls return the first
// result.
func (c *Coordinator) Run() error {
	c.once.Do(func() {
		c.err = c.run()
		close(c.done)
	})
	<-c.done
	return c.err
}

func (c *Coordinator) run() error {
	c.mu.Lock()
	hooks := append([]Hook(nil), c.hooks...)
	c.mu.Unlock()

	sort.SliceStable(hooks, func(i, j int) bool { return hooks[i].Stage < hooks[j].Stage })

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var errs []error
	for _, h := range hooks {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%w before %s", ErrShutdownTimeout, h.Name))
			break
		}

		start := time.Now()
		err := h.Fn(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.Name, err))
			c.logger.Warn("shutdown hook failed", logging.String("hook", h.Name), logging.Err(err))
			continue
		}
		c.logger.Debug("shutdown hook done",
			logging.String("hook", h.Name),
			logging.Duration("took", time.Since(start)),
		)
	}
	return errors.Join(errs...)
}

// Done is closed after the hooks have run.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}
