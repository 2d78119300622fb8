package shutdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_StageOrder(t *testing.T) {
	c := New(time.Second, nil)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	c.Add("logs", StageFlush, record("logs"))
	c.Add("sessions", StageLive, record("sessions"))
	c.Add("http", StageHTTP, record("http"))
	c.Add("timers", StageLive, record("timers"))

	require.NoError(t, c.Run())
	assert.Equal(t, []string{"http", "sessions", "timers", "logs"}, order)
}

func TestRun_OnceAndJoinedErrors(t *testing.T) {
	c := New(time.Second, nil)
	calls := 0
	c.Add("a", StageHTTP, func(context.Context) error { calls++; return errors.New("boom") })
	c.Closer("b", StageFlush, closerFunc(func() error { calls++; return nil }))

	err := c.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: boom")

	again := c.Run()
	assert.Equal(t, err, again)
	assert.Equal(t, 2, calls)

	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed after Run")
	}
}

func TestRun_Timeout(t *testing.T) {
	c := New(10*time.Millisecond, nil)
	c.Add("slow", StageHTTP, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	ran := false
	c.Add("late", StageFlush, func(context.Context) error { ran = true; return nil })

	err := c.Run()
	assert.ErrorIs(t, err, ErrShutdownTimeout)
	assert.False(t, ran)
}

func TestWait_ContextCancel(t *testing.T) {
	c := New(time.Second, nil)
	ran := make(chan struct{})
	c.Add("http", StageHTTP, func(context.Context) error { close(ran); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Wait(ctx) }()

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return")
	}
	<-ran
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
