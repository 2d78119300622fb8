package contact

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gabrielmiguelok/pakheritage/pkg/logging"
	"github.com/gabrielmiguelok/pakheritage/pkg/pool"
)

// ErrDeliveryFailed is returned by MockSubmitter when it simulates an
// outage.
var ErrDeliveryFailed = errors.New("message delivery failed")

// Submission is a delivered message.
type Submission struct {
	ID         string    `json:"id"`
	Fields     Fields    `json:"fields"`
	ReceivedAt time.Time `json:"received_at"`
}

// Submitter delivers a validated, sanitised contact message.
type Submitter interface {
	Submit(ctx context.Context, f Fields) (Submission, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, f Fields) (Submission, error)

func (fn SubmitterFunc) Submit(ctx context.Context, f Fields) (Submission, error) {
	return fn(ctx, f)
}

// MockSubmitter accepts messages without sending them anywhere. It keeps
// the most recent ones in memory and fails a configurable fraction.
type MockSubmitter struct {
	failureRate float64
	random      func() float64
	recent      *pool.Ring[Submission]
	logger      logging.Logger
	now         func() time.Time

	mu sync.Mutex
}

// MockOption configures a MockSubmitter.
type MockOption func(*MockSubmitter)

// WithFailureRate makes roughly rate of submissions fail, 0 to 1.
func WithFailureRate(rate float64) MockOption {
	return func(m *MockSubmitter) {
		switch {
		case rate < 0:
			rate = 0
		case rate > 1:
			rate = 1
		}
		m.failureRate = rate
	}
}

// WithRandom replaces the random source, for tests.
func WithRandom(fn func() float64) MockOption {
	return func(m *MockSubmitter) { m.random = fn }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) MockOption {
	return func(m *MockSubmitter) { m.logger = l }
}

// WithHistory sets how many submissions are remembered.
func WithHistory(n int) MockOption {
	return func(m *MockSubmitter) { m.recent = pool.NewRing[Submission](n) }
}

// NewMockSubmitter creates a submitter that never fails unless configured.
func NewMockSubmitter(opts ...MockOption) *MockSubmitter {
	m := &MockSubmitter{
		random: rand.Float64,
		recent: pool.NewRing[Submission](50),
		logger: logging.NopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Submit records f, or fails with ErrDeliveryFailed.
func (m *MockSubmitter) Submit(ctx context.Context, f Fields) (Submission, error) {
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failureRate > 0 && m.random() < m.failureRate {
		m.logger.Warn("contact message rejected", logging.String("subject", f.Subject))
		return Submission{}, ErrDeliveryFailed
	}

	sub := Submission{
		ID:         uuid.NewString(),
		Fields:     f,
		ReceivedAt: m.now().UTC(),
	}
	m.recent.Push(sub)
	m.logger.Info("contact message received",
		logging.String("id", sub.ID),
		logging.String("email", f.Email),
		logging.String("subject", f.Subject),
		logging.Int("message_len", len(f.Message)),
	)
	return sub, nil
}

// Recent returns remembered submissions, oldest first.
func (m *MockSubmitter) Recent() []Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recent.Snapshot()
}
