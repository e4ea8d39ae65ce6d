package teleop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ErrStopped is returned by WaitForStart when the period is stopped before it starts.
var ErrStopped = errors.New("period stopped before start")

// Lifecycle signals the start and end of the teleop period.
type Lifecycle interface {
	// WaitForStart blocks until the operator starts the period.
	WaitForStart(ctx context.Context) error
	// IsActive reports whether the period is still running. It is polled once per tick.
	IsActive() bool
}

// Period is a Lifecycle started and stopped by the operator, optionally
// ending on its own after a time limit.
type Period struct {
	clock clock.Clock
	limit time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	started   chan struct{}
	stopped   chan struct{}

	mu        sync.Mutex
	startedAt time.Time
}

// NewPeriod creates a period. A zero limit runs until Stop.
func NewPeriod(limit time.Duration, clk clock.Clock) *Period {
	if clk == nil {
		clk = clock.New()
	}
	return &Period{
		clock:   clk,
		limit:   limit,
		started: make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the period. Calls after the first are ignored.
func (p *Period) Start() {
	p.startOnce.Do(func() {
		p.mu.Lock()
		p.startedAt = p.clock.Now()
		p.mu.Unlock()
		close(p.started)
	})
}

// Stop ends the period.
func (p *Period) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopped)
	})
}

// WaitForStart blocks until Start, Stop or ctx is done.
func (p *Period) WaitForStart(ctx context.Context) error {
	select {
	case <-p.stopped:
		return ErrStopped
	default:
	}
	select {
	case <-p.started:
		return nil
	case <-p.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsActive reports whether the period has started and not yet ended.
func (p *Period) IsActive() bool {
	select {
	case <-p.stopped:
		return false
	default:
	}
	select {
	case <-p.started:
	default:
		return false
	}
	return p.limit <= 0 || p.Elapsed() < p.limit
}

// Started reports whether Start has been called.
func (p *Period) Started() bool {
	select {
	case <-p.started:
		return true
	default:
		return false
	}
}

// Elapsed returns the time since Start, or zero before it.
func (p *Period) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		return 0
	}
	return p.clock.Since(p.startedAt)
}

// Remaining returns the time left before the limit, or zero without a limit.
func (p *Period) Remaining() time.Duration {
	if p.limit <= 0 {
		return 0
	}
	return max(0, p.limit-p.Elapsed())
}
