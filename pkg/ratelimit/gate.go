// Package ratelimit gates repeated actions to at most one per interval.
package ratelimit

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Gate opens once more than Interval has passed since it was last marked.
// Callers check Ready, act, then Mark; a held input therefore repeats once
// per interval instead of once per tick.
type Gate struct {
	interval time.Duration
	clock    clock.Clock

	mu   sync.Mutex
	last time.Time
}

// New creates a gate on clk. A nil clk uses the wall clock.
// The gate starts marked at the current time.
func New(interval time.Duration, clk clock.Clock) *Gate {
	if clk == nil {
		clk = clock.New()
	}
	return &Gate{interval: interval, clock: clk, last: clk.Now()}
}

// Interval returns the minimum time between marks.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Ready reports whether more than the interval has elapsed since the last mark.
func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clock.Since(g.last) > g.interval
}

// Mark records now as the time of the last change.
func (g *Gate) Mark() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = g.clock.Now()
}

// Reset clears the last mark so the gate is ready immediately.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = time.Time{}
}

// Allow marks the gate and returns true if it was ready.
func (g *Gate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock.Now()
	if now.Sub(g.last) <= g.interval {
		return false
	}
	g.last = now
	return true
}

// Last returns the time of the last mark.
func (g *Gate) Last() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
