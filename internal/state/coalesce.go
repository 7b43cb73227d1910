package state

import (
	"context"
	"sync"
	"time"

	"github.com/five82/ghdeck/internal/clock"
)

// DefaultRenderWindow is how long a requested render waits for more requests to
// join it.
const DefaultRenderWindow = 200 * time.Millisecond

// Coalescer runs fn at most once at a time and folds bursts of Trigger calls
// into a single trailing run. fn always observes the latest state because it
// reads that state when it runs, not when it was requested.
type Coalescer struct {
	clock  clock.Clock
	window time.Duration
	fn     func(context.Context)

	execMu sync.Mutex // held for the duration of fn

	mu      sync.Mutex
	pending bool
	running bool
	timer   *clock.Timer
}

// NewCoalescer returns a Coalescer with the given window. A non-positive
// window uses DefaultRenderWindow.
func NewCoalescer(clk clock.Clock, window time.Duration, fn func(context.Context)) *Coalescer {
	if clk == nil {
		clk = clock.Real()
	}
	if window <= 0 {
		window = DefaultRenderWindow
	}
	return &Coalescer{clock: clk, window: window, fn: fn}
}

// Trigger requests a run. If one is already pending, this call joins it. If a
// run is in progress, one more run follows it.
func (c *Coalescer) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return
	}
	c.pending = true
	if c.running {
		return
	}
	c.timer = c.clock.AfterFunc(c.window, c.fire)
}

// Run executes fn now, waiting for any run in progress to finish first. It
// satisfies every Trigger made before it starts.
func (c *Coalescer) Run(ctx context.Context) {
	c.execMu.Lock()
	defer c.execMu.Unlock()
	c.runLocked(ctx)
}

// runLocked runs fn. The caller holds execMu.
func (c *Coalescer) runLocked(ctx context.Context) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = false
	c.running = true
	c.mu.Unlock()

	c.fn(ctx)

	c.mu.Lock()
	c.running = false
	if c.pending && c.timer == nil {
		c.timer = c.clock.AfterFunc(c.window, c.fire)
	}
	c.mu.Unlock()
}

// Pending reports whether a run has been requested but not started.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// fire is the timer callback. A timer that fired just as a Run absorbed its
// request finds nothing pending and does nothing.
func (c *Coalescer) fire() {
	c.execMu.Lock()
	defer c.execMu.Unlock()

	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()
	if !pending {
		return
	}
	c.runLocked(context.Background())
}
