// Package refresh drives the periodic re-fetch of quicklook datasets. The
// server registers listeners that pull fresh light curves into the catalog;
// the controller only owns the cadence.
package refresh

import (
	"context"
	"sync"
	"time"
)

// Listener is invoked on every refresh tick with the tick's wall-clock time.
type Listener func(ctx context.Context, now time.Time)

// Controller emits ticks at a fixed interval until its context is cancelled.
type Controller struct {
	Interval time.Duration

	mu        sync.Mutex
	listeners []Listener
	lastTick  time.Time
}

// NewController constructs a controller with the given tick interval.
func NewController(interval time.Duration) *Controller {
	return &Controller{Interval: interval}
}

// AddListener registers a callback invoked on every tick, including the
// immediate tick Run fires on startup.
func (c *Controller) AddListener(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// LastTick returns the time of the most recent tick, zero before the first.
func (c *Controller) LastTick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTick
}

// Run starts ticking in a separate goroutine and returns a channel that is
// closed when the controller stops. An immediate tick fires before the first
// interval elapses so the catalog is populated on startup rather than one
// interval later.
func (c *Controller) Run(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		c.tick(ctx, time.Now())

		ticker := time.NewTicker(c.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c.tick(ctx, now)
			}
		}
	}()
	return done
}

func (c *Controller) tick(ctx context.Context, now time.Time) {
	c.mu.Lock()
	c.lastTick = now
	listeners := append([]Listener{}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, now)
	}
}
