// Package clock provides the cancellable countdown that drives a proctored
// assessment session. It emits one tick per second and a terminal expiry
// exactly once; Stop is idempotent and closes the race between an in-flight
// beat and cancellation.
package clock

import (
	"sync"
	"time"
)

// Option configures a Countdown.
type Option func(*Countdown)

// WithInterval overrides the beat interval. Tests use this to run the
// countdown at millisecond speed; production uses the 1s default.
func WithInterval(d time.Duration) Option {
	return func(c *Countdown) {
		c.interval = d
	}
}

// Countdown counts down from a seeded number of seconds. onTick receives the
// remaining seconds after every beat; onExpired fires exactly once when the
// count reaches zero. Neither callback fires after Stop returns — the stopped
// flag is re-checked under the mutex on every beat, because stopping the
// underlying ticker is not atomic with a beat already in flight.
type Countdown struct {
	mu        sync.Mutex
	interval  time.Duration
	remaining int
	running   bool
	stopped   bool
	done      chan struct{}

	onTick    func(remaining int)
	onExpired func()
}

// New creates a Countdown. Nil callbacks are replaced with no-ops.
func New(onTick func(int), onExpired func(), opts ...Option) *Countdown {
	c := &Countdown{
		interval:  time.Second,
		onTick:    onTick,
		onExpired: onExpired,
	}
	if c.onTick == nil {
		c.onTick = func(int) {}
	}
	if c.onExpired == nil {
		c.onExpired = func() {}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins the countdown from totalSeconds. Starting an already-started
// or stopped countdown is a no-op. Start(0) fires onExpired immediately with
// zero ticks.
func (c *Countdown) Start(totalSeconds int) {
	c.mu.Lock()
	if c.running || c.stopped {
		c.mu.Unlock()
		return
	}
	c.remaining = totalSeconds
	if totalSeconds <= 0 {
		c.stopped = true
		c.mu.Unlock()
		c.onExpired()
		return
	}
	c.running = true
	c.done = make(chan struct{})
	c.mu.Unlock()

	go c.run()
}

// Remaining returns the seconds left on the countdown.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stop cancels all future emissions. Safe to call multiple times, after
// expiry, and from within a tick callback.
func (c *Countdown) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	if c.running {
		c.running = false
		close(c.done)
	}
	c.mu.Unlock()
}

func (c *Countdown) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.stopped {
				// Stop raced with this beat; the ticker had already fired.
				c.mu.Unlock()
				return
			}
			c.remaining--
			rem := c.remaining
			c.mu.Unlock()

			c.onTick(rem)

			if rem <= 0 {
				// onTick may have called Stop; expiry must not fire after it.
				c.mu.Lock()
				if c.stopped {
					c.mu.Unlock()
					return
				}
				c.stopped = true
				c.running = false
				c.mu.Unlock()

				c.onExpired()
				return
			}
		}
	}
}
