// Package submission owns the terminal-submit concurrency guard and the
// per-item submission bookkeeping for a proctored session.
package submission

import "sync/atomic"

// Gate is the one-shot latch in front of final submission. Timer expiry,
// the violation policy, and a manual click can all race to finish a
// session; exactly one of them may win.
type Gate struct {
	acquired atomic.Bool
}

// TryAcquire returns true for the first caller across the gate's lifetime
// and false for every later one, including concurrent callers.
func (g *Gate) TryAcquire() bool {
	return g.acquired.CompareAndSwap(false, true)
}

// Acquired reports whether the gate has been won.
func (g *Gate) Acquired() bool {
	return g.acquired.Load()
}
