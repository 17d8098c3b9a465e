// Package violation turns raw environment signals (tab switches, fullscreen
// exits, forbidden key combinations) into normalized violation events and
// maps running counts onto the escalation policy.
package violation

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hireside/proctor-gateway/internal/model"
)

// SignalSource is one producer of raw environment signals. Subscribe
// registers a handler and returns a cancel func that stops delivery.
// Sources must not hold internal locks while invoking the handler, so that
// the handler may detach the monitor reentrantly.
type SignalSource interface {
	Subscribe(handler func(model.ViolationKind)) (cancel func())
}

// Monitor normalizes signals from any number of sources into a single
// stream of ViolationEvents delivered to one registered callback.
//
// Near-simultaneous signals are NOT deduplicated: exiting fullscreen often
// also fires a focus-loss signal, and both count. Known limitation carried
// over from the product's proctoring rules.
type Monitor struct {
	handler  func(model.ViolationEvent)
	detached atomic.Bool

	mu      sync.Mutex
	cancels []func()
}

// NewMonitor creates a Monitor delivering events to handler.
func NewMonitor(handler func(model.ViolationEvent)) *Monitor {
	if handler == nil {
		handler = func(model.ViolationEvent) {}
	}
	return &Monitor{handler: handler}
}

// Attach subscribes the monitor to the given sources. May be called more
// than once to add sources; a detached monitor ignores further attaches.
// The returned cancel unsubscribes just these sources, so a short-lived
// source (one WebSocket connection) does not stay registered for the
// monitor's whole lifetime.
func (m *Monitor) Attach(sources ...SignalSource) (cancel func()) {
	if m.detached.Load() {
		return func() {}
	}
	m.mu.Lock()
	added := make([]func(), 0, len(sources))
	for _, src := range sources {
		c := src.Subscribe(m.dispatch)
		m.cancels = append(m.cancels, c)
		added = append(added, c)
	}
	m.mu.Unlock()

	return func() {
		for _, c := range added {
			c()
		}
	}
}

// Detach stops all listening. Idempotent, and safe to call from within the
// event handler itself: the detached flag is flipped before any lock is
// taken, so the in-flight event completes and no new one starts.
func (m *Monitor) Detach() {
	if !m.detached.CompareAndSwap(false, true) {
		return
	}
	m.mu.Lock()
	cancels := m.cancels
	m.cancels = nil
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// dispatch normalizes one raw signal and hands it to the handler. Unknown
// kinds are dropped at the boundary; the policy layer never sees them.
func (m *Monitor) dispatch(kind model.ViolationKind) {
	if m.detached.Load() || !model.ValidKind(kind) {
		return
	}
	m.handler(model.ViolationEvent{
		Kind:       kind,
		OccurredAt: time.Now(),
	})
}
