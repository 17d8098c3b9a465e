package violation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireside/proctor-gateway/internal/model"
)

// fakeSource is a hand-driven signal source for tests.
type fakeSource struct {
	mu       sync.Mutex
	handlers []func(model.ViolationKind)
	cancels  int
}

func (s *fakeSource) Subscribe(handler func(model.ViolationKind)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.handlers)
	s.handlers = append(s.handlers, handler)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.handlers[idx] == nil {
			return
		}
		s.handlers[idx] = nil
		s.cancels++
	}
}

func (s *fakeSource) emit(kind model.ViolationKind) {
	s.mu.Lock()
	handlers := append([]func(model.ViolationKind){}, s.handlers...)
	s.mu.Unlock()
	for _, h := range handlers {
		if h != nil {
			h(kind)
		}
	}
}

func TestMonitor_NormalizesSignals(t *testing.T) {
	var events []model.ViolationEvent
	m := NewMonitor(func(evt model.ViolationEvent) {
		events = append(events, evt)
	})

	src := &fakeSource{}
	m.Attach(src)

	src.emit(model.ViolationVisibilityLost)
	src.emit(model.ViolationFullscreenExited)

	require.Len(t, events, 2)
	assert.Equal(t, model.ViolationVisibilityLost, events[0].Kind)
	assert.Equal(t, model.ViolationFullscreenExited, events[1].Kind)
	assert.False(t, events[0].OccurredAt.IsZero())
}

func TestMonitor_DropsUnknownKinds(t *testing.T) {
	calls := 0
	m := NewMonitor(func(model.ViolationEvent) { calls++ })

	src := &fakeSource{}
	m.Attach(src)
	src.emit(model.ViolationKind("telepathy"))

	assert.Zero(t, calls)
}

func TestMonitor_NoCoalescing(t *testing.T) {
	// Exiting fullscreen typically also drops focus; both signals count.
	calls := 0
	m := NewMonitor(func(model.ViolationEvent) { calls++ })

	src := &fakeSource{}
	m.Attach(src)
	src.emit(model.ViolationFullscreenExited)
	src.emit(model.ViolationFocusLost)

	assert.Equal(t, 2, calls)
}

func TestMonitor_DetachStopsDelivery(t *testing.T) {
	calls := 0
	m := NewMonitor(func(model.ViolationEvent) { calls++ })

	src := &fakeSource{}
	m.Attach(src)
	src.emit(model.ViolationFocusLost)
	m.Detach()
	src.emit(model.ViolationFocusLost)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, src.cancels)
}

func TestMonitor_DetachFromHandlerIsSafe(t *testing.T) {
	// Teardown triggered by the violation handler itself must neither
	// deadlock nor drop the in-flight event.
	var m *Monitor
	calls := 0
	m = NewMonitor(func(model.ViolationEvent) {
		calls++
		m.Detach()
	})

	src := &fakeSource{}
	m.Attach(src)
	src.emit(model.ViolationForbiddenInput)
	src.emit(model.ViolationForbiddenInput)

	assert.Equal(t, 1, calls, "in-flight event counted, later ones dropped")
}

func TestMonitor_AttachCancelUnsubscribesOnlyThoseSources(t *testing.T) {
	// A per-connection source unsubscribes when its connection closes; the
	// monitor keeps listening to everything attached earlier.
	calls := 0
	m := NewMonitor(func(model.ViolationEvent) { calls++ })

	persistent := &fakeSource{}
	m.Attach(persistent)
	transient := &fakeSource{}
	cancel := m.Attach(transient)

	transient.emit(model.ViolationFocusLost)
	cancel()
	transient.emit(model.ViolationFocusLost)
	persistent.emit(model.ViolationFocusLost)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, transient.cancels)
	assert.Zero(t, persistent.cancels)

	// Detach still tears down the rest; the cancelled subscription is not
	// cancelled twice.
	m.Detach()
	assert.Equal(t, 1, persistent.cancels)
	assert.Equal(t, 1, transient.cancels)
}

func TestMonitor_DetachIsIdempotent(t *testing.T) {
	m := NewMonitor(nil)
	src := &fakeSource{}
	m.Attach(src)

	m.Detach()
	m.Detach()

	assert.Equal(t, 1, src.cancels)
}

func TestMonitor_AttachAfterDetachIsIgnored(t *testing.T) {
	calls := 0
	m := NewMonitor(func(model.ViolationEvent) { calls++ })
	m.Detach()

	src := &fakeSource{}
	m.Attach(src)
	src.emit(model.ViolationFocusLost)

	assert.Zero(t, calls)
	assert.Empty(t, src.handlers)
}
