package signal

import (
	"sync"

	"github.com/hireside/proctor-gateway/internal/model"
)

// Stream is an in-process fan-out of raw signal kinds. The WebSocket
// handler emits into it; the violation monitor subscribes to it. Handlers
// are invoked without any Stream lock held, so a handler may unsubscribe
// or detach its monitor reentrantly.
type Stream struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(model.ViolationKind)
}

// NewStream creates an empty Stream.
func NewStream() *Stream {
	return &Stream{handlers: make(map[int]func(model.ViolationKind))}
}

// Subscribe registers a handler and returns a cancel func. Satisfies
// violation.SignalSource.
func (s *Stream) Subscribe(handler func(model.ViolationKind)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

// Emit delivers one raw signal to every subscriber.
func (s *Stream) Emit(kind model.ViolationKind) {
	s.mu.Lock()
	handlers := make([]func(model.ViolationKind), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(kind)
	}
}
