package handler

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/hireside/proctor-gateway/internal/signal"
)

// Notifier pushes session events (warnings, terminal submit, lock release)
// to every connected presentation-layer WebSocket. It is the gateway's
// Presenter and ScreenLock: the shell renders the banner and exits
// fullscreen; the controller only decides that it should. Broadcasts come
// from session goroutines while the read loop replies on the same
// connections, so all writes go through signal.Conn's write lock.
type Notifier struct {
	log zerolog.Logger

	mu    sync.Mutex
	conns map[*signal.Conn]bool
}

// NewNotifier creates an empty Notifier.
func NewNotifier(log zerolog.Logger) *Notifier {
	return &Notifier{
		log:   log.With().Str("component", "notifier").Logger(),
		conns: make(map[*signal.Conn]bool),
	}
}

func (n *Notifier) add(conn *signal.Conn) {
	n.mu.Lock()
	n.conns[conn] = true
	n.mu.Unlock()
}

func (n *Notifier) remove(conn *signal.Conn) {
	n.mu.Lock()
	delete(n.conns, conn)
	n.mu.Unlock()
}

// OnWarning implements session.Presenter.
func (n *Notifier) OnWarning(violationCount, remainingWarnings int) {
	msg := "An integrity violation was recorded."
	if remainingWarnings > 0 {
		msg = "Leaving the test environment is not allowed. Further violations will submit your test automatically."
	}
	n.broadcast(signal.WarningResponse{
		Event:             signal.EventWarning,
		ViolationCount:    violationCount,
		RemainingWarnings: remainingWarnings,
		Message:           msg,
	})
}

// OnSubmitted implements session.Presenter.
func (n *Notifier) OnSubmitted() {
	n.broadcast(signal.SubmittedResponse{Event: signal.EventSubmitted})
}

// Release implements session.ScreenLock.
func (n *Notifier) Release() {
	n.broadcast(signal.ReleaseLockResponse{Event: signal.EventReleaseLock})
}

func (n *Notifier) broadcast(payload interface{}) {
	n.mu.Lock()
	conns := make([]*signal.Conn, 0, len(n.conns))
	for conn := range n.conns {
		conns = append(conns, conn)
	}
	n.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteTyped(payload); err != nil {
			n.log.Debug().Err(err).Msg("Dropping dead notifier connection")
			n.remove(conn)
		}
	}
}
