package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hireside/proctor-gateway/internal/apperr"
	"github.com/hireside/proctor-gateway/internal/model"
	"github.com/hireside/proctor-gateway/internal/violation"
)

// ErrSessionOpen is returned when a second proctored session is opened
// while one is still running. Sessions never overlap: one candidate view,
// one active session.
var ErrSessionOpen = errors.New("a proctored session is already open")

// Manager holds the gateway's single active controller.
type Manager struct {
	api PlatformAPI
	log zerolog.Logger

	mu     sync.Mutex
	active *Controller
	opts   []Option
}

// NewManager creates a Manager. opts are applied to every controller it
// opens (presenter, screen lock, violation sink).
func NewManager(api PlatformAPI, log zerolog.Logger, opts ...Option) *Manager {
	return &Manager{api: api, log: log, opts: opts}
}

// Open creates and opens a controller for the given config. Fails with
// ErrSessionOpen if a previous session has not reached TERMINATED. A load
// failure releases the slot and surfaces the SessionLoadError.
func (m *Manager) Open(ctx context.Context, cfg Config, sources ...violation.SignalSource) (*Controller, error) {
	m.mu.Lock()
	if m.active != nil && m.active.Snapshot().Session.Status != model.SessionStatusTerminated {
		m.mu.Unlock()
		return nil, ErrSessionOpen
	}
	ctrl := NewController(cfg, m.api, m.log, m.opts...)
	m.active = ctrl
	m.mu.Unlock()

	if err := ctrl.Open(ctx, sources...); err != nil {
		m.mu.Lock()
		if m.active == ctrl {
			m.active = nil
		}
		m.mu.Unlock()
		_ = ctrl.Close()
		return nil, err
	}
	return ctrl, nil
}

// Active returns the current controller, or ErrNotFound when no session
// has been opened.
func (m *Manager) Active() (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil, apperr.ErrNotFound
	}
	return m.active, nil
}

// Close closes the active controller and releases the slot.
func (m *Manager) Close() error {
	m.mu.Lock()
	ctrl := m.active
	m.mu.Unlock()
	if ctrl == nil {
		return nil
	}
	if err := ctrl.Close(); err != nil {
		return err
	}
	m.mu.Lock()
	if m.active == ctrl {
		m.active = nil
	}
	m.mu.Unlock()
	return nil
}
