package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireside/proctor-gateway/internal/apperr"
	"github.com/hireside/proctor-gateway/internal/model"
)

func TestManager_SingleActiveSession(t *testing.T) {
	api := &fakePlatform{itemSet: codingItemSet(1)}
	m := NewManager(api, zerolog.Nop())

	first, err := m.Open(context.Background(), codingConfig())
	require.NoError(t, err)

	_, err = m.Open(context.Background(), codingConfig())
	assert.ErrorIs(t, err, ErrSessionOpen)

	active, err := m.Active()
	require.NoError(t, err)
	assert.Same(t, first, active)

	// A terminated session frees the slot.
	first.Submit()
	waitForStatus(t, first, model.SessionStatusTerminated)

	second, err := m.Open(context.Background(), codingConfig())
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	second.Submit()
	waitForStatus(t, second, model.SessionStatusTerminated)
}

func TestManager_ActiveWithoutSession(t *testing.T) {
	m := NewManager(&fakePlatform{}, zerolog.Nop())

	_, err := m.Active()
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestManager_LoadFailureReleasesSlot(t *testing.T) {
	api := &fakePlatform{fetchErr: errors.New("platform down")}
	m := NewManager(api, zerolog.Nop())

	_, err := m.Open(context.Background(), codingConfig())
	require.Error(t, err)
	assert.True(t, apperr.IsSessionLoad(err))

	_, err = m.Active()
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// The slot is free for a retry once the platform recovers.
	api.mu.Lock()
	api.fetchErr = nil
	api.itemSet = codingItemSet(1)
	api.mu.Unlock()

	ctrl, err := m.Open(context.Background(), codingConfig())
	require.NoError(t, err)
	ctrl.Submit()
	waitForStatus(t, ctrl, model.SessionStatusTerminated)
}

func TestManager_CloseReleasesSlot(t *testing.T) {
	api := &fakePlatform{itemSet: codingItemSet(1)}
	m := NewManager(api, zerolog.Nop())

	ctrl, err := m.Open(context.Background(), codingConfig())
	require.NoError(t, err)

	// Close is rejected while the session runs.
	assert.Error(t, m.Close())

	ctrl.Submit()
	waitForStatus(t, ctrl, model.SessionStatusTerminated)
	require.NoError(t, m.Close())

	_, err = m.Active()
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Idempotent once the slot is empty.
	assert.NoError(t, m.Close())
}
