package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireside/proctor-gateway/internal/apperr"
	"github.com/hireside/proctor-gateway/internal/model"
	"github.com/hireside/proctor-gateway/internal/signal"
	"github.com/hireside/proctor-gateway/internal/violation"
)

// fakePlatform is an in-memory stand-in for the hiring platform API.
type fakePlatform struct {
	mu          sync.Mutex
	itemSet     *model.ItemSet
	fetchErr    error
	submitCalls []uuid.UUID
	finalCalls  int
	finalErr    error
	submitErr   error
}

func (f *fakePlatform) FetchItems(context.Context, string, model.AssessmentMode) (*model.ItemSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.itemSet, nil
}

func (f *fakePlatform) SubmitItem(_ context.Context, _ string, itemID uuid.UUID, _ string) (*model.SubmissionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitCalls = append(f.submitCalls, itemID)
	return &model.SubmissionRecord{ItemID: itemID, Status: model.SubmissionStatusAccepted, SubmittedAt: time.Now()}, nil
}

func (f *fakePlatform) SubmitFinal(context.Context, string, []model.ItemAnswer) (*model.FinalResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalCalls++
	if f.finalErr != nil {
		return nil, f.finalErr
	}
	return &model.FinalResult{Score: 2, MaxScore: 3, Passed: true}, nil
}

func (f *fakePlatform) submitted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitCalls)
}

func (f *fakePlatform) finals() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finalCalls
}

// fakePresenter records the outbound notifications.
type fakePresenter struct {
	mu        sync.Mutex
	warnings  []int
	submitted atomic.Int32
	released  atomic.Int32
}

func (p *fakePresenter) OnWarning(_, remainingWarnings int) {
	p.mu.Lock()
	p.warnings = append(p.warnings, remainingWarnings)
	p.mu.Unlock()
}

func (p *fakePresenter) OnSubmitted() { p.submitted.Add(1) }
func (p *fakePresenter) Release()     { p.released.Add(1) }

func (p *fakePresenter) warningCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.warnings)
}

func codingItemSet(n int) *model.ItemSet {
	items := make([]model.Item, n)
	for i := range items {
		items[i] = model.Item{ID: uuid.New(), Ordinal: i}
	}
	return &model.ItemSet{Items: items, TimeLimitMinutes: 30}
}

func codingConfig() Config {
	return Config{
		JobID:         "job-1",
		ApplicationID: "app-1",
		Mode:          model.ModeCodingTest,
		Rules:         violation.Rules{Threshold: 2, Enforce: true},
		ClockInterval: time.Millisecond,
	}
}

func waitForStatus(t *testing.T, c *Controller, want model.SessionStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Snapshot().Session.Status == want
	}, 2*time.Second, time.Millisecond)
}

func TestController_OpenActivatesSession(t *testing.T) {
	api := &fakePlatform{itemSet: codingItemSet(2)}
	c := NewController(codingConfig(), api, zerolog.Nop())

	require.NoError(t, c.Open(context.Background()))
	defer c.clock.Stop()

	snap := c.Snapshot()
	assert.Equal(t, model.SessionStatusActive, snap.Session.Status)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 30*60, snap.Session.TimeRemainingSeconds)
}

func TestController_OpenFetchFailureIsFatal(t *testing.T) {
	api := &fakePlatform{fetchErr: errors.New("platform down")}
	c := NewController(codingConfig(), api, zerolog.Nop())

	err := c.Open(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsSessionLoad(err))
	assert.Equal(t, model.SessionStatusLoading, c.Snapshot().Session.Status)

	// Aborting from LOADING is allowed.
	assert.NoError(t, c.Close())
}

func TestController_ViolationEscalation(t *testing.T) {
	// Threshold 2: violations 1 and 2 warn, 3 forces submission with
	// exactly one sweep.
	api := &fakePlatform{itemSet: codingItemSet(2)}
	presenter := &fakePresenter{}
	cfg := codingConfig()
	c := NewController(cfg, api, zerolog.Nop(),
		WithPresenter(presenter), WithScreenLock(presenter))

	stream := signal.NewStream()
	require.NoError(t, c.Open(context.Background(), stream))
	require.NoError(t, c.SetDraft(c.Snapshot().Items[0].ID, "draft"))

	stream.Emit(model.ViolationVisibilityLost)
	stream.Emit(model.ViolationFocusLost)
	assert.Equal(t, 2, presenter.warningCount())
	assert.Equal(t, model.SessionStatusActive, c.Snapshot().Session.Status)

	stream.Emit(model.ViolationFullscreenExited)
	waitForStatus(t, c, model.SessionStatusTerminated)

	snap := c.Snapshot()
	assert.Equal(t, 3, snap.Session.ViolationCount)
	assert.Equal(t, 1, api.submitted(), "one drafted item swept exactly once")
	assert.Equal(t, int32(1), presenter.submitted.Load())
	assert.Equal(t, int32(1), presenter.released.Load())
}

func TestController_WarningTextSurfaced(t *testing.T) {
	api := &fakePlatform{itemSet: codingItemSet(1)}
	c := NewController(codingConfig(), api, zerolog.Nop())

	stream := signal.NewStream()
	require.NoError(t, c.Open(context.Background(), stream))
	defer c.clock.Stop()

	stream.Emit(model.ViolationForbiddenInput)
	assert.Contains(t, c.Snapshot().Warning, "2 warnings remaining")

	stream.Emit(model.ViolationForbiddenInput)
	assert.Contains(t, c.Snapshot().Warning, "1 warning remaining")
}

func TestController_TimerExpiryForcesSubmission(t *testing.T) {
	// A 3-question aptitude test seeds a 180-second clock; expiry drives
	// the session to TERMINATED with zero violations and zero manual
	// submissions.
	items := make([]model.Item, 3)
	for i := range items {
		items[i] = model.Item{ID: uuid.New(), Ordinal: i}
	}
	api := &fakePlatform{itemSet: &model.ItemSet{Items: items, PerItemSeconds: 60}}
	presenter := &fakePresenter{}
	cfg := Config{
		JobID:         "job-1",
		Mode:          model.ModeAptitudeTest,
		Rules:         violation.Rules{Threshold: 2, Enforce: false},
		ClockInterval: time.Millisecond,
	}
	c := NewController(cfg, api, zerolog.Nop(), WithPresenter(presenter))

	require.NoError(t, c.Open(context.Background()))
	assert.Equal(t, 180, c.Snapshot().Session.TimeRemainingSeconds)

	require.NoError(t, c.SetDraft(items[0].ID, "B"))
	require.NoError(t, c.SetDraft(items[1].ID, "C"))

	waitForStatus(t, c, model.SessionStatusTerminated)

	snap := c.Snapshot()
	assert.Zero(t, snap.Session.ViolationCount)
	assert.Equal(t, 1, api.finals(), "aptitude finishes with one batch call")
	require.NotNil(t, snap.FinalResult)
	assert.True(t, snap.FinalResult.Passed)
	assert.Equal(t, int32(1), presenter.submitted.Load())
}

func TestController_AdvisoryRulesNeverForceSubmit(t *testing.T) {
	api := &fakePlatform{itemSet: codingItemSet(1)}
	cfg := codingConfig()
	cfg.Rules = violation.Rules{Threshold: 2, Enforce: false}
	c := NewController(cfg, api, zerolog.Nop())

	stream := signal.NewStream()
	require.NoError(t, c.Open(context.Background(), stream))
	defer c.clock.Stop()

	for i := 0; i < 10; i++ {
		stream.Emit(model.ViolationVisibilityLost)
	}

	snap := c.Snapshot()
	assert.Equal(t, 10, snap.Session.ViolationCount)
	assert.Equal(t, model.SessionStatusActive, snap.Session.Status)
}

func TestController_ConcurrentTriggersSubmitOnce(t *testing.T) {
	api := &fakePlatform{itemSet: codingItemSet(1)}
	presenter := &fakePresenter{}
	c := NewController(codingConfig(), api, zerolog.Nop(), WithPresenter(presenter))

	require.NoError(t, c.Open(context.Background()))
	require.NoError(t, c.SetDraft(c.Snapshot().Items[0].ID, "answer"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Submit()
		}()
	}
	wg.Wait()

	waitForStatus(t, c, model.SessionStatusTerminated)
	assert.Equal(t, 1, api.submitted(), "sweep ran exactly once")
	assert.Equal(t, int32(1), presenter.submitted.Load(), "submitted notification fired exactly once")
}

func TestController_SweepToleratesRemoteFailures(t *testing.T) {
	api := &fakePlatform{itemSet: codingItemSet(1), submitErr: &apperr.RemoteError{StatusCode: 502}}
	c := NewController(codingConfig(), api, zerolog.Nop())

	require.NoError(t, c.Open(context.Background()))
	require.NoError(t, c.SetDraft(c.Snapshot().Items[0].ID, "answer"))

	c.Submit()
	waitForStatus(t, c, model.SessionStatusTerminated)
}

func TestController_NoSubmissionsAfterTerminal(t *testing.T) {
	api := &fakePlatform{itemSet: codingItemSet(2)}
	c := NewController(codingConfig(), api, zerolog.Nop())

	require.NoError(t, c.Open(context.Background()))
	items := c.Snapshot().Items

	c.Submit()
	waitForStatus(t, c, model.SessionStatusTerminated)

	_, err := c.SubmitItem(context.Background(), items[0].ID, "late")
	assert.Error(t, err)
	assert.Error(t, c.SetDraft(items[0].ID, "late"))
}

func TestController_ViolationsIgnoredAfterTerminal(t *testing.T) {
	api := &fakePlatform{itemSet: codingItemSet(1)}
	c := NewController(codingConfig(), api, zerolog.Nop())

	stream := signal.NewStream()
	require.NoError(t, c.Open(context.Background(), stream))

	c.Submit()
	waitForStatus(t, c, model.SessionStatusTerminated)

	stream.Emit(model.ViolationVisibilityLost)
	assert.Zero(t, c.Snapshot().Session.ViolationCount)
}

func TestController_CloseIdempotentFromTerminated(t *testing.T) {
	api := &fakePlatform{itemSet: codingItemSet(1)}
	c := NewController(codingConfig(), api, zerolog.Nop())

	require.NoError(t, c.Open(context.Background()))
	c.Submit()
	waitForStatus(t, c, model.SessionStatusTerminated)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestController_CloseRejectedWhileActive(t *testing.T) {
	api := &fakePlatform{itemSet: codingItemSet(1)}
	c := NewController(codingConfig(), api, zerolog.Nop())

	require.NoError(t, c.Open(context.Background()))
	defer func() {
		c.Submit()
		waitForStatus(t, c, model.SessionStatusTerminated)
		_ = c.Close()
	}()

	assert.Error(t, c.Close())
}
