// Package session implements the proctored assessment session state machine:
// it wires the countdown clock and the violation monitor into the escalation
// policy, guards final submission behind a one-shot gate, and exposes
// read-only snapshots to the presentation layer.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hireside/proctor-gateway/internal/apperr"
	"github.com/hireside/proctor-gateway/internal/clock"
	"github.com/hireside/proctor-gateway/internal/model"
	"github.com/hireside/proctor-gateway/internal/submission"
	"github.com/hireside/proctor-gateway/internal/violation"
)

// finalizeTimeout bounds the best-effort submission sweep once a terminal
// trigger wins the gate.
const finalizeTimeout = 60 * time.Second

// PlatformAPI is the slice of the hiring platform the controller consumes.
type PlatformAPI interface {
	submission.ItemSubmitter
	FetchItems(ctx context.Context, jobID string, mode model.AssessmentMode) (*model.ItemSet, error)
	SubmitFinal(ctx context.Context, jobID string, answers []model.ItemAnswer) (*model.FinalResult, error)
}

// Presenter receives the two outbound notifications the presentation layer
// renders: escalation warnings and the terminal "submitted" signal.
type Presenter interface {
	OnWarning(violationCount, remainingWarnings int)
	OnSubmitted()
}

// ScreenLock is the exclusive UI lock (fullscreen equivalent) released on
// termination. Release must tolerate the lock never having been granted.
type ScreenLock interface {
	Release()
}

// ViolationSink receives every counted violation, fire-and-forget. Sink
// failures never affect session state.
type ViolationSink interface {
	Record(sessionID uuid.UUID, jobID string, evt model.ViolationEvent)
}

// Config fixes a controller's identity and policy for one session.
type Config struct {
	JobID         string
	ApplicationID string
	Mode          model.AssessmentMode
	Rules         violation.Rules
	// PerItemSeconds is the aptitude time budget per question. Coding tests
	// take their budget from the platform's time limit instead.
	PerItemSeconds int
	// ClockInterval overrides the 1s beat, for tests. Zero means 1s.
	ClockInterval time.Duration
}

// Option configures optional collaborators.
type Option func(*Controller)

// WithPresenter registers the presentation-layer callback surface.
func WithPresenter(p Presenter) Option {
	return func(c *Controller) { c.presenter = p }
}

// WithScreenLock registers the exclusive UI lock released on termination.
func WithScreenLock(l ScreenLock) Option {
	return func(c *Controller) { c.screen = l }
}

// WithViolationSink registers the fire-and-forget violation journal.
func WithViolationSink(s ViolationSink) Option {
	return func(c *Controller) { c.sink = s }
}

// Controller owns one session's lifecycle: LOADING → ACTIVE → SUBMITTING →
// TERMINATED, with no back-transitions. Exactly one SUBMITTING→TERMINATED
// transition occurs per instance; the gate guarantees the submission sweep
// runs at most once no matter how many triggers fire concurrently.
type Controller struct {
	cfg       Config
	api       PlatformAPI
	presenter Presenter
	screen    ScreenLock
	sink      ViolationSink
	log       zerolog.Logger

	gate    submission.Gate
	clock   *clock.Countdown
	monitor *violation.Monitor
	tracker *submission.Tracker

	mu          sync.Mutex
	sess        model.Session
	warning     string
	finalResult *model.FinalResult
	opened      bool
	closed      bool
}

// NewController creates a Controller in its pre-open state.
func NewController(cfg Config, api PlatformAPI, log zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		cfg: cfg,
		api: api,
		log: log.With().
			Str("component", "session_controller").
			Str("job_id", cfg.JobID).
			Str("mode", string(cfg.Mode)).
			Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open fetches the item list and time budget, seeds the clock, and moves the
// session to ACTIVE. A fetch failure leaves the session in LOADING and
// returns a SessionLoadError — fatal to this session, the flow must close.
func (c *Controller) Open(ctx context.Context, sources ...violation.SignalSource) error {
	c.mu.Lock()
	if c.opened {
		c.mu.Unlock()
		return errors.New("session already opened")
	}
	c.opened = true
	c.sess = model.Session{
		ID:            uuid.New(),
		JobID:         c.cfg.JobID,
		ApplicationID: c.cfg.ApplicationID,
		Mode:          c.cfg.Mode,
		Status:        model.SessionStatusLoading,
	}
	c.mu.Unlock()

	itemSet, err := c.api.FetchItems(ctx, c.cfg.JobID, c.cfg.Mode)
	if err != nil {
		c.log.Error().Err(err).Msg("Item fetch failed, session unusable")
		return &apperr.SessionLoadError{Err: err}
	}

	total, err := c.timeBudget(itemSet)
	if err != nil {
		return &apperr.SessionLoadError{Err: err}
	}

	c.mu.Lock()
	if c.closed {
		// Candidate aborted during the fetch.
		c.mu.Unlock()
		return errors.New("session closed during load")
	}
	c.tracker = submission.NewTracker(c.cfg.JobID, itemSet.Items, c.api, c.log)
	c.sess.Status = model.SessionStatusActive
	c.sess.StartedAt = time.Now()
	c.sess.TimeRemainingSeconds = total
	c.mu.Unlock()

	var clockOpts []clock.Option
	if c.cfg.ClockInterval > 0 {
		clockOpts = append(clockOpts, clock.WithInterval(c.cfg.ClockInterval))
	}
	c.clock = clock.New(c.onTick, c.onExpired, clockOpts...)
	c.monitor = violation.NewMonitor(c.onViolation)
	c.monitor.Attach(sources...)

	c.log.Info().Int("items", len(itemSet.Items)).Int("budget_seconds", total).Msg("Session active")

	// A zero budget expires synchronously, so the clock starts last.
	c.clock.Start(total)
	return nil
}

// timeBudget derives the countdown seed from the platform's time metadata.
func (c *Controller) timeBudget(set *model.ItemSet) (int, error) {
	if c.cfg.Mode == model.ModeAptitudeTest {
		per := set.PerItemSeconds
		if per <= 0 {
			per = c.cfg.PerItemSeconds
		}
		if per <= 0 {
			return 0, fmt.Errorf("no per-item time budget for aptitude test %s", c.cfg.JobID)
		}
		return len(set.Items) * per, nil
	}
	if set.TimeLimitMinutes <= 0 {
		return 0, fmt.Errorf("no time limit for %s test %s", c.cfg.Mode, c.cfg.JobID)
	}
	return set.TimeLimitMinutes * 60, nil
}

// AttachSignals subscribes additional signal sources (e.g. a newly opened
// proctoring WebSocket) to an active session's monitor. The returned cancel
// unsubscribes them again when the connection goes away.
func (c *Controller) AttachSignals(sources ...violation.SignalSource) (cancel func()) {
	c.mu.Lock()
	active := c.sess.Status == model.SessionStatusActive && c.monitor != nil
	c.mu.Unlock()
	if !active {
		return func() {}
	}
	return c.monitor.Attach(sources...)
}

// SetDraft records a candidate's in-progress answer for an item.
func (c *Controller) SetDraft(itemID uuid.UUID, draft string) error {
	tracker, err := c.requireActive()
	if err != nil {
		return err
	}
	return tracker.SetDraft(itemID, draft)
}

// SubmitItem submits a single item for scoring while the session is active.
func (c *Controller) SubmitItem(ctx context.Context, itemID uuid.UUID, answer string) (*model.SubmissionRecord, error) {
	tracker, err := c.requireActive()
	if err != nil {
		return nil, err
	}
	return tracker.SubmitOne(ctx, itemID, answer)
}

// Item returns a snapshot of one item.
func (c *Controller) Item(itemID uuid.UUID) (model.Item, error) {
	c.mu.Lock()
	tracker := c.tracker
	c.mu.Unlock()
	if tracker == nil {
		return model.Item{}, apperr.ErrNotFound
	}
	return tracker.Item(itemID)
}

func (c *Controller) requireActive() (*submission.Tracker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Status != model.SessionStatusActive {
		return nil, fmt.Errorf("session is %s, not ACTIVE", c.sess.Status)
	}
	return c.tracker, nil
}

// Submit is the candidate's explicit final-submission action. Like every
// other terminal trigger it routes through the gate.
func (c *Controller) Submit() {
	c.mu.Lock()
	active := c.sess.Status == model.SessionStatusActive
	c.mu.Unlock()
	if active {
		c.finalize("manual")
	}
}

// Close tears the controller down. Permitted only from TERMINATED, or from
// LOADING when the candidate aborts before the session starts. Idempotent.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	status := c.sess.Status
	if status != model.SessionStatusTerminated && status != model.SessionStatusLoading && c.opened {
		c.mu.Unlock()
		return fmt.Errorf("cannot close a %s session", status)
	}
	c.closed = true
	c.mu.Unlock()

	if c.clock != nil {
		c.clock.Stop()
	}
	if c.monitor != nil {
		c.monitor.Detach()
	}
	c.log.Info().Msg("Session closed")
	return nil
}

// Snapshot is the controller's entire surface to the presentation layer.
type Snapshot struct {
	Session     model.Session      `json:"session"`
	Items       []model.Item       `json:"items"`
	Warning     string             `json:"warning,omitempty"`
	FinalResult *model.FinalResult `json:"final_result,omitempty"`
}

// Snapshot returns the current session and item state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		Session:     c.sess,
		Warning:     c.warning,
		FinalResult: c.finalResult,
	}
	tracker := c.tracker
	c.mu.Unlock()
	if tracker != nil {
		snap.Items = tracker.Items()
	}
	return snap
}

// ─── Clock and monitor callbacks ────────────────────────────────────

func (c *Controller) onTick(remaining int) {
	c.mu.Lock()
	if c.sess.Status == model.SessionStatusActive {
		c.sess.TimeRemainingSeconds = remaining
	}
	c.mu.Unlock()
}

func (c *Controller) onExpired() {
	// Timer expiry always forces submission, even at zero violations.
	c.finalize("timer")
}

func (c *Controller) onViolation(evt model.ViolationEvent) {
	c.mu.Lock()
	if c.sess.Status != model.SessionStatusActive {
		c.mu.Unlock()
		return
	}
	c.sess.ViolationCount++
	count := c.sess.ViolationCount
	sessID := c.sess.ID
	c.mu.Unlock()

	c.log.Warn().Str("kind", string(evt.Kind)).Int("count", count).Msg("Integrity violation")

	if c.sink != nil {
		c.sink.Record(sessID, c.cfg.JobID, evt)
	}

	out := c.cfg.Rules.Apply(count)
	switch out.Decision {
	case violation.DecisionWarn:
		c.mu.Lock()
		c.warning = warningText(out.RemainingWarnings)
		c.mu.Unlock()
		if c.presenter != nil {
			c.presenter.OnWarning(count, out.RemainingWarnings)
		}
	case violation.DecisionForceSubmit:
		c.finalize("violations")
	}
}

func warningText(remaining int) string {
	if remaining <= 0 {
		return "Integrity violation recorded."
	}
	if remaining == 1 {
		return "Integrity violation detected. 1 warning remaining before your test is submitted automatically."
	}
	return fmt.Sprintf("Integrity violation detected. %d warnings remaining before your test is submitted automatically.", remaining)
}

// finalize is the single terminal path. The gate admits exactly one caller;
// everyone else returns immediately.
func (c *Controller) finalize(reason string) {
	if !c.gate.TryAcquire() {
		return
	}

	c.mu.Lock()
	c.sess.Status = model.SessionStatusSubmitting
	tracker := c.tracker
	c.mu.Unlock()

	c.log.Info().Str("reason", reason).Msg("Final submission triggered")

	if c.clock != nil {
		c.clock.Stop()
	}
	if c.monitor != nil {
		c.monitor.Detach()
	}

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	if tracker != nil {
		if c.cfg.Mode == model.ModeAptitudeTest {
			answers := tracker.CollectAnswers()
			res, err := c.api.SubmitFinal(ctx, c.cfg.JobID, answers)
			if err != nil {
				// Best-effort, same as the sweep: never raised to a caller.
				c.log.Error().Err(err).Msg("Batch final submission failed")
			} else {
				c.mu.Lock()
				c.finalResult = res
				c.mu.Unlock()
			}
		} else {
			tracker.SubmitAllRemaining(ctx)
		}
	}

	if c.screen != nil {
		c.screen.Release()
	}

	now := time.Now()
	c.mu.Lock()
	c.sess.Status = model.SessionStatusTerminated
	c.sess.FinishedAt = &now
	c.mu.Unlock()

	c.log.Info().Str("reason", reason).Msg("Session terminated")

	if c.presenter != nil {
		c.presenter.OnSubmitted()
	}
}
