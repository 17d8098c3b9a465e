// Package interview drives the conversational interview flow: a
// server-paginated question sequence with no hard timer, advanced one
// answer at a time.
package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hireside/proctor-gateway/internal/apperr"
	"github.com/hireside/proctor-gateway/internal/model"
)

// refetchTimeout bounds the delayed background fetch after an answer.
const refetchTimeout = 15 * time.Second

// API is the slice of the hiring platform the engine consumes.
type API interface {
	FetchInterview(ctx context.Context, jobID, applicationID string) (*model.Interview, error)
	SubmitInterviewAnswer(ctx context.Context, jobID string, ordinal int, text string) error
}

// NoCurrent is the CurrentIndex sentinel when no question is selected.
const NoCurrent = -1

// Engine tracks the candidate's position in the interview sequence.
// Server-side scoring and question generation are eventually consistent, so
// an accepted answer schedules a delayed re-fetch; a re-fetch that arrives
// after Close, or after a newer submit, is discarded without applying.
type Engine struct {
	api           API
	jobID         string
	applicationID string
	delay         time.Duration
	log           zerolog.Logger

	mu           sync.Mutex
	questions    []model.InterviewQuestion
	currentIndex int
	complete     bool
	open         bool
	generation   int
	timer        *time.Timer
}

// NewEngine creates an Engine. delay is how long to wait after an accepted
// answer before re-fetching the session.
func NewEngine(api API, jobID, applicationID string, delay time.Duration, log zerolog.Logger) *Engine {
	return &Engine{
		api:           api,
		jobID:         jobID,
		applicationID: applicationID,
		delay:         delay,
		log: log.With().
			Str("component", "interview_engine").
			Str("job_id", jobID).
			Logger(),
		currentIndex: NoCurrent,
	}
}

// Open fetches the interview and positions the cursor on the first
// unanswered question.
func (e *Engine) Open(ctx context.Context) error {
	iv, err := e.api.FetchInterview(ctx, e.jobID, e.applicationID)
	if err != nil {
		return &apperr.SessionLoadError{Err: err}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = true
	e.apply(iv, NoCurrent)
	return nil
}

// SubmitAnswer posts the answer for the question at ordinal. Blank text
// fails with a ValidationError before any network call. On success the
// cursor advances past ordinal and a re-fetch is scheduled.
func (e *Engine) SubmitAnswer(ctx context.Context, ordinal int, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.NewValidation("answer must not be blank")
	}

	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return fmt.Errorf("interview %s: %w", e.jobID, apperr.ErrNotFound)
	}
	if e.indexOf(ordinal) < 0 {
		e.mu.Unlock()
		return fmt.Errorf("question ordinal %d: %w", ordinal, apperr.ErrNotFound)
	}
	e.mu.Unlock()

	if err := e.api.SubmitInterviewAnswer(ctx, e.jobID, ordinal, text); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return nil
	}
	// A re-fetch may have replaced the question list while the submit was
	// in flight, so the ordinal is re-resolved here. If it is gone the
	// platform still has the answer; only the local mark is skipped.
	if idx := e.indexOf(ordinal); idx >= 0 {
		e.questions[idx].Answer = text
		e.questions[idx].Answered = true
	}
	e.advancePast(ordinal)
	e.scheduleRefetch(ordinal)
	return nil
}

// Close invalidates the engine. Any re-fetch still in flight no-ops on
// arrival; no mutation ever applies to a closed engine.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = false
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// Snapshot is the engine's surface to the presentation layer.
type Snapshot struct {
	Questions    []model.InterviewQuestion `json:"questions"`
	CurrentIndex int                       `json:"current_index"`
	Complete     bool                      `json:"complete"`
}

// Snapshot returns the current question list and cursor.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	qs := make([]model.InterviewQuestion, len(e.questions))
	copy(qs, e.questions)
	return Snapshot{
		Questions:    qs,
		CurrentIndex: e.currentIndex,
		Complete:     e.complete,
	}
}

// ─── internals (e.mu held) ──────────────────────────────────────────

// scheduleRefetch arms the delayed re-fetch, superseding any pending one.
// The generation counter is the cancellation token: it is captured here and
// compared on arrival.
func (e *Engine) scheduleRefetch(afterOrdinal int) {
	e.generation++
	gen := e.generation
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.delay, func() {
		e.refetch(gen, afterOrdinal)
	})
}

func (e *Engine) refetch(gen, afterOrdinal int) {
	ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
	defer cancel()

	iv, err := e.api.FetchInterview(ctx, e.jobID, e.applicationID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open || gen != e.generation {
		// Invalidated while the fetch was in flight. Discard silently.
		return
	}
	if err != nil {
		e.log.Warn().Err(err).Msg("Interview re-fetch failed")
		return
	}
	e.apply(iv, afterOrdinal)
}

// apply replaces local state with fetched state and repositions the cursor
// on the first unanswered question with ordinal > afterOrdinal.
func (e *Engine) apply(iv *model.Interview, afterOrdinal int) {
	e.questions = iv.Questions
	e.complete = iv.Complete
	e.advancePast(afterOrdinal)
}

// advancePast moves the cursor to the first unanswered question with
// ordinal greater than the given one, or flags completion if none exists.
func (e *Engine) advancePast(ordinal int) {
	for i, q := range e.questions {
		if q.Ordinal > ordinal && !q.Answered {
			e.currentIndex = i
			return
		}
	}
	e.currentIndex = NoCurrent
	e.complete = true
}

func (e *Engine) indexOf(ordinal int) int {
	for i, q := range e.questions {
		if q.Ordinal == ordinal {
			return i
		}
	}
	return -1
}
