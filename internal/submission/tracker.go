package submission

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hireside/proctor-gateway/internal/apperr"
	"github.com/hireside/proctor-gateway/internal/model"
)

// ItemSubmitter sends one item to the platform for scoring. Implemented by
// the platform HTTP client; faked in tests.
type ItemSubmitter interface {
	SubmitItem(ctx context.Context, jobID string, itemID uuid.UUID, answer string) (*model.SubmissionRecord, error)
}

// Tracker maps item IDs to their submission records for one session.
// Records are write-once: a submitted item can never be re-submitted or have
// its draft changed.
type Tracker struct {
	jobID     string
	submitter ItemSubmitter
	log       zerolog.Logger

	mu       sync.Mutex
	items    map[uuid.UUID]*model.Item
	order    []uuid.UUID
	inFlight map[uuid.UUID]bool
}

// NewTracker creates a Tracker seeded with the session's item list.
func NewTracker(jobID string, items []model.Item, submitter ItemSubmitter, log zerolog.Logger) *Tracker {
	t := &Tracker{
		jobID:     jobID,
		submitter: submitter,
		log:       log.With().Str("component", "submission_tracker").Logger(),
		items:     make(map[uuid.UUID]*model.Item, len(items)),
		order:     make([]uuid.UUID, 0, len(items)),
		inFlight:  make(map[uuid.UUID]bool),
	}
	sorted := make([]model.Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })
	for i := range sorted {
		item := sorted[i]
		t.items[item.ID] = &item
		t.order = append(t.order, item.ID)
	}
	return t
}

// Items returns a snapshot of all items in ordinal order.
func (t *Tracker) Items() []model.Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.Item, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.items[id])
	}
	return out
}

// Item returns a snapshot of one item.
func (t *Tracker) Item(id uuid.UUID) (model.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, ok := t.items[id]
	if !ok {
		return model.Item{}, fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}
	return *item, nil
}

// SetDraft updates an item's in-progress answer. Rejected once the item has
// a submission record.
func (t *Tracker) SetDraft(id uuid.UUID, draft string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, ok := t.items[id]
	if !ok {
		return fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}
	if item.Record != nil {
		return apperr.NewValidation("item is already submitted")
	}
	item.AnswerDraft = draft
	return nil
}

// SubmitOne validates and submits a single item for scoring. A blank answer
// fails with a ValidationError before any network call; a platform failure
// leaves the item unsubmitted so the candidate can retry. Submitting an
// item that already has a record is a no-op returning the existing record.
func (t *Tracker) SubmitOne(ctx context.Context, id uuid.UUID, answer string) (*model.SubmissionRecord, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, apperr.NewValidation("answer must not be blank")
	}

	t.mu.Lock()
	item, ok := t.items[id]
	if !ok {
		t.mu.Unlock()
		return nil, fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}
	if item.Record != nil {
		rec := item.Record
		t.mu.Unlock()
		return rec, nil
	}
	if t.inFlight[id] {
		t.mu.Unlock()
		return nil, apperr.NewValidation("submission already in progress for this item")
	}
	t.inFlight[id] = true
	item.AnswerDraft = answer
	t.mu.Unlock()

	rec, err := t.submitter.SubmitItem(ctx, t.jobID, id, answer)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, id)
	if err != nil {
		return nil, err
	}
	if item.Record == nil {
		item.Record = rec
	}
	return item.Record, nil
}

// SubmitAllRemaining sweeps every unsubmitted item with a non-blank draft,
// sequentially and best-effort: individual failures are logged and the sweep
// continues. Used only by forced/final submission, where partial credit
// beats an all-or-nothing failure.
func (t *Tracker) SubmitAllRemaining(ctx context.Context) {
	type pending struct {
		id    uuid.UUID
		draft string
	}

	t.mu.Lock()
	queue := make([]pending, 0, len(t.order))
	for _, id := range t.order {
		item := t.items[id]
		if item.Record != nil || t.inFlight[id] {
			continue
		}
		if strings.TrimSpace(item.AnswerDraft) == "" {
			continue
		}
		queue = append(queue, pending{id: id, draft: item.AnswerDraft})
	}
	t.mu.Unlock()

	for _, p := range queue {
		if _, err := t.SubmitOne(ctx, p.id, p.draft); err != nil {
			t.log.Warn().Err(err).Str("item_id", p.id.String()).Msg("Final sweep: item submission failed, continuing")
		}
	}
}

// CollectAnswers returns the (item, answer) pairs for every unsubmitted item
// with a non-blank draft, in ordinal order. Used by the aptitude flow's
// single batch final submission.
func (t *Tracker) CollectAnswers() []model.ItemAnswer {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.ItemAnswer, 0, len(t.order))
	for _, id := range t.order {
		item := t.items[id]
		if item.Record != nil || strings.TrimSpace(item.AnswerDraft) == "" {
			continue
		}
		out = append(out, model.ItemAnswer{ItemID: id, Answer: item.AnswerDraft})
	}
	return out
}
