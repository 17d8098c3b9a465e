package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus enumerates the platform's verdict for a submitted item.
type SubmissionStatus string

const (
	SubmissionStatusAccepted SubmissionStatus = "ACCEPTED"
	SubmissionStatusPartial  SubmissionStatus = "PARTIAL"
	SubmissionStatusRejected SubmissionStatus = "REJECTED"
)

// SubmissionRecord is the write-once scoring record for one submitted item.
// Once set on an Item it is never cleared or overwritten.
type SubmissionRecord struct {
	ItemID      uuid.UUID        `json:"item_id"`
	Status      SubmissionStatus `json:"status"`
	Score       float64          `json:"score"`
	PassedCount int              `json:"passed_count"`
	FailedCount int              `json:"failed_count"`
	Artifact    json.RawMessage  `json:"artifact,omitempty"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

// Item is one question/problem within a session. Payload is opaque to the
// controller — the presentation layer renders it, the platform scores it.
type Item struct {
	ID          uuid.UUID         `json:"id"`
	Ordinal     int               `json:"ordinal"`
	Payload     json.RawMessage   `json:"payload"`
	AnswerDraft string            `json:"answer_draft,omitempty"`
	Record      *SubmissionRecord `json:"record,omitempty"`
}

// Submitted reports whether the item already carries a scoring record.
func (i *Item) Submitted() bool {
	return i.Record != nil
}

// ItemAnswer is one (item, answer) pair in a batch final submission.
type ItemAnswer struct {
	ItemID uuid.UUID `json:"item_id"`
	Answer string    `json:"answer"`
}

// ItemSet is the item list plus the time budget returned by the platform.
// Exactly one of TimeLimitMinutes (coding test) or PerItemSeconds (aptitude)
// is meaningful for a given mode.
type ItemSet struct {
	Items            []Item          `json:"items"`
	TimeLimitMinutes int             `json:"time_limit_minutes,omitempty"`
	PerItemSeconds   int             `json:"per_item_seconds,omitempty"`
	AllowedOptions   json.RawMessage `json:"allowed_options,omitempty"`
}
