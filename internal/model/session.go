package model

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentMode enumerates the candidate-facing assessment flows.
type AssessmentMode string

const (
	ModeInterview    AssessmentMode = "INTERVIEW"
	ModeCodingTest   AssessmentMode = "CODING_TEST"
	ModeAptitudeTest AssessmentMode = "APTITUDE_TEST"
)

// SessionStatus enumerates proctored session states.
// Transitions are strictly forward: LOADING → ACTIVE → SUBMITTING → TERMINATED.
type SessionStatus string

const (
	SessionStatusLoading    SessionStatus = "LOADING"
	SessionStatusActive     SessionStatus = "ACTIVE"
	SessionStatusSubmitting SessionStatus = "SUBMITTING"
	SessionStatusTerminated SessionStatus = "TERMINATED"
)

// Session represents one timed assessment attempt by a candidate for a job posting.
type Session struct {
	ID                   uuid.UUID      `json:"id"`
	JobID                string         `json:"job_id"`
	ApplicationID        string         `json:"application_id"`
	Mode                 AssessmentMode `json:"mode"`
	Status               SessionStatus  `json:"status"`
	TimeRemainingSeconds int            `json:"time_remaining_seconds"`
	ViolationCount       int            `json:"violation_count"`
	StartedAt            time.Time      `json:"started_at"`
	FinishedAt           *time.Time     `json:"finished_at,omitempty"`
}

// FinalResult is the platform's verdict after a batch final submission.
type FinalResult struct {
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Passed   bool    `json:"passed"`
}
