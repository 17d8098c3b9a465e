package model

import "github.com/google/uuid"

// InterviewQuestion is one question in a server-ordered interview sequence.
// Answered questions carry the recorded answer; the server owns the records.
type InterviewQuestion struct {
	ID       uuid.UUID `json:"id"`
	Ordinal  int       `json:"ordinal"`
	Prompt   string    `json:"prompt"`
	Answer   string    `json:"answer,omitempty"`
	Answered bool      `json:"answered"`
}

// Interview is the conversational question/answer session for a job
// application. Question generation is server-side and eventually consistent:
// new questions may appear on a later fetch.
type Interview struct {
	JobID     string              `json:"job_id"`
	Questions []InterviewQuestion `json:"questions"`
	Complete  bool                `json:"complete"`
}
