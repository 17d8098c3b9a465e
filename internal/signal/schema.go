// Package signal carries environment signals from the browser shell to the
// violation monitor over a WebSocket: the presentation layer reports raw
// proctoring events (tab hidden, focus lost, fullscreen exited, forbidden
// key combination) and the gateway normalizes them into violations.
package signal

// ─── Actions (Client → Gateway) ─────────────────────────────────────

type Action string

const (
	ActionReport Action = "report"
	ActionPing   Action = "ping"
)

// RequestPayload is one inbound message from the browser shell.
type RequestPayload struct {
	Action Action `json:"action"`
	// Kind is the raw signal name for ActionReport, matching the
	// model.ViolationKind values.
	Kind string `json:"kind,omitempty"`
}

// ─── Events (Gateway → Client) ──────────────────────────────────────

type Event string

const (
	EventAck         Event = "ack"
	EventError       Event = "error"
	EventPong        Event = "pong"
	EventWarning     Event = "warning"
	EventSubmitted   Event = "submitted"
	EventReleaseLock Event = "release-lock"
)

// WarningResponse escalates a counted violation to the presentation layer.
type WarningResponse struct {
	Event             Event  `json:"event"`
	ViolationCount    int    `json:"violation_count"`
	RemainingWarnings int    `json:"remaining_warnings"`
	Message           string `json:"message"`
}

// SubmittedResponse signals that the session reached its terminal state.
type SubmittedResponse struct {
	Event Event `json:"event"`
}

// ReleaseLockResponse tells the shell to release the exclusive UI lock
// (exit fullscreen).
type ReleaseLockResponse struct {
	Event Event `json:"event"`
}

// AckResponse confirms a counted signal and echoes the running total.
type AckResponse struct {
	Event          Event `json:"event"`
	ViolationCount int   `json:"violation_count"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
