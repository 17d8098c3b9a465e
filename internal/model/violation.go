package model

import "time"

// ViolationKind identifies which environment signal produced a violation.
// Every kind contributes equally to the session's violation count — the
// policy layer never inspects signal-specific detail.
type ViolationKind string

const (
	ViolationVisibilityLost   ViolationKind = "visibility-lost"
	ViolationFocusLost        ViolationKind = "focus-lost"
	ViolationFullscreenExited ViolationKind = "fullscreen-exited"
	ViolationForbiddenInput   ViolationKind = "forbidden-input"
)

// ValidKind reports whether k is one of the recognized violation kinds.
func ValidKind(k ViolationKind) bool {
	switch k {
	case ViolationVisibilityLost, ViolationFocusLost, ViolationFullscreenExited, ViolationForbiddenInput:
		return true
	}
	return false
}

// ViolationEvent is one normalized integrity breach occurrence.
type ViolationEvent struct {
	Kind       ViolationKind `json:"kind"`
	OccurredAt time.Time     `json:"occurred_at"`
}
