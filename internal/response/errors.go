package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrBlankAnswer    ErrCode = "BLANK_ANSWER"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrSessionOpen       ErrCode = "SESSION_ALREADY_OPEN"
	ErrSessionNotActive  ErrCode = "SESSION_NOT_ACTIVE"
	ErrSessionLoadFailed ErrCode = "SESSION_LOAD_FAILED"
	ErrSessionState      ErrCode = "INVALID_SESSION_STATE"

	// ─── Submission ────────────────────────────────────────────────────
	ErrAlreadySubmitted ErrCode = "ITEM_ALREADY_SUBMITTED"
	ErrRemoteRejected   ErrCode = "REMOTE_REJECTED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "A gateway token is required."
	case ErrTokenInvalid:
		return "The gateway token is not valid."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrBlankAnswer:
		return "Your answer must not be blank."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Session lifecycle ─────────────────────────────────────────────
	case ErrSessionOpen:
		return "A proctored session is already open."
	case ErrSessionNotActive:
		return "The session is not active."
	case ErrSessionLoadFailed:
		return "The assessment could not be loaded. Please close the test and try again."
	case ErrSessionState:
		return "The session is not in a state that permits this action."

	// ─── Submission ────────────────────────────────────────────────────
	case ErrAlreadySubmitted:
		return "This question has already been submitted."
	case ErrRemoteRejected:
		return "The assessment service rejected the submission. You may retry."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal error occurred."
	default:
		return "An unexpected error occurred."
	}
}
