package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound    = errors.New("session not found")
	ErrWrongStage         = errors.New("action is not allowed in the current stage")
	ErrSessionFailed      = errors.New("session is in the error state, start over to continue")
	ErrTransitionInFlight = errors.New("another request for this session is still in progress")
	ErrUnknownAssessment  = errors.New("unknown assessment")
	ErrInvalidAnswer      = errors.New("answer index is out of range")
	ErrTurnNotFound       = errors.New("chat turn not found")
	ErrNoAudio            = errors.New("no audio is playing")
	ErrNoResult           = errors.New("session result not available")

	// Chat errors
	ErrWorkspaceNotFound    = errors.New("workspace not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyQuery           = errors.New("query is empty")

	// Auth errors
	ErrAuthNotConfigured = errors.New("auth not configured")
	ErrNoAuthSession     = errors.New("no active session")
	ErrInvalidToken      = errors.New("invalid access token")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
