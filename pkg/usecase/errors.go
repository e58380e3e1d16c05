package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Client input errors
	ErrMissingSpeech  = errors.New("missing speech")
	ErrMissingCallSID = errors.New("missing call SID")
	ErrMissingText    = errors.New("missing transcript text")
	ErrInvalidRole    = errors.New("invalid transcript role")

	// Configuration errors
	ErrLLMNotConfigured      = errors.New("language model is not configured")
	ErrCalendarNotConfigured = errors.New("calendar is not configured")
)
