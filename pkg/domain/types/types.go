package types

import "github.com/google/uuid"

// CallSID is the telephony provider's call session identifier
type CallSID string

// String returns the string representation of the call SID
func (s CallSID) String() string {
	return string(s)
}

// TranscriptID is the unique identifier of a transcript line
type TranscriptID string

// NewTranscriptID generates a new time-ordered transcript line ID
func NewTranscriptID() TranscriptID {
	return TranscriptID(uuid.Must(uuid.NewV7()).String())
}

// Role identifies who produced a transcript line
type Role string

const (
	RoleCaller    Role = "caller"
	RoleAssistant Role = "assistant"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleCaller, RoleAssistant:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}
