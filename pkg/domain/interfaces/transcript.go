package interfaces

import (
	"context"

	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/domain/types"
)

// TranscriptRepository defines the interface for transcript line persistence.
// The transcript is the source of truth for conversation history: lines are
// append-only and the latest assistant line's metadata carries the slot state
// the next turn resumes from.
type TranscriptRepository interface {
	// Append stores a new transcript line. The line's ID and CreatedAt are
	// assigned if empty; the assigned line is returned.
	Append(ctx context.Context, line *model.TranscriptLine) (*model.TranscriptLine, error)

	// List returns all lines of a call ordered by turn index ascending.
	List(ctx context.Context, callSID types.CallSID) ([]*model.TranscriptLine, error)

	// LatestAssistant returns the most recent assistant line of a call, or
	// nil when the call has no assistant line yet.
	LatestAssistant(ctx context.Context, callSID types.CallSID) (*model.TranscriptLine, error)
}
