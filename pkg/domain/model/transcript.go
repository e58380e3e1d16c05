package model

import (
	"time"

	"github.com/hvacjoy/joyline/pkg/domain/types"
)

// TranscriptLine is one utterance of a call, tagged by role and turn index.
// Lines are append-only: created once per turn, never mutated or deleted.
type TranscriptLine struct {
	ID        types.TranscriptID
	CallSID   types.CallSID
	Caller    string
	Role      types.Role
	Text      string
	TurnIndex int
	Meta      *TurnMeta
	CreatedAt time.Time
}

// TurnMeta is the metadata attached to an assistant transcript line: the slot
// state after the turn and the question the assistant asked. The next turn
// reads it back to reconstruct conversation state, so no in-process cache is
// needed between turns.
type TurnMeta struct {
	Slots        Slots  `json:"slots"`
	LastQuestion string `json:"last_question"`
	Done         bool   `json:"done,omitempty"`
}
