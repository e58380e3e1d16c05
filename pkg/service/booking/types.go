package booking

import (
	"context"

	"github.com/hvacjoy/joyline/pkg/domain/model"
)

// Service defines the language-model extraction step of a call turn: it
// turns free-form caller speech into a voice-ready reply plus a slot delta.
type Service interface {
	// ExtractTurn analyzes one utterance with the conversation so far.
	// Errors cover transport failures and malformed model output; the
	// caller degrades to a canned reply in both cases.
	ExtractTurn(ctx context.Context, input Input) (*Result, error)
}

// Input is everything the model sees for one turn.
type Input struct {
	Utterance    string
	Caller       string
	History      []*model.TranscriptLine
	Slots        model.Slots
	LastQuestion string
}

// Result is the validated model output.
type Result struct {
	Reply string
	Slots model.Slots
}

// llmResponse is the structured output from the LLM. The slot shape reuses
// the domain JSON tags so the schema and the parse stay in lockstep.
type llmResponse struct {
	Reply string      `json:"reply"`
	Slots model.Slots `json:"slots"`
}
