package model

import "github.com/hvacjoy/joyline/pkg/domain/types"

// Turn is the input of one conversation step: the caller's transcribed
// utterance plus everything the previous turn left behind.
type Turn struct {
	Utterance    string
	Caller       string
	CallSID      types.CallSID
	Prev         Slots
	LastQuestion string
}

// Outcome is the result of one conversation step. Slots is the next version
// of the conversation memory; Question is what the assistant asked this turn,
// persisted so an ambiguous answer can be re-prompted verbatim.
type Outcome struct {
	Reply             string
	Slots             Slots
	Done              bool
	Goodbye           string
	NeedsConfirmation bool
	Question          string
}
