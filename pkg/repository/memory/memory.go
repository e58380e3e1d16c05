package memory

import (
	"github.com/hvacjoy/joyline/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	transcript *transcriptRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		transcript: newTranscriptRepository(),
	}
}

func (m *Memory) Transcript() interfaces.TranscriptRepository {
	return m.transcript
}

func (m *Memory) Close() error {
	return nil
}
