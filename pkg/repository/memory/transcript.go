package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hvacjoy/joyline/pkg/domain/interfaces"
	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/domain/types"
)

type transcriptRepository struct {
	mu    sync.RWMutex
	lines map[types.CallSID][]*model.TranscriptLine
}

var _ interfaces.TranscriptRepository = &transcriptRepository{}

func newTranscriptRepository() *transcriptRepository {
	return &transcriptRepository{
		lines: make(map[types.CallSID][]*model.TranscriptLine),
	}
}

func copyLine(l *model.TranscriptLine) *model.TranscriptLine {
	copied := *l
	if l.Meta != nil {
		meta := *l.Meta
		copied.Meta = &meta
	}
	return &copied
}

func (r *transcriptRepository) Append(_ context.Context, line *model.TranscriptLine) (*model.TranscriptLine, error) {
	if line == nil {
		return nil, goerr.New("transcript line is nil")
	}
	if line.CallSID == "" {
		return nil, goerr.New("transcript line requires a call SID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyLine(line)
	if created.ID == "" {
		created.ID = types.NewTranscriptID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.lines[line.CallSID] = append(r.lines[line.CallSID], created)
	return copyLine(created), nil
}

func (r *transcriptRepository) List(_ context.Context, callSID types.CallSID) ([]*model.TranscriptLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.lines[callSID]
	result := make([]*model.TranscriptLine, 0, len(stored))
	for _, l := range stored {
		result = append(result, copyLine(l))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TurnIndex < result[j].TurnIndex
	})

	return result, nil
}

func (r *transcriptRepository) LatestAssistant(_ context.Context, callSID types.CallSID) (*model.TranscriptLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.TranscriptLine
	for _, l := range r.lines[callSID] {
		if l.Role != types.RoleAssistant {
			continue
		}
		if latest == nil || l.TurnIndex > latest.TurnIndex {
			latest = l
		}
	}

	if latest == nil {
		return nil, nil
	}
	return copyLine(latest), nil
}
