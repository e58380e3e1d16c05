package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/domain/types"
)

// LogTranscript appends one transcript line synchronously. Used by the
// transcript log endpoint, where the caller wants the stored ID back.
func (uc *UseCases) LogTranscript(ctx context.Context, line *model.TranscriptLine) (*model.TranscriptLine, error) {
	if line == nil {
		return nil, goerr.New("transcript line is required")
	}
	if line.CallSID == "" {
		return nil, ErrMissingCallSID
	}
	if strings.TrimSpace(line.Text) == "" {
		return nil, goerr.Wrap(ErrMissingText, "cannot log transcript", goerr.V("callSID", line.CallSID))
	}
	if !line.Role.IsValid() {
		return nil, goerr.Wrap(ErrInvalidRole, "cannot log transcript", goerr.V("role", line.Role))
	}

	stored, err := uc.repo.Transcript().Append(ctx, line)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append transcript line", goerr.V("callSID", line.CallSID))
	}
	return stored, nil
}

// ListTranscript returns the full transcript of a call in turn order.
func (uc *UseCases) ListTranscript(ctx context.Context, callSID types.CallSID) ([]*model.TranscriptLine, error) {
	if callSID == "" {
		return nil, ErrMissingCallSID
	}
	lines, err := uc.repo.Transcript().List(ctx, callSID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list transcript", goerr.V("callSID", callSID))
	}
	return lines, nil
}
