package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/domain/types"
	"github.com/hvacjoy/joyline/pkg/usecase"
	"github.com/hvacjoy/joyline/pkg/utils/errutil"
)

type transcriptLogRequest struct {
	Caller    string          `json:"caller"`
	Text      string          `json:"text"`
	Role      string          `json:"role"`
	CallSID   string          `json:"call_sid"`
	TurnIndex int             `json:"turn_index"`
	Meta      *model.TurnMeta `json:"meta,omitempty"`
}

type transcriptLogResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// transcriptLogHandler appends one transcript line and returns its stored ID.
func transcriptLogHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req transcriptLogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid transcript log body"), http.StatusBadRequest)
			return
		}

		role := types.Role(req.Role)
		if req.Role == "" {
			role = types.RoleCaller
		}

		stored, err := uc.LogTranscript(ctx, &model.TranscriptLine{
			CallSID:   types.CallSID(req.CallSID),
			Caller:    req.Caller,
			Role:      role,
			Text:      req.Text,
			TurnIndex: req.TurnIndex,
			Meta:      req.Meta,
		})
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, usecase.ErrMissingCallSID) ||
				errors.Is(err, usecase.ErrMissingText) ||
				errors.Is(err, usecase.ErrInvalidRole) {
				status = http.StatusBadRequest
			}
			errutil.HandleHTTP(ctx, w, err, status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(transcriptLogResponse{
			OK: true,
			ID: string(stored.ID),
		}); err != nil {
			errutil.Handle(ctx, err, "failed to write transcript log response")
		}
	}
}

// transcriptListHandler returns the full transcript of one call.
func transcriptListHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		callSID := types.CallSID(chi.URLParam(r, "callSID"))
		lines, err := uc.ListTranscript(ctx, callSID)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, usecase.ErrMissingCallSID) {
				status = http.StatusBadRequest
			}
			errutil.HandleHTTP(ctx, w, err, status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"lines": lines}); err != nil {
			errutil.Handle(ctx, err, "failed to write transcript list response")
		}
	}
}
