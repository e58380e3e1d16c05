package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/domain/types"
	"github.com/hvacjoy/joyline/pkg/usecase"
	"github.com/hvacjoy/joyline/pkg/utils/errutil"
)

type turnRequest struct {
	Speech       string       `json:"speech"`
	Caller       string       `json:"caller"`
	CallSID      string       `json:"call_sid"`
	Slots        *model.Slots `json:"slots"`
	LastQuestion string       `json:"last_question"`
}

type turnResponse struct {
	Reply             string      `json:"reply"`
	Slots             model.Slots `json:"slots"`
	Done              bool        `json:"done"`
	Goodbye           string      `json:"goodbye,omitempty"`
	NeedsConfirmation bool        `json:"needs_confirmation,omitempty"`
}

// turnHandler resolves one conversation turn. Client input errors are 400,
// a missing language-model capability is 500; everything the dialogue layer
// can recover from comes back as a normal 200 reply.
func turnHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req turnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid turn request body"), http.StatusBadRequest)
			return
		}

		out, err := uc.HandleTurn(ctx, usecase.TurnInput{
			Speech:       req.Speech,
			Caller:       req.Caller,
			CallSID:      types.CallSID(req.CallSID),
			Slots:        req.Slots,
			LastQuestion: req.LastQuestion,
		})
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, usecase.ErrMissingSpeech) || errors.Is(err, usecase.ErrMissingCallSID) {
				status = http.StatusBadRequest
			}
			errutil.HandleHTTP(ctx, w, err, status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(turnResponse{
			Reply:             out.Reply,
			Slots:             out.Slots,
			Done:              out.Done,
			Goodbye:           out.Goodbye,
			NeedsConfirmation: out.NeedsConfirmation,
		}); err != nil {
			errutil.Handle(ctx, err, "failed to write turn response")
		}
	}
}
