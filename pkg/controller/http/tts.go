package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hvacjoy/joyline/pkg/usecase"
	"github.com/hvacjoy/joyline/pkg/utils/errutil"
	"github.com/hvacjoy/joyline/pkg/utils/safe"
)

// ttsHandler streams synthesized speech for the telephony provider to play.
func ttsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		svc := uc.TTS()
		if svc == nil {
			errutil.HandleHTTP(ctx, w, goerr.New("speech synthesis is not configured"), http.StatusInternalServerError)
			return
		}

		text := r.URL.Query().Get("text")
		if text == "" {
			errutil.HandleHTTP(ctx, w, goerr.New("missing text parameter"), http.StatusBadRequest)
			return
		}
		voiceID := r.URL.Query().Get("voiceId")

		stream, err := svc.Synthesize(ctx, text, voiceID)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}
		defer safe.Close(ctx, stream)

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Cache-Control", "no-store")
		safe.Copy(ctx, w, stream)
	}
}
