package http

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"

	"github.com/hvacjoy/joyline/pkg/domain/types"
	"github.com/hvacjoy/joyline/pkg/usecase"
	"github.com/hvacjoy/joyline/pkg/utils/errutil"
	"github.com/hvacjoy/joyline/pkg/utils/logging"
)

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type playVerb struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type pauseVerb struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type gatherVerb struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	Play          *playVerb
}

type hangupVerb struct {
	XMLName xml.Name `xml:"Hangup"`
}

// twilioWebhookHandler is the telephony boundary: one POST per caller
// utterance, answered with TwiML that speaks the reply and either listens
// again or hangs up. The first turn of a call has no speech and gets the
// greeting.
func (s *Server) twilioWebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseForm(); err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		caller := r.PostFormValue("From")
		if caller == "" {
			caller = "Unknown"
		}
		callSID := types.CallSID(r.PostFormValue("CallSid"))
		speech := r.PostFormValue("SpeechResult")

		if speech == "" {
			s.writeTwiML(ctx, w, twimlResponse{Verbs: []any{
				&gatherVerb{
					Input:         "speech",
					Action:        "/hooks/twilio",
					Method:        "POST",
					SpeechTimeout: "auto",
					Play:          &playVerb{URL: s.ttsURL(r, s.uc.Policy().Greeting)},
				},
			}})
			return
		}

		out, err := s.uc.HandleTurn(ctx, usecase.TurnInput{
			Speech:  speech,
			Caller:  caller,
			CallSID: callSID,
		})
		if err != nil {
			// The caller hears a handoff line rather than an error; the
			// real cause goes to the operator log.
			errutil.Handle(ctx, err, "turn failed inside telephony webhook")
			s.writeTwiML(ctx, w, twimlResponse{Verbs: []any{
				&playVerb{URL: s.ttsURL(r, "Sorry, I ran into a problem. I will connect you to a live agent.")},
				&hangupVerb{},
			}})
			return
		}

		if out.Done {
			text := out.Reply
			if out.Goodbye != "" {
				text = text + " " + out.Goodbye
			}
			s.writeTwiML(ctx, w, twimlResponse{Verbs: []any{
				&playVerb{URL: s.ttsURL(r, text)},
				&hangupVerb{},
			}})
			return
		}

		s.writeTwiML(ctx, w, twimlResponse{Verbs: []any{
			&playVerb{URL: s.ttsURL(r, out.Reply)},
			&pauseVerb{Length: 1},
			&gatherVerb{
				Input:         "speech",
				Action:        "/hooks/twilio",
				Method:        "POST",
				SpeechTimeout: "auto",
			},
		}})
	}
}

// ttsURL builds the audio link the telephony provider fetches for playback.
func (s *Server) ttsURL(r *http.Request, text string) string {
	base := s.publicURL
	if base == "" {
		proto := r.Header.Get("X-Forwarded-Proto")
		if proto == "" {
			proto = "http"
		}
		base = proto + "://" + r.Host
	}
	return base + "/api/tts?text=" + url.QueryEscape(text)
}

func (s *Server) writeTwiML(ctx context.Context, w http.ResponseWriter, resp twimlResponse) {
	body, err := xml.Marshal(resp)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	if _, err := w.Write(append([]byte(xml.Header), body...)); err != nil {
		logging.From(ctx).Error("failed to write TwiML response", "error", err)
	}
}
