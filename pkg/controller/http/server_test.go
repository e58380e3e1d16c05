package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	httpctrl "github.com/hvacjoy/joyline/pkg/controller/http"
	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/repository/memory"
	"github.com/hvacjoy/joyline/pkg/service/booking"
	"github.com/hvacjoy/joyline/pkg/usecase"
)

type mockBooking struct {
	extractFn func(ctx context.Context, input booking.Input) (*booking.Result, error)
}

func (m *mockBooking) ExtractTurn(ctx context.Context, input booking.Input) (*booking.Result, error) {
	return m.extractFn(ctx, input)
}

type mockTTS struct {
	lastText  string
	lastVoice string
	payload   string
	err       error
}

func (m *mockTTS) Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	m.lastText = text
	m.lastVoice = voiceID
	if m.err != nil {
		return nil, m.err
	}
	return io.NopCloser(strings.NewReader(m.payload)), nil
}

func newServer(t *testing.T, opts ...usecase.Option) *httpctrl.Server {
	t.Helper()
	return httpctrl.New(usecase.New(memory.New(), opts...))
}

func postJSON(t *testing.T, srv http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	gt.NoError(t, err).Required()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestTurnEndpointValidation(t *testing.T) {
	srv := newServer(t)

	t.Run("missing speech", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/turn", map[string]string{"call_sid": "CA100"})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("missing call sid", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/turn", map[string]string{"speech": "hello"})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/turn", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestTurnEndpointHeuristicAddress(t *testing.T) {
	srv := newServer(t)

	rec := postJSON(t, srv, "/api/turn", map[string]string{
		"speech":   "it's 123 Main Street, Atlanta Georgia 30301",
		"caller":   "+14045550001",
		"call_sid": "CA200",
	})
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		Reply             string      `json:"reply"`
		Slots             model.Slots `json:"slots"`
		NeedsConfirmation bool        `json:"needs_confirmation"`
	}
	gt.NoError(t, json.NewDecoder(rec.Body).Decode(&resp)).Required()

	gt.Value(t, resp.NeedsConfirmation).Equal(true)
	gt.Value(t, strings.Contains(resp.Reply, "Did I get that right")).Equal(true)
	gt.Value(t, resp.Slots.ServiceAddress.Zip).NotNil()
}

func TestTurnEndpointMissingModel(t *testing.T) {
	srv := newServer(t)

	// Free-form speech has nothing the heuristics can capture, so the turn
	// needs the language model. Without one configured that is a server
	// configuration error, not a client mistake.
	rec := postJSON(t, srv, "/api/turn", map[string]string{
		"speech":   "my house has been making a weird noise lately",
		"call_sid": "CA201",
	})
	gt.Number(t, rec.Code).Equal(http.StatusInternalServerError)
}

func TestTurnEndpointModelReply(t *testing.T) {
	name := "Jane Doe"
	svc := &mockBooking{
		extractFn: func(ctx context.Context, input booking.Input) (*booking.Result, error) {
			return &booking.Result{
				Reply: "Thanks Jane. What's the service address?",
				Slots: model.Slots{FullName: &name},
			}, nil
		},
	}
	srv := newServer(t, usecase.WithBooking(svc))

	rec := postJSON(t, srv, "/api/turn", map[string]string{
		"speech":   "hi, this is Jane Doe",
		"call_sid": "CA202",
	})
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		Reply string      `json:"reply"`
		Slots model.Slots `json:"slots"`
		Done  bool        `json:"done"`
	}
	gt.NoError(t, json.NewDecoder(rec.Body).Decode(&resp)).Required()

	gt.Value(t, strings.Contains(resp.Reply, "service address")).Equal(true)
	gt.Value(t, resp.Slots.FullName).NotNil()
	gt.Value(t, *resp.Slots.FullName).Equal("Jane Doe")
	gt.Value(t, resp.Done).Equal(false)
}

func TestTwilioWebhookGreeting(t *testing.T) {
	srv := newServer(t)

	form := url.Values{}
	form.Set("From", "+14045550001")
	form.Set("CallSid", "CA300")

	req := httptest.NewRequest(http.MethodPost, "/hooks/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Header().Get("Content-Type")).Equal("text/xml")

	body := rec.Body.String()
	gt.Value(t, strings.Contains(body, "<Gather")).Equal(true)
	gt.Value(t, strings.Contains(body, "/api/tts?text=")).Equal(true)
	gt.Value(t, strings.Contains(body, "<Hangup")).Equal(false)
}

func TestTwilioWebhookMidCall(t *testing.T) {
	srv := newServer(t)

	form := url.Values{}
	form.Set("From", "+14045550001")
	form.Set("CallSid", "CA301")
	form.Set("SpeechResult", "it's 123 Main Street, Atlanta Georgia 30301")

	req := httptest.NewRequest(http.MethodPost, "/hooks/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Number(t, rec.Code).Equal(http.StatusOK)

	body := rec.Body.String()
	gt.Value(t, strings.Contains(body, "<Play>")).Equal(true)
	gt.Value(t, strings.Contains(body, `<Pause length="1"`)).Equal(true)
	gt.Value(t, strings.Contains(body, "<Gather")).Equal(true)
}

func TestTwilioWebhookTurnFailureHangsUp(t *testing.T) {
	// No language model configured, so a free-form turn fails. The caller
	// must still hear a handoff line instead of dead air or an HTTP error.
	srv := newServer(t)

	form := url.Values{}
	form.Set("From", "+14045550001")
	form.Set("CallSid", "CA302")
	form.Set("SpeechResult", "my house has been making a weird noise lately")

	req := httptest.NewRequest(http.MethodPost, "/hooks/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Number(t, rec.Code).Equal(http.StatusOK)

	body := rec.Body.String()
	gt.Value(t, strings.Contains(body, "<Play>")).Equal(true)
	gt.Value(t, strings.Contains(body, "<Hangup")).Equal(true)
}

func TestTwilioWebhookPublicURL(t *testing.T) {
	uc := usecase.New(memory.New())
	srv := httpctrl.New(uc, httpctrl.WithPublicURL("https://voice.example.com"))

	form := url.Values{}
	form.Set("CallSid", "CA303")

	req := httptest.NewRequest(http.MethodPost, "/hooks/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, strings.Contains(rec.Body.String(), "https://voice.example.com/api/tts?text=")).Equal(true)
}

func TestTTSEndpoint(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		srv := newServer(t)
		req := httptest.NewRequest(http.MethodGet, "/api/tts?text=hello", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusInternalServerError)
	})

	t.Run("missing text", func(t *testing.T) {
		srv := newServer(t, usecase.WithTTS(&mockTTS{payload: "mp3"}))
		req := httptest.NewRequest(http.MethodGet, "/api/tts", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("streams audio", func(t *testing.T) {
		svc := &mockTTS{payload: "fake-mp3-bytes"}
		srv := newServer(t, usecase.WithTTS(svc))

		req := httptest.NewRequest(http.MethodGet, "/api/tts?text=hello+there&voiceId=v42", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Header().Get("Content-Type")).Equal("audio/mpeg")
		gt.Value(t, rec.Body.String()).Equal("fake-mp3-bytes")
		gt.Value(t, svc.lastText).Equal("hello there")
		gt.Value(t, svc.lastVoice).Equal("v42")
	})
}

func TestTranscriptEndpoints(t *testing.T) {
	srv := newServer(t)

	t.Run("log and list round trip", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/transcripts/log", map[string]any{
			"call_sid": "CA400",
			"caller":   "+14045550001",
			"text":     "my AC is out",
		})
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		var logged struct {
			OK bool   `json:"ok"`
			ID string `json:"id"`
		}
		gt.NoError(t, json.NewDecoder(rec.Body).Decode(&logged)).Required()
		gt.Value(t, logged.OK).Equal(true)
		gt.String(t, logged.ID).NotEqual("")

		req := httptest.NewRequest(http.MethodGet, "/api/transcripts/CA400", nil)
		listRec := httptest.NewRecorder()
		srv.ServeHTTP(listRec, req)
		gt.Number(t, listRec.Code).Equal(http.StatusOK)

		var listed struct {
			Lines []*model.TranscriptLine `json:"lines"`
		}
		gt.NoError(t, json.NewDecoder(listRec.Body).Decode(&listed)).Required()
		gt.Array(t, listed.Lines).Length(1)
		gt.Value(t, listed.Lines[0].Text).Equal("my AC is out")
	})

	t.Run("missing call sid", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/transcripts/log", map[string]any{"text": "hello"})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("missing text", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/transcripts/log", map[string]any{"call_sid": "CA401"})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("invalid role", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/transcripts/log", map[string]any{
			"call_sid": "CA402",
			"text":     "hello",
			"role":     "operator",
		})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestDiagEndpoints(t *testing.T) {
	t.Run("capability report", func(t *testing.T) {
		srv := newServer(t, usecase.WithTTS(&mockTTS{payload: "mp3"}))

		req := httptest.NewRequest(http.MethodGet, "/api/diag", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		var report struct {
			PolicyVersion      string `json:"policy_version"`
			LLMConfigured      bool   `json:"llm_configured"`
			CalendarConfigured bool   `json:"calendar_configured"`
			TTSConfigured      bool   `json:"tts_configured"`
		}
		gt.NoError(t, json.NewDecoder(rec.Body).Decode(&report)).Required()
		gt.Value(t, report.PolicyVersion).Equal("v1")
		gt.Value(t, report.LLMConfigured).Equal(false)
		gt.Value(t, report.CalendarConfigured).Equal(false)
		gt.Value(t, report.TTSConfigured).Equal(true)
	})

	t.Run("calendar diag without calendar", func(t *testing.T) {
		srv := newServer(t)
		req := httptest.NewRequest(http.MethodGet, "/api/diag/calendar", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusServiceUnavailable)
	})
}
