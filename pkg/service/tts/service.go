package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
)

// maxTextRunes caps synthesized text to keep latency reasonable on a live
// call.
const maxTextRunes = 800

// Service synthesizes speech for the voice channel.
type Service interface {
	// Synthesize returns an MP3 stream for the given text. The caller owns
	// closing the stream. An empty voiceID uses the configured default.
	Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error)
}

// client proxies the ElevenLabs text-to-speech API.
type client struct {
	apiKey         string
	defaultVoiceID string
	baseURL        string
	httpClient     *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates the TTS service.
func New(apiKey, defaultVoiceID string, opts ...Option) (Service, error) {
	if apiKey == "" {
		return nil, goerr.New("TTS API key is required")
	}
	if defaultVoiceID == "" {
		return nil, goerr.New("TTS voice ID is required")
	}

	c := &client{
		apiKey:         apiKey,
		defaultVoiceID: defaultVoiceID,
		baseURL:        "https://api.elevenlabs.io",
		httpClient:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (c *client) Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	if text == "" {
		return nil, goerr.New("text is required")
	}
	if voiceID == "" {
		voiceID = c.defaultVoiceID
	}
	if runes := []rune(text); len(runes) > maxTextRunes {
		text = string(runes[:maxTextRunes])
	}

	body, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: "eleven_multilingual_v2",
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.8,
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode synthesis request")
	}

	endpoint := c.baseURL + "/v1/text-to-speech/" + url.PathEscape(voiceID) +
		"?optimize_streaming_latency=0&output_format=mp3_44100_128"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build synthesis request")
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "synthesis request failed")
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, goerr.New("synthesis returned non-OK status",
			goerr.V("status", resp.StatusCode),
			goerr.V("detail", string(detail)))
	}

	return resp.Body, nil
}
