package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hvacjoy/joyline/pkg/service/tts"
)

// TTS holds CLI flags for speech synthesis configuration
type TTS struct {
	apiKey  string
	voiceID string
}

// Flags returns CLI flags for speech synthesis configuration
func (t *TTS) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "elevenlabs-api-key",
			Usage:       "ElevenLabs API key",
			Category:    "Speech",
			Sources:     cli.EnvVars("JOYLINE_ELEVENLABS_API_KEY"),
			Destination: &t.apiKey,
		},
		&cli.StringFlag{
			Name:        "elevenlabs-voice-id",
			Usage:       "Default ElevenLabs voice ID",
			Category:    "Speech",
			Sources:     cli.EnvVars("JOYLINE_ELEVENLABS_VOICE_ID"),
			Destination: &t.voiceID,
		},
	}
}

func (t TTS) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("api_key.len", len(t.apiKey)),
		slog.String("voice_id", t.voiceID),
	)
}

// Configure creates the speech synthesis service. Returns nil when no API
// key is set; the audio endpoint then reports synthesis as unconfigured.
func (t *TTS) Configure() (tts.Service, error) {
	if t.apiKey == "" {
		return nil, nil
	}
	if t.voiceID == "" {
		return nil, goerr.New("elevenlabs-voice-id is required when elevenlabs-api-key is set")
	}

	svc, err := tts.New(t.apiKey, t.voiceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create speech synthesis service")
	}

	return svc, nil
}
