package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MIMEType is the content type of synthesized audio.
const MIMEType = "audio/mpeg"

// ErrNotConfigured is returned by a synthesizer without credentials.
var ErrNotConfigured = errors.New("speech synthesis not configured")

// Synthesizer turns formatted text into audio for a voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// maxAudioBytes caps a single synthesis response.
const maxAudioBytes = 32 << 20

// VoiceSettings tunes ElevenLabs delivery.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns a calm, warm delivery suited to prayer.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{Stability: 0.5, SimilarityBoost: 0.5, Style: 0.5, UseSpeakerBoost: true}
}

// ElevenLabs calls the ElevenLabs text-to-speech API.
type ElevenLabs struct {
	apiKey   string
	baseURL  string
	model    string
	settings VoiceSettings
	client   *http.Client
}

// NewElevenLabs returns a synthesizer posting to baseURL/{voice}. An empty
// apiKey makes every call fail with ErrNotConfigured.
func NewElevenLabs(apiKey, baseURL, model string, timeout time.Duration) *ElevenLabs {
	return &ElevenLabs{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		settings: DefaultVoiceSettings(),
		client:   &http.Client{Timeout: timeout},
	}
}

// Model returns the synthesis model id, which is part of the cache key.
func (e *ElevenLabs) Model() string { return e.model }

type elevenLabsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if e.apiKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(elevenLabsRequest{
		Text:          text,
		ModelID:       e.model,
		VoiceSettings: e.settings,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/"+voice, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", MIMEType)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("read elevenlabs audio: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("elevenlabs returned empty audio")
	}
	return data, nil
}
