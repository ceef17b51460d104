package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/msomdec/prayerlift/internal/domain"
)

// AudioSource returns synthesized speech for text, or false when synthesis
// is unavailable.
type AudioSource interface {
	GetOrSynthesize(ctx context.Context, text, voice string) ([]byte, bool)
}

// Audio is a synthesized payload with its content type.
type Audio struct {
	Data     []byte
	MIMEType string
}

// Base64 encodes the payload for JSON transport.
func (a *Audio) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// AudioService serves spoken versions of prayers.
type AudioService struct {
	prayers domain.PrayerRepository
	source  AudioSource
}

func NewAudioService(prayers domain.PrayerRepository, source AudioSource) *AudioService {
	return &AudioService{prayers: prayers, source: source}
}

// PrayerAudio returns speech for the original or generated text of a
// prayer. A generated request for a prayer without a generated text reads
// the original instead.
func (s *AudioService) PrayerAudio(ctx context.Context, prayerID, audioType string) (*Audio, error) {
	prayer, err := s.prayers.GetByID(ctx, prayerID)
	if err != nil {
		return nil, err
	}

	data, ok := s.source.GetOrSynthesize(ctx, prayer.SpeechText(audioType), "")
	if !ok {
		return nil, fmt.Errorf("synthesize prayer %s: %w", prayerID, domain.ErrUnavailable)
	}
	return &Audio{Data: data, MIMEType: "audio/mpeg"}, nil
}
