package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/msomdec/prayerlift/internal/domain"
	"github.com/msomdec/prayerlift/internal/service"
)

// recordingSource echoes the requested text back as audio bytes.
type recordingSource struct {
	texts []string
	fail  bool
}

func (s *recordingSource) GetOrSynthesize(_ context.Context, text, _ string) ([]byte, bool) {
	s.texts = append(s.texts, text)
	if s.fail {
		return nil, false
	}
	return []byte("mp3:" + text), true
}

func seedPrayer(t *testing.T, prayers domain.PrayerRepository, id, text string, generated *string) {
	t.Helper()
	ctx := context.Background()
	if err := prayers.Create(ctx, &domain.Prayer{ID: id, Text: text}); err != nil {
		t.Fatalf("Create prayer: %v", err)
	}
	if generated != nil {
		if err := prayers.SetGeneratedPrayer(ctx, id, *generated); err != nil {
			t.Fatalf("SetGeneratedPrayer: %v", err)
		}
	}
}

func TestAudioService_PrayerAudio(t *testing.T) {
	db := newTestDB(t)
	generated := "Father, we lift her up. Amen."
	seedPrayer(t, db.Prayers(), "with-gen", "Pray for my mother", &generated)
	seedPrayer(t, db.Prayers(), "no-gen", "Pray for rain", nil)

	tests := []struct {
		name      string
		id        string
		audioType string
		wantText  string
	}{
		{"original", "with-gen", domain.AudioTypeOriginal, "Pray for my mother"},
		{"generated", "with-gen", domain.AudioTypeGenerated, generated},
		{"generated falls back to original", "no-gen", domain.AudioTypeGenerated, "Pray for rain"},
		{"unknown type reads original", "with-gen", "", "Pray for my mother"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &recordingSource{}
			svc := service.NewAudioService(db.Prayers(), source)

			audio, err := svc.PrayerAudio(context.Background(), tt.id, tt.audioType)
			if err != nil {
				t.Fatalf("PrayerAudio: %v", err)
			}
			if len(source.texts) != 1 || source.texts[0] != tt.wantText {
				t.Fatalf("expected synthesis of %q, got %v", tt.wantText, source.texts)
			}
			if audio.MIMEType != "audio/mpeg" {
				t.Fatalf("expected audio/mpeg, got %s", audio.MIMEType)
			}
			want := base64.StdEncoding.EncodeToString([]byte("mp3:" + tt.wantText))
			if audio.Base64() != want {
				t.Fatalf("expected base64 %q, got %q", want, audio.Base64())
			}
		})
	}
}

func TestAudioService_PrayerAudio_NotFound(t *testing.T) {
	db := newTestDB(t)
	source := &recordingSource{}
	svc := service.NewAudioService(db.Prayers(), source)

	_, err := svc.PrayerAudio(context.Background(), "missing", domain.AudioTypeOriginal)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(source.texts) != 0 {
		t.Fatal("expected no synthesis for a missing prayer")
	}
}

func TestAudioService_PrayerAudio_Unavailable(t *testing.T) {
	db := newTestDB(t)
	seedPrayer(t, db.Prayers(), "p", "Pray for peace", nil)
	svc := service.NewAudioService(db.Prayers(), &recordingSource{fail: true})

	_, err := svc.PrayerAudio(context.Background(), "p", domain.AudioTypeOriginal)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
