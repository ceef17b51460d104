package handler

import (
	"net/http"

	"github.com/msomdec/prayerlift/internal/domain"
	"github.com/msomdec/prayerlift/internal/service"
)

// AudioHandler serves spoken prayers.
type AudioHandler struct {
	audio *service.AudioService
}

// NewAudioHandler creates a new AudioHandler.
func NewAudioHandler(audio *service.AudioService) *AudioHandler {
	return &AudioHandler{audio: audio}
}

// HandleAudio returns the prayer text as base64 MP3.
// GET /audio/{id}?audio_type=original|generated
// Response: {"audio":"...","type":"audio/mpeg"}, 404, or 503 when speech
// synthesis is unavailable
func (h *AudioHandler) HandleAudio(w http.ResponseWriter, r *http.Request) {
	audioType := r.URL.Query().Get("audio_type")
	switch audioType {
	case "":
		audioType = domain.AudioTypeOriginal
	case domain.AudioTypeOriginal, domain.AudioTypeGenerated:
	default:
		writeError(w, http.StatusUnprocessableEntity, "audio_type must be original or generated.")
		return
	}

	audio, err := h.audio.PrayerAudio(r.Context(), r.PathValue("id"), audioType)
	if err != nil {
		writeServiceError(w, r, "prayer audio", err)
		return
	}

	writeJSON(w, http.StatusOK, AudioDTO{Audio: audio.Base64(), Type: audio.MIMEType})
}
