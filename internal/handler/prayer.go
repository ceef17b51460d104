package handler

import (
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/prayerlift/internal/service"
)

// PrayerHandler serves the feed, submissions and marks.
type PrayerHandler struct {
	prayers *service.PrayerService
}

// NewPrayerHandler creates a new PrayerHandler.
func NewPrayerHandler(prayers *service.PrayerService) *PrayerHandler {
	return &PrayerHandler{prayers: prayers}
}

// HandleFeed lists every prayer for the current identity.
// GET /
func (h *PrayerHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	items, err := h.prayers.Feed(r.Context(), identity)
	if err != nil {
		writeServiceError(w, r, "load feed", err)
		return
	}

	writeJSON(w, http.StatusOK, FeedDTO{
		User:    toUserDTO(identity.User),
		Prayers: toPrayerDTOs(items),
	})
}

// HandleSubmit stores a new prayer request.
// POST /prayers
// Form: prayer_text, author_name
func (h *PrayerHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body.")
		return
	}

	identity := IdentityFromContext(r.Context())
	if _, err := h.prayers.Submit(r.Context(), identity, r.FormValue("prayer_text"), r.FormValue("author_name")); err != nil {
		writeServiceError(w, r, "submit prayer", err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMark records that the viewer prayed for a prayer.
// POST /mark/{id}
func (h *PrayerHandler) HandleMark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

// HandleUnmark removes the viewer's mark.
// DELETE /mark/{id}
func (h *PrayerHandler) HandleUnmark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *PrayerHandler) toggle(w http.ResponseWriter, r *http.Request, mark bool) {
	identity := IdentityFromContext(r.Context())
	id := r.PathValue("id")

	var (
		count int
		err   error
	)
	if mark {
		count, err = h.prayers.Mark(r.Context(), identity, id)
	} else {
		count, err = h.prayers.Unmark(r.Context(), identity, id)
	}
	if err != nil {
		writeServiceError(w, r, "update mark", err)
		return
	}

	if isDatastarRequest(r) {
		patchMarkSignals(w, r, id, count, mark)
		return
	}
	writeJSON(w, http.StatusOK, MarkDTO{Success: true, Count: count, Marked: mark})
}

// markSignal is the per-prayer client state patched after a mark change.
type markSignal struct {
	Count  int  `json:"count"`
	Marked bool `json:"marked"`
}

func patchMarkSignals(w http.ResponseWriter, r *http.Request, id string, count int, marked bool) {
	sse := datastar.NewSSE(w, r)
	signals := map[string]map[string]markSignal{
		"marks": {id: {Count: count, Marked: marked}},
	}
	if err := sse.MarshalAndPatchSignals(signals); err != nil {
		slog.ErrorContext(r.Context(), "patch mark signals", "error", err)
	}
}

func isDatastarRequest(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}
