package domain

import (
	"context"
	"time"
)

// Prayer is a submitted prayer request. Text never changes after creation;
// GeneratedPrayer is filled in once the AI provider has answered.
type Prayer struct {
	ID              string
	Text            string
	AuthorID        *string
	CreatedAt       time.Time
	GeneratedPrayer *string
}

// SpeechText returns the text to synthesize for the given audio type.
// A "generated" request falls back to the original text while the
// generated prayer is still missing.
func (p *Prayer) SpeechText(audioType string) string {
	if audioType == AudioTypeGenerated && p.GeneratedPrayer != nil && *p.GeneratedPrayer != "" {
		return *p.GeneratedPrayer
	}
	return p.Text
}

const (
	AudioTypeOriginal  = "original"
	AudioTypeGenerated = "generated"
)

// FeedItem is a prayer as shown in the feed for a particular viewer.
type FeedItem struct {
	Prayer
	AuthorName     string
	MarkCount      int
	MarkedByViewer bool
}

type PrayerRepository interface {
	Create(ctx context.Context, prayer *Prayer) error
	GetByID(ctx context.Context, id string) (*Prayer, error)
	SetGeneratedPrayer(ctx context.Context, id, text string) error
	// Feed lists all prayers newest first, annotated for viewerID.
	Feed(ctx context.Context, viewerID string) ([]FeedItem, error)
}

// PrayerMark records that a user has prayed for a prayer. At most one mark
// exists per (user, prayer) pair.
type PrayerMark struct {
	UserID    string
	PrayerID  string
	CreatedAt time.Time
}

type MarkRepository interface {
	// Mark is idempotent. It returns ErrNotFound when the prayer or the
	// user does not exist.
	Mark(ctx context.Context, userID, prayerID string) error
	// Unmark removes the mark if present; absence is not an error.
	Unmark(ctx context.Context, userID, prayerID string) error
	Count(ctx context.Context, prayerID string) (int, error)
	Exists(ctx context.Context, userID, prayerID string) (bool, error)
}
