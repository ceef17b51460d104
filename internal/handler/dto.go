package handler

import (
	"time"

	"github.com/msomdec/prayerlift/internal/domain"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Anonymous   bool   `json:"anonymous"`
	CreatedAt   string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Anonymous:   u.IsAnonymous(),
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

// PrayerDTO is the JSON representation of a feed entry.
type PrayerDTO struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	AuthorName      string  `json:"authorName"`
	CreatedAt       string  `json:"createdAt"`
	GeneratedPrayer *string `json:"generatedPrayer"`
	MarkCount       int     `json:"markCount"`
	MarkedByViewer  bool    `json:"markedByViewer"`
}

func toPrayerDTO(item domain.FeedItem) PrayerDTO {
	return PrayerDTO{
		ID:              item.ID,
		Text:            item.Text,
		AuthorName:      item.AuthorName,
		CreatedAt:       item.CreatedAt.Format(time.RFC3339),
		GeneratedPrayer: item.GeneratedPrayer,
		MarkCount:       item.MarkCount,
		MarkedByViewer:  item.MarkedByViewer,
	}
}

func toPrayerDTOs(items []domain.FeedItem) []PrayerDTO {
	dtos := make([]PrayerDTO, len(items))
	for i, item := range items {
		dtos[i] = toPrayerDTO(item)
	}
	return dtos
}

// FeedDTO is the response of the feed route.
type FeedDTO struct {
	User    UserDTO     `json:"user"`
	Prayers []PrayerDTO `json:"prayers"`
}

// MarkDTO is the response of the mark and unmark routes.
type MarkDTO struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Marked  bool `json:"marked"`
}

// AudioDTO carries base64 audio.
type AudioDTO struct {
	Audio string `json:"audio"`
	Type  string `json:"type"`
}
