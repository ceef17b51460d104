package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/msomdec/prayerlift/internal/domain"
)

// Composer produces the generated prayer for a request. It never fails.
type Composer interface {
	Compose(ctx context.Context, request, author string) string
}

const (
	maxPrayerTextLen = 2000
	generateTimeout  = 30 * time.Second
)

// PrayerService handles the feed, submissions and marks.
type PrayerService struct {
	store    domain.Store
	composer Composer
	logger   *slog.Logger

	wg sync.WaitGroup
}

func NewPrayerService(store domain.Store, composer Composer, logger *slog.Logger) *PrayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrayerService{store: store, composer: composer, logger: logger}
}

// Feed lists every prayer newest first, annotated for the viewer.
func (s *PrayerService) Feed(ctx context.Context, viewer *domain.Identity) ([]domain.FeedItem, error) {
	viewerID := ""
	if viewer != nil && viewer.User != nil {
		viewerID = viewer.User.ID
	}
	items, err := s.store.Prayers().Feed(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	return items, nil
}

// Submit stores a new prayer for identity. When authorName differs from
// the current display name the user is renamed first; a name that is
// already taken keeps the old one. The generated prayer is composed after
// the commit and stored in the background.
func (s *PrayerService) Submit(ctx context.Context, identity *domain.Identity, text, authorName string) (*domain.Prayer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: prayer text is required", domain.ErrInvalidInput)
	}
	if len(text) > maxPrayerTextLen {
		return nil, fmt.Errorf("%w: prayer text must be at most %d characters", domain.ErrInvalidInput, maxPrayerTextLen)
	}

	user := identity.User
	authorName = strings.TrimSpace(authorName)
	displayName := user.DisplayName

	prayer := &domain.Prayer{
		ID:        ulid.Make().String(),
		Text:      text,
		AuthorID:  &user.ID,
		CreatedAt: time.Now().UTC(),
	}

	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		if authorName != "" && authorName != user.DisplayName && validateDisplayName(authorName) == nil {
			err := tx.Users().UpdateDisplayName(ctx, user.ID, authorName)
			switch {
			case err == nil:
				displayName = authorName
			case errors.Is(err, domain.ErrDuplicateDisplayName):
				s.logger.Info("display name taken, keeping current name",
					"user_id", user.ID, "requested", authorName)
			default:
				return err
			}
		}
		return tx.Prayers().Create(ctx, prayer)
	})
	if err != nil {
		return nil, fmt.Errorf("submit prayer: %w", err)
	}
	user.DisplayName = displayName

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.generate(context.WithoutCancel(ctx), prayer.ID, text, displayName)
	}()

	return prayer, nil
}

func (s *PrayerService) generate(ctx context.Context, prayerID, text, author string) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	generated := s.composer.Compose(ctx, text, author)
	if err := s.store.Prayers().SetGeneratedPrayer(ctx, prayerID, generated); err != nil {
		s.logger.Error("store generated prayer", "prayer_id", prayerID, "error", err)
		return
	}
	s.logger.Debug("generated prayer stored", "prayer_id", prayerID)
}

// Wait blocks until every background generation has finished.
func (s *PrayerService) Wait() {
	s.wg.Wait()
}

// Mark records that the viewer prayed for prayerID and returns the new
// mark count. Marking twice is a no-op.
func (s *PrayerService) Mark(ctx context.Context, identity *domain.Identity, prayerID string) (int, error) {
	return s.toggle(ctx, identity, prayerID, true)
}

// Unmark removes the viewer's mark and returns the new mark count.
func (s *PrayerService) Unmark(ctx context.Context, identity *domain.Identity, prayerID string) (int, error) {
	return s.toggle(ctx, identity, prayerID, false)
}

func (s *PrayerService) toggle(ctx context.Context, identity *domain.Identity, prayerID string, mark bool) (int, error) {
	var count int
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Prayers().GetByID(ctx, prayerID); err != nil {
			return err
		}
		var err error
		if mark {
			err = tx.Marks().Mark(ctx, identity.User.ID, prayerID)
		} else {
			err = tx.Marks().Unmark(ctx, identity.User.ID, prayerID)
		}
		if err != nil {
			return err
		}
		count, err = tx.Marks().Count(ctx, prayerID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("update prayer mark: %w", err)
	}
	return count, nil
}
