// Package seed loads a small set of sample users, prayers and marks for
// local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/msomdec/prayerlift/internal/domain"
)

type samplePrayer struct {
	Author    string
	Text      string
	Generated string
}

var sampleUsers = []string{"Sarah M.", "Michael K.", "Jennifer L."}

var samplePrayers = []samplePrayer{
	{
		Author:    "Sarah M.",
		Text:      "Please pray for my grandmother who is in the hospital. She's been struggling with her health and the family could really use your support during this difficult time.",
		Generated: "Heavenly Father, we lift up Sarah's grandmother to You in prayer. We ask for Your healing touch upon her body and Your peace to surround the entire family during this challenging time. Grant the medical team wisdom and skill, and let Your love be felt in that hospital room. Amen.",
	},
	{
		Author:    "Michael K.",
		Text:      "I'm starting a new job next week and feeling really anxious. Pray for confidence and wisdom as I begin this new chapter.",
		Generated: "Lord, we pray for Michael as he steps into this new opportunity. Calm his anxious heart and fill him with confidence in Your plan for his life. Grant him wisdom in his decisions, favor with his colleagues, and peace that surpasses understanding. Guide his steps and let Your light shine through him. Amen.",
	},
	{
		Author:    "Jennifer L.",
		Text:      "Our community was hit by a severe storm last night. Many families lost their homes. Please pray for strength, comfort, and provision for all those affected.",
		Generated: "Compassionate God, our hearts go out to this community in their time of need. Comfort those who have lost their homes and possessions. Provide shelter, safety, and hope in the midst of this devastation. Raise up helpers and resources, and bind this community together with love and support. Bring restoration and renewal in Your perfect timing. Amen.",
	},
}

// Result counts what a Run inserted.
type Result struct {
	Users   int
	Prayers int
	Marks   int
}

// Run inserts the sample data in one transaction. It is idempotent:
// sample users that already exist are skipped along with their prayers.
// The n-th prayer is marked by the first n sample users.
func Run(ctx context.Context, store domain.Store, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var res Result
	err := store.WithTx(ctx, func(tx domain.Store) error {
		res = Result{}
		created := make(map[string]*domain.User, len(sampleUsers))
		for _, name := range sampleUsers {
			_, err := tx.Users().GetByDisplayName(ctx, name)
			if err == nil {
				continue // already exists
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("check user %s: %w", name, err)
			}
			user := &domain.User{ID: uuid.NewString(), DisplayName: name}
			if err := tx.Users().Create(ctx, user); err != nil {
				return fmt.Errorf("seed user %s: %w", name, err)
			}
			created[name] = user
			res.Users++
		}

		for i, sp := range samplePrayers {
			author, ok := created[sp.Author]
			if !ok {
				continue
			}
			generated := sp.Generated
			prayer := &domain.Prayer{
				ID:              ulid.Make().String(),
				Text:            sp.Text,
				AuthorID:        &author.ID,
				GeneratedPrayer: &generated,
			}
			if err := tx.Prayers().Create(ctx, prayer); err != nil {
				return fmt.Errorf("seed prayer by %s: %w", sp.Author, err)
			}
			res.Prayers++

			for _, name := range sampleUsers[:i+1] {
				marker, ok := created[name]
				if !ok {
					continue
				}
				if err := tx.Marks().Mark(ctx, marker.ID, prayer.ID); err != nil {
					return fmt.Errorf("seed mark: %w", err)
				}
				res.Marks++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logger.Info("sample data seeded", "users", res.Users, "prayers", res.Prayers, "marks", res.Marks)
	return res, nil
}
