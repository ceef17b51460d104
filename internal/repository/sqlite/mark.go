package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/msomdec/prayerlift/internal/domain"
)

// markRepo implements domain.MarkRepository using SQLite. Duplicate marks
// are prevented by the (user_id, prayer_id) primary key.
type markRepo struct {
	db dbtx
}

func (r *markRepo) Mark(ctx context.Context, userID, prayerID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO prayer_marks (user_id, prayer_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, prayer_id) DO NOTHING`,
		userID, prayerID, time.Now().UTC(),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert prayer mark: %w", err)
	}
	return nil
}

func (r *markRepo) Unmark(ctx context.Context, userID, prayerID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM prayer_marks WHERE user_id = ? AND prayer_id = ?",
		userID, prayerID,
	)
	if err != nil {
		return fmt.Errorf("delete prayer mark: %w", err)
	}
	return nil
}

func (r *markRepo) Count(ctx context.Context, prayerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM prayer_marks WHERE prayer_id = ?", prayerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count prayer marks: %w", err)
	}
	return n, nil
}

func (r *markRepo) Exists(ctx context.Context, userID, prayerID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM prayer_marks WHERE user_id = ? AND prayer_id = ?)`,
		userID, prayerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check prayer mark: %w", err)
	}
	return exists, nil
}
