package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/prayerlift/internal/domain"
)

// prayerRepo implements domain.PrayerRepository using SQLite.
type prayerRepo struct {
	db dbtx
}

func (r *prayerRepo) Create(ctx context.Context, prayer *domain.Prayer) error {
	if prayer.CreatedAt.IsZero() {
		prayer.CreatedAt = time.Now().UTC()
	}

	var author, generated sql.NullString
	if prayer.AuthorID != nil {
		author = sql.NullString{String: *prayer.AuthorID, Valid: true}
	}
	if prayer.GeneratedPrayer != nil {
		generated = sql.NullString{String: *prayer.GeneratedPrayer, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO prayers (id, text, author_id, created_at, generated_prayer)
		 VALUES (?, ?, ?, ?, ?)`,
		prayer.ID, prayer.Text, author, prayer.CreatedAt.UTC(), generated,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("prayer author: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert prayer: %w", err)
	}
	return nil
}

func (r *prayerRepo) GetByID(ctx context.Context, id string) (*domain.Prayer, error) {
	var (
		p                 domain.Prayer
		author, generated sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, text, author_id, created_at, generated_prayer
		 FROM prayers WHERE id = ?`, id,
	).Scan(&p.ID, &p.Text, &author, &p.CreatedAt, &generated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query prayer: %w", err)
	}
	p.AuthorID = stringPtr(author)
	p.GeneratedPrayer = stringPtr(generated)
	return &p, nil
}

func (r *prayerRepo) SetGeneratedPrayer(ctx context.Context, id, text string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE prayers SET generated_prayer = ? WHERE id = ?", text, id,
	)
	if err != nil {
		return fmt.Errorf("update generated prayer: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *prayerRepo) Feed(ctx context.Context, viewerID string) ([]domain.FeedItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.text, p.author_id, p.created_at, p.generated_prayer,
		        COALESCE(u.display_name, ''),
		        (SELECT COUNT(*) FROM prayer_marks pm WHERE pm.prayer_id = p.id),
		        EXISTS (SELECT 1 FROM prayer_marks pm
		                WHERE pm.prayer_id = p.id AND pm.user_id = ?)
		 FROM prayers p
		 LEFT JOIN users u ON u.id = p.author_id
		 ORDER BY p.created_at DESC, p.id DESC`, viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	defer rows.Close()

	var items []domain.FeedItem
	for rows.Next() {
		var (
			item              domain.FeedItem
			author, generated sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Text, &author, &item.CreatedAt, &generated,
			&item.AuthorName, &item.MarkCount, &item.MarkedByViewer); err != nil {
			return nil, fmt.Errorf("scan feed item: %w", err)
		}
		item.AuthorID = stringPtr(author)
		item.GeneratedPrayer = stringPtr(generated)
		items = append(items, item)
	}
	return items, rows.Err()
}
