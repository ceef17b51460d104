package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/prayerlift/internal/domain"
)

// userRepo implements domain.UserRepository using SQLite.
type userRepo struct {
	db dbtx
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, display_name, password_hash, created_at)
		 VALUES (?, ?, ?, ?)`,
		user.ID, user.DisplayName, nullString(user.PasswordHash), now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateDisplayName
		}
		return fmt.Errorf("insert user: %w", err)
	}

	user.CreatedAt = now
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanOne(ctx, "id", id)
}

func (r *userRepo) GetByDisplayName(ctx context.Context, name string) (*domain.User, error) {
	return r.scanOne(ctx, "display_name", name)
}

// scanOne loads a single user by a trusted column name.
func (r *userRepo) scanOne(ctx context.Context, column, value string) (*domain.User, error) {
	var (
		user domain.User
		hash sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, display_name, password_hash, created_at
		 FROM users WHERE `+column+` = ?`, value,
	).Scan(&user.ID, &user.DisplayName, &hash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by %s: %w", column, err)
	}
	user.PasswordHash = hash.String
	return &user, nil
}

// UpdateDisplayName renames a user. A UNIQUE violation in SQLite aborts only
// the failing statement, so callers inside a transaction may carry on.
func (r *userRepo) UpdateDisplayName(ctx context.Context, id, name string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET display_name = ? WHERE id = ?", name, id,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateDisplayName
		}
		return fmt.Errorf("update display name: %w", err)
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
