package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/prayerlift/internal/domain"
)

func TestSessionRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db.Users(), "u-1", "Owner", "")

	expires := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	if err := db.Sessions().Create(ctx, &domain.Session{ID: "s-1", UserID: "u-1", ExpiresAt: expires}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := db.Sessions().GetByID(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.UserID != "u-1" {
		t.Fatalf("expected user u-1, got %s", found.UserID)
	}
	if !found.ExpiresAt.Equal(expires) {
		t.Fatalf("expected expiry %v, got %v", expires, found.ExpiresAt)
	}
}

func TestSessionRepository_ManySessionsPerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db.Users(), "u-1", "Owner", "")

	for _, id := range []string{"phone", "laptop"} {
		if err := db.Sessions().Create(ctx, &domain.Session{ID: id, UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	var n int
	if err := db.SqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE user_id = ?", "u-1").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 sessions, got %d", n)
	}
}

func TestSessionRepository_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	err := db.Sessions().Create(context.Background(), &domain.Session{ID: "s-1", UserID: "ghost", ExpiresAt: time.Now()})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db.Users(), "u-1", "Owner", "")

	if err := db.Sessions().Create(ctx, &domain.Session{ID: "s-1", UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := db.Sessions().Delete(ctx, "s-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Sessions().GetByID(ctx, "s-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.Sessions().Delete(ctx, "s-1"); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
}
