package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/prayerlift/internal/domain"
)

func createUser(t *testing.T, repo domain.UserRepository, id, name, hash string) *domain.User {
	t.Helper()
	user := &domain.User{ID: id, DisplayName: name, PasswordHash: hash}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create %s: %v", name, err)
	}
	return user
}

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)

	user := createUser(t, db.Users(), "u-1", "Test User", "hashedpw")
	if user.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestUserRepository_Create_DuplicateDisplayName(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()

	createUser(t, repo, "u-1", "Sarah", "")

	err := repo.Create(context.Background(), &domain.User{ID: "u-2", DisplayName: "Sarah"})
	if !errors.Is(err, domain.ErrDuplicateDisplayName) {
		t.Fatalf("expected ErrDuplicateDisplayName, got %v", err)
	}
}

func TestUserRepository_AnonymousHasNoPasswordHash(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createUser(t, db.Users(), "anon-1", "Anonymous_abcd1234", "")

	var isNull bool
	err := db.SqlDB.QueryRowContext(ctx,
		"SELECT password_hash IS NULL FROM users WHERE id = ?", "anon-1",
	).Scan(&isNull)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !isNull {
		t.Fatal("expected NULL password_hash for anonymous user")
	}

	found, err := db.Users().GetByID(ctx, "anon-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !found.IsAnonymous() {
		t.Fatal("expected user to be anonymous")
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()

	user := createUser(t, repo, "u-1", "By ID", "hash")

	found, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.DisplayName != user.DisplayName {
		t.Fatalf("expected display name %q, got %q", user.DisplayName, found.DisplayName)
	}
	if found.PasswordHash != "hash" {
		t.Fatalf("expected password hash to round-trip, got %q", found.PasswordHash)
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_GetByDisplayName(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()

	user := createUser(t, repo, "u-1", "Alice", "hash")

	found, err := repo.GetByDisplayName(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("GetByDisplayName: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected id %s, got %s", user.ID, found.ID)
	}

	if _, err := repo.GetByDisplayName(context.Background(), "alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected case-sensitive lookup to miss, got %v", err)
	}
}

func TestUserRepository_UpdateDisplayName(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	ctx := context.Background()

	createUser(t, repo, "u-1", "Old Name", "")

	if err := repo.UpdateDisplayName(ctx, "u-1", "New Name"); err != nil {
		t.Fatalf("UpdateDisplayName: %v", err)
	}
	found, err := repo.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.DisplayName != "New Name" {
		t.Fatalf("expected New Name, got %q", found.DisplayName)
	}

	if err := repo.UpdateDisplayName(ctx, "missing", "Whatever"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestUserRepository_UpdateDisplayName_CollisionKeepsTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createUser(t, db.Users(), "u-1", "Taken", "")
	createUser(t, db.Users(), "u-2", "Guest", "")

	err := db.WithTx(ctx, func(tx domain.Store) error {
		if err := tx.Users().UpdateDisplayName(ctx, "u-2", "Taken"); !errors.Is(err, domain.ErrDuplicateDisplayName) {
			t.Fatalf("expected ErrDuplicateDisplayName, got %v", err)
		}
		return tx.Prayers().Create(ctx, &domain.Prayer{ID: "p-1", Text: "still works", AuthorID: ptr("u-2")})
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	found, err := db.Users().GetByID(ctx, "u-2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.DisplayName != "Guest" {
		t.Fatalf("expected name to stay Guest, got %q", found.DisplayName)
	}
	if _, err := db.Prayers().GetByID(ctx, "p-1"); err != nil {
		t.Fatalf("expected prayer to be committed: %v", err)
	}
}

func ptr(s string) *string { return &s }
