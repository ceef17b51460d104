package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/prayerlift/internal/domain"
)

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx domain.Store) error {
		return tx.Users().Create(ctx, &domain.User{ID: "u-1", DisplayName: "Committed"})
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	if _, err := db.Users().GetByID(ctx, "u-1"); err != nil {
		t.Fatalf("expected committed user: %v", err)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTx(ctx, func(tx domain.Store) error {
		if err := tx.Users().Create(ctx, &domain.User{ID: "u-1", DisplayName: "Doomed"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := db.Users().GetByID(ctx, "u-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected rollback, got %v", err)
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = db.WithTx(ctx, func(tx domain.Store) error {
			if err := tx.Users().Create(ctx, &domain.User{ID: "u-1", DisplayName: "Panicked"}); err != nil {
				t.Fatalf("Create: %v", err)
			}
			panic("kaput")
		})
	}()

	if _, err := db.Users().GetByID(ctx, "u-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected rollback after panic, got %v", err)
	}
}

func TestWithTx_NestedReusesTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx domain.Store) error {
		return tx.WithTx(ctx, func(inner domain.Store) error {
			return inner.Users().Create(ctx, &domain.User{ID: "u-1", DisplayName: "Nested"})
		})
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if _, err := db.Users().GetByID(ctx, "u-1"); err != nil {
		t.Fatalf("expected nested write to commit: %v", err)
	}
}
