package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation owns its own migration files and strategy.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}

// Store groups the repositories that share a single connection or
// transaction.
type Store interface {
	Users() UserRepository
	Sessions() SessionRepository
	Prayers() PrayerRepository
	Marks() MarkRepository

	// WithTx runs fn against a Store bound to one transaction. The
	// transaction commits only when fn returns nil and is rolled back on
	// any error or panic. Calling WithTx on a transactional Store reuses
	// the open transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
