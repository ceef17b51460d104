package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/msomdec/prayerlift/internal/domain"
	"github.com/msomdec/prayerlift/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is the SQLite-backed implementation of domain.Database and domain.Store.
type DB struct {
	SqlDB *sql.DB
}

var (
	_ domain.Database = (*DB)(nil)
	_ domain.Store    = (*DB)(nil)
)

// New opens a SQLite database at the given path and configures it for use.
// WAL mode, foreign keys and a busy timeout are set through the DSN so that
// every pooled connection gets them.
func New(dbPath string) (*DB, error) {
	dsn := "file:" + dbPath +
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows a single writer; one connection keeps transactions
	// serialized instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all pending embedded migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

func (d *DB) Users() domain.UserRepository       { return &userRepo{db: d.SqlDB} }
func (d *DB) Sessions() domain.SessionRepository { return &sessionRepo{db: d.SqlDB} }
func (d *DB) Prayers() domain.PrayerRepository   { return &prayerRepo{db: d.SqlDB} }
func (d *DB) Marks() domain.MarkRepository       { return &markRepo{db: d.SqlDB} }

// WithTx begins a transaction and runs fn with a Store bound to it. The
// transaction is committed when fn returns nil, rolled back otherwise.
// A panic inside fn rolls back and is re-raised.
func (d *DB) WithTx(ctx context.Context, fn func(tx domain.Store) error) (err error) {
	tx, err := d.SqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit: %w", cerr)
		}
	}()

	return fn(&txStore{tx: tx})
}

// txStore is a domain.Store bound to an open transaction.
type txStore struct {
	tx *sql.Tx
}

func (s *txStore) Users() domain.UserRepository       { return &userRepo{db: s.tx} }
func (s *txStore) Sessions() domain.SessionRepository { return &sessionRepo{db: s.tx} }
func (s *txStore) Prayers() domain.PrayerRepository   { return &prayerRepo{db: s.tx} }
func (s *txStore) Marks() domain.MarkRepository       { return &markRepo{db: s.tx} }

func (s *txStore) WithTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return fn(s)
}

// isUniqueConstraintError reports whether err is a SQLite UNIQUE or
// PRIMARY KEY violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
