package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/prayerlift/internal/domain"
)

// AudioBlobStore keeps synthesized audio in the application database. It
// satisfies audio.Store; absent keys are reported as domain.ErrNotFound.
type AudioBlobStore struct {
	db *sql.DB
}

// AudioBlobs returns the audio blob store backed by this database.
func (d *DB) AudioBlobs() *AudioBlobStore {
	return &AudioBlobStore{db: d.SqlDB}
}

func (s *AudioBlobStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audio_blobs (cache_key, data) VALUES (?, ?)
		 ON CONFLICT (cache_key) DO UPDATE SET data = excluded.data`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("save audio blob: %w", err)
	}
	return nil
}

func (s *AudioBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM audio_blobs WHERE cache_key = ?", key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get audio blob: %w", err)
	}
	return data, nil
}
