// Package audio caches synthesized prayer audio. Entries are keyed by a
// digest of the formatted text, the voice and the synthesis model, and are
// never invalidated.
package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/msomdec/prayerlift/internal/domain"
)

var (
	// ErrCacheMiss is returned by a Store when no entry exists for a key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrItemTooLarge is returned when an entry exceeds a store's capacity.
	ErrItemTooLarge = errors.New("item too large for cache")
)

// Store persists audio blobs by key. Put must be atomic: a concurrent Get
// sees either the complete entry or a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// IsMiss reports whether err means the key is absent. Stores backed by a
// repository signal absence with domain.ErrNotFound.
func IsMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss) || errors.Is(err, domain.ErrNotFound)
}

// Key derives the cache key for formatted text spoken by voice with model.
// Fields are NUL-separated so that no two distinct triples share a key.
func Key(text, voice, model string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(voice))
	h.Write([]byte{0})
	h.Write([]byte(model))
	return hex.EncodeToString(h.Sum(nil))
}
