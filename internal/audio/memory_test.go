package audio_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/msomdec/prayerlift/internal/audio"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	t.Parallel()
	s := audio.NewMemoryStore(0)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, audio.ErrCacheMiss)

	require.NoError(t, s.Put(ctx, "k", []byte("audio")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("audio"), got)
	require.EqualValues(t, 5, s.Size())
}

func TestMemoryStore_LRUEviction(t *testing.T) {
	t.Parallel()
	s := audio.NewMemoryStore(30)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a", make([]byte, 10)))
	require.NoError(t, s.Put(ctx, "b", make([]byte, 10)))
	require.NoError(t, s.Put(ctx, "c", make([]byte, 10)))

	// Touch "a" so "b" becomes the least recently used.
	_, err := s.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "d", make([]byte, 10)))

	_, err = s.Get(ctx, "b")
	require.ErrorIs(t, err, audio.ErrCacheMiss)
	for _, k := range []string{"a", "c", "d"} {
		_, err := s.Get(ctx, k)
		require.NoError(t, err, k)
	}
	require.Equal(t, 3, s.Len())
	require.EqualValues(t, 30, s.Size())
}

func TestMemoryStore_Replace(t *testing.T) {
	t.Parallel()
	s := audio.NewMemoryStore(100)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", make([]byte, 40)))
	require.NoError(t, s.Put(ctx, "k", make([]byte, 10)))
	require.EqualValues(t, 10, s.Size())
	require.Equal(t, 1, s.Len())
}

func TestMemoryStore_TooLarge(t *testing.T) {
	t.Parallel()
	s := audio.NewMemoryStore(8)

	err := s.Put(context.Background(), "k", make([]byte, 9))
	require.ErrorIs(t, err, audio.ErrItemTooLarge)
	require.Equal(t, 0, s.Len())
}
