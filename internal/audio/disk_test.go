package audio_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/msomdec/prayerlift/internal/audio"
)

func newDiskStore(t *testing.T, opts audio.DiskOptions) (*audio.DiskStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "audio_cache")
	s, err := audio.NewDiskStore(dir, opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestDiskStore_RoundTrip(t *testing.T) {
	t.Parallel()
	s, dir := newDiskStore(t, audio.DiskOptions{})
	ctx := context.Background()
	key := audio.Key("Be at peace", "voice", "model")

	_, err := s.Get(ctx, key)
	require.ErrorIs(t, err, audio.ErrCacheMiss)

	require.NoError(t, s.Put(ctx, key, []byte("ID3 fake mp3 bytes")))

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("ID3 fake mp3 bytes"), got)

	files := listFiles(t, dir)
	require.Len(t, files, 1)
	require.Equal(t, filepath.Join(dir, key[:2], key+".mp3"), files[0])
}

func TestDiskStore_NoTempFilesLeft(t *testing.T) {
	t.Parallel()
	s, dir := newDiskStore(t, audio.DiskOptions{})
	ctx := context.Background()

	var wg sync.WaitGroup
	key := audio.Key("same text", "voice", "model")
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Put(ctx, key, bytes.Repeat([]byte{0xFF}, 4096))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, f := range listFiles(t, dir) {
		require.False(t, strings.HasSuffix(f, ".tmp"), "leftover temp file %s", f)
	}

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 4096)
}

func TestDiskStore_Compression(t *testing.T) {
	t.Parallel()
	s, dir := newDiskStore(t, audio.DiskOptions{CompressionLevel: 3})
	ctx := context.Background()

	compressible := bytes.Repeat([]byte("silence "), 4096)
	key := audio.Key("compressible", "voice", "model")
	require.NoError(t, s.Put(ctx, key, compressible))

	raw, err := os.ReadFile(filepath.Join(dir, key[:2], key+".mp3"))
	require.NoError(t, err)
	require.Less(t, len(raw), len(compressible))
	require.True(t, bytes.HasPrefix(raw, []byte{0x28, 0xB5, 0x2F, 0xFD}))

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, compressible, got)
}

func TestDiskStore_IncompressibleStoredRaw(t *testing.T) {
	t.Parallel()
	s, dir := newDiskStore(t, audio.DiskOptions{CompressionLevel: 3})
	ctx := context.Background()

	noise := make([]byte, 2048)
	_, err := rand.Read(noise)
	require.NoError(t, err)
	noise[0] = 0xFF // never a zstd frame

	key := audio.Key("noise", "voice", "model")
	require.NoError(t, s.Put(ctx, key, noise))

	raw, err := os.ReadFile(filepath.Join(dir, key[:2], key+".mp3"))
	require.NoError(t, err)
	require.Equal(t, noise, raw)
}

func TestDiskStore_ReadsCompressedEntriesWithCompressionOff(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "cache")
	ctx := context.Background()
	key := audio.Key("shared", "voice", "model")
	data := bytes.Repeat([]byte("amen "), 1000)

	writer, err := audio.NewDiskStore(dir, audio.DiskOptions{CompressionLevel: 3})
	require.NoError(t, err)
	require.NoError(t, writer.Put(ctx, key, data))
	writer.Close()

	reader, err := audio.NewDiskStore(dir, audio.DiskOptions{})
	require.NoError(t, err)
	defer reader.Close()

	got, err := reader.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestDiskStore_EvictsOldest(t *testing.T) {
	t.Parallel()
	s, dir := newDiskStore(t, audio.DiskOptions{MaxBytes: 250})
	ctx := context.Background()

	keys := []string{
		audio.Key("first", "v", "m"),
		audio.Key("second", "v", "m"),
		audio.Key("third", "v", "m"),
	}
	base := time.Now().Add(-time.Hour)
	for i, k := range keys[:2] {
		require.NoError(t, s.Put(ctx, k, bytes.Repeat([]byte{0xFF}, 100)))
		p := filepath.Join(dir, k[:2], k+".mp3")
		ts := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(p, ts, ts))
	}

	require.NoError(t, s.Put(ctx, keys[2], bytes.Repeat([]byte{0xFF}, 100)))

	_, err := s.Get(ctx, keys[0])
	require.ErrorIs(t, err, audio.ErrCacheMiss)
	for _, k := range keys[1:] {
		_, err := s.Get(ctx, k)
		require.NoError(t, err)
	}
}
