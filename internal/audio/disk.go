package audio

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
)

// zstdMagic prefixes every zstd frame. MP3 data never starts with it, so
// compressed and raw entries can share a directory.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

const entryExt = ".mp3"

// DiskOptions configures a DiskStore.
type DiskOptions struct {
	// MaxBytes bounds the total size on disk. Zero means unbounded.
	MaxBytes int64
	// CompressionLevel enables zstd at the given level when positive.
	CompressionLevel int
	Logger           *slog.Logger
}

// DiskStore keeps one file per entry under a two-level sharded directory.
// Writes go to a temp file in the target directory followed by a rename.
type DiskStore struct {
	dir      string
	maxBytes int64
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
	logger   *slog.Logger

	// evictMu serializes eviction sweeps.
	evictMu sync.Mutex
}

// NewDiskStore creates dir if needed and returns a store rooted there.
func NewDiskStore(dir string, opts DiskOptions) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &DiskStore{dir: dir, maxBytes: opts.MaxBytes, logger: logger}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	s.decoder = dec

	if opts.CompressionLevel > 0 {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.CompressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		s.encoder = enc
	}

	return s, nil
}

func (s *DiskStore) path(key string) string {
	shard := "_"
	if len(key) >= 2 {
		shard = key[:2]
	}
	return filepath.Join(s.dir, shard, key+entryExt)
}

func (s *DiskStore) Get(_ context.Context, key string) ([]byte, error) {
	p := s.path(key)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		data, err = s.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress cache entry: %w", err)
		}
	}

	// Touch the entry so eviction drops the least recently used files.
	if s.maxBytes > 0 {
		now := time.Now()
		_ = os.Chtimes(p, now, now)
	}
	return data, nil
}

func (s *DiskStore) Put(_ context.Context, key string, data []byte) error {
	payload := data
	if s.encoder != nil {
		if compressed := s.encoder.EncodeAll(data, nil); len(compressed) < len(data) {
			payload = compressed
		}
	}

	final := s.path(key)
	dir := filepath.Dir(final)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create shard directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename cache entry: %w", err)
	}

	if s.maxBytes > 0 {
		if err := s.evict(); err != nil {
			s.logger.Warn("audio cache eviction failed", "error", err)
		}
	}
	return nil
}

type diskEntry struct {
	path    string
	size    int64
	modTime time.Time
}

// evict removes the oldest entries until the store fits in maxBytes.
func (s *DiskStore) evict() error {
	s.evictMu.Lock()
	defer s.evictMu.Unlock()

	var (
		entries []diskEntry
		total   int64
	)
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, entryExt) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		entries = append(entries, diskEntry{path: p, size: info.Size(), modTime: info.ModTime()})
		total += info.Size()
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk cache directory: %w", err)
	}
	if total <= s.maxBytes {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})

	var freed int64
	removed := 0
	for _, e := range entries {
		if total-freed <= s.maxBytes {
			break
		}
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove cache entry: %w", err)
		}
		freed += e.size
		removed++
	}

	s.logger.Info("audio cache evicted",
		"entries", removed,
		"freed", humanize.Bytes(uint64(freed)),
		"size", humanize.Bytes(uint64(total-freed)),
		"limit", humanize.Bytes(uint64(s.maxBytes)),
	)
	return nil
}

// Close releases the zstd coders.
func (s *DiskStore) Close() error {
	if s.encoder != nil {
		s.encoder.Close()
	}
	s.decoder.Close()
	return nil
}
