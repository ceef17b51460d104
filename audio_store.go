package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/msomdec/prayerlift/internal/audio"
	"github.com/msomdec/prayerlift/internal/config"
	"github.com/msomdec/prayerlift/internal/repository/sqlite"
)

// closableStore is an audio.Store with an optional release hook.
type closableStore struct {
	audio.Store
	close func() error
}

func (s closableStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// newAudioStore opens the audio cache backend selected by
// AUDIO_CACHE_BACKEND.
func newAudioStore(ctx context.Context, cfg *config.Config, db *sqlite.DB, logger *slog.Logger) (closableStore, error) {
	switch cfg.AudioCacheBackend {
	case config.BackendDisk:
		store, err := audio.NewDiskStore(cfg.AudioCacheDir, audio.DiskOptions{
			MaxBytes:         cfg.AudioCacheMaxBytes,
			CompressionLevel: cfg.AudioCacheCompression,
			Logger:           logger,
		})
		if err != nil {
			return closableStore{}, err
		}
		return closableStore{Store: store, close: store.Close}, nil
	case config.BackendMemory:
		return closableStore{Store: audio.NewMemoryStore(cfg.AudioCacheMaxBytes)}, nil
	case config.BackendRedis:
		store, err := audio.NewRedisStore(ctx, cfg.RedisURL, cfg.AudioCacheTTL)
		if err != nil {
			return closableStore{}, err
		}
		return closableStore{Store: store, close: store.Close}, nil
	case config.BackendS3:
		store, err := audio.NewS3Store(ctx, audio.S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return closableStore{}, err
		}
		return closableStore{Store: store}, nil
	case config.BackendSQLite:
		return closableStore{Store: db.AudioBlobs()}, nil
	default:
		return closableStore{}, fmt.Errorf("unknown audio cache backend %q", cfg.AudioCacheBackend)
	}
}

func newAudioCache(cfg *config.Config, store audio.Store, logger *slog.Logger) *audio.Cache {
	synth := audio.NewElevenLabs(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL, cfg.ElevenLabsModel, cfg.TTSTimeout)
	if cfg.ElevenLabsAPIKey == "" {
		logger.Warn("ELEVENLABS_API_KEY not set, audio is unavailable")
	}
	return audio.NewCache(store, synth, audio.CacheOptions{
		DefaultVoice: cfg.ElevenLabsVoiceID,
		Model:        synth.Model(),
		Timeout:      cfg.TTSTimeout,
		Logger:       logger,
	})
}
