package audio

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"github.com/msomdec/prayerlift/internal/speech"
)

// CacheOptions configures a Cache.
type CacheOptions struct {
	// DefaultVoice is used when a caller passes no voice.
	DefaultVoice string
	// Model identifies the synthesis model and is part of every key.
	Model   string
	Timeout time.Duration
	// Formatter defaults to speech.Default().
	Formatter *speech.Formatter
	Logger    *slog.Logger
}

// Cache returns synthesized audio for text, calling the synthesizer only
// on a miss. Concurrent misses for the same key share one synthesis.
type Cache struct {
	store        Store
	synth        Synthesizer
	formatter    *speech.Formatter
	defaultVoice string
	model        string
	timeout      time.Duration
	logger       *slog.Logger

	group singleflight.Group
}

func NewCache(store Store, synth Synthesizer, opts CacheOptions) *Cache {
	c := &Cache{
		store:        store,
		synth:        synth,
		formatter:    opts.Formatter,
		defaultVoice: opts.DefaultVoice,
		model:        opts.Model,
		timeout:      opts.Timeout,
		logger:       opts.Logger,
	}
	if c.formatter == nil {
		c.formatter = speech.Default()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	return c
}

// GetOrSynthesize returns audio for text in voice. The boolean is false
// when synthesis is unavailable; failures are never cached.
func (c *Cache) GetOrSynthesize(ctx context.Context, text, voice string) ([]byte, bool) {
	if voice == "" {
		voice = c.defaultVoice
	}
	formatted := c.formatter.Format(text)
	if strings.TrimSpace(formatted) == "" {
		return nil, false
	}
	key := Key(formatted, voice, c.model)

	if data, ok := c.lookup(ctx, key); ok {
		return data, true
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have filled the entry after our lookup.
		if data, ok := c.lookup(ctx, key); ok {
			return data, nil
		}

		// The synthesis outlives a cancelled request so that callers
		// sharing this flight still get the result.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		data, err := c.synth.Synthesize(sctx, formatted, voice)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, errors.New("synthesizer returned no audio")
		}

		if err := c.store.Put(sctx, key, data); err != nil {
			c.logger.Warn("audio cache write failed", "key", key, "error", err)
		} else {
			c.logger.Debug("audio cached", "key", key, "size", humanize.Bytes(uint64(len(data))))
		}
		return data, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			c.logger.Debug("speech synthesis unavailable", "error", err)
		} else {
			c.logger.Warn("speech synthesis failed", "provider", "elevenlabs", "error", err)
		}
		return nil, false
	}
	return v.([]byte), true
}

func (c *Cache) lookup(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err == nil {
		return data, true
	}
	if !IsMiss(err) {
		c.logger.Warn("audio cache read failed", "key", key, "error", err)
	}
	return nil, false
}
