// Package config loads PrayerLift settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Audio cache backends.
const (
	BackendDisk   = "disk"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendS3     = "s3"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Port         int    `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"prayerlift.db"`

	// Sessions
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"true"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"12"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Prayer generation
	AnthropicAPIKey  string        `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string        `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com/v1"`
	AnthropicModel   string        `env:"ANTHROPIC_MODEL" envDefault:"claude-3-haiku-20240307"`
	AIMaxTokens      int           `env:"AI_MAX_TOKENS" envDefault:"200"`
	AITimeout        time.Duration `env:"AI_TIMEOUT" envDefault:"10s"`

	// Text to speech
	ElevenLabsAPIKey  string        `env:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL string        `env:"ELEVENLABS_BASE_URL" envDefault:"https://api.elevenlabs.io/v1/text-to-speech"`
	ElevenLabsVoiceID string        `env:"ELEVENLABS_VOICE_ID" envDefault:"21m00Tcm4TlvDq8ikWAM"`
	ElevenLabsModel   string        `env:"ELEVENLABS_MODEL" envDefault:"eleven_monolingual_v1"`
	TTSTimeout        time.Duration `env:"TTS_TIMEOUT" envDefault:"30s"`

	// Audio cache
	AudioCacheBackend     string        `env:"AUDIO_CACHE_BACKEND" envDefault:"disk"`
	AudioCacheDir         string        `env:"AUDIO_CACHE_DIR" envDefault:"audio_cache"`
	AudioCacheMaxBytes    int64         `env:"AUDIO_CACHE_MAX_BYTES" envDefault:"0"`
	AudioCacheCompression int           `env:"AUDIO_CACHE_COMPRESSION" envDefault:"0"`
	AudioCacheTTL         time.Duration `env:"AUDIO_CACHE_TTL" envDefault:"0s"`
	RedisURL              string        `env:"REDIS_URL"`
	S3Bucket              string        `env:"S3_BUCKET"`
	S3Prefix              string        `env:"S3_PREFIX" envDefault:"audio/"`
	S3Region              string        `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint            string        `env:"S3_ENDPOINT"`
	S3AccessKeyID         string        `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey     string        `env:"S3_SECRET_ACCESS_KEY"`

	// Rate limiting for write and audio routes, per client IP.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that the env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost))
	}

	switch c.AudioCacheBackend {
	case BackendDisk, BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis audio cache"))
		}
	case BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 audio cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUDIO_CACHE_BACKEND %q", c.AudioCacheBackend))
	}

	if c.AudioCacheCompression < 0 || c.AudioCacheCompression > 22 {
		errs = append(errs, fmt.Errorf("AUDIO_CACHE_COMPRESSION must be between 0 and 22, got %d", c.AudioCacheCompression))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}

	switch c.LogFormat {
	case "text", "json", "both":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// SlogLevel maps LOG_LEVEL to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
