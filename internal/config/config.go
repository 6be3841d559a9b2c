// Package config loads the content-proxy configuration: defaults,
// overlaid by an optional YAML file, overlaid by TAPWORD_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache modes.
const (
	ModeMemoryOnly = "memory-only"
	ModeDurable    = "durable"
)

// Durable backends.
const (
	BackendRedis = "redis"
	BackendNATS  = "nats"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache"`
	Redis    RedisConfig    `yaml:"redis"`
	NATS     NATSConfig     `yaml:"nats"`
	Content  UpstreamConfig `yaml:"content"`
	Speech   UpstreamConfig `yaml:"speech"`
	Quota    QuotaConfig    `yaml:"quota"`
	Prefetch PrefetchConfig `yaml:"prefetch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Mode is "memory-only" or "durable".
	Mode string `yaml:"mode"`

	// Backend selects the durable tier: "redis" or "nats".
	Backend string `yaml:"backend"`

	// MaxMemoryEntries bounds the memory tier (0 = unbounded).
	MaxMemoryEntries int `yaml:"max_memory_entries"`

	// ReadTimeout bounds a single tier read.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds each best-effort write.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// WriteQueueSize is the best-effort write queue capacity.
	WriteQueueSize int `yaml:"write_queue_size"`

	// Compression enables zstd compression of durable entries.
	Compression bool `yaml:"compression"`

	// AudioTTL is the validity window for synthesized clips.
	AudioTTL time.Duration `yaml:"audio_ttl"`

	// ContentTTL is the validity window for generated content.
	ContentTTL time.Duration `yaml:"content_ttl"`
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig configures the NATS JetStream connection.
type NATSConfig struct {
	URL    string `yaml:"url"`
	Bucket string `yaml:"bucket"`
}

// UpstreamConfig configures one generation upstream.
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// QuotaConfig configures the shared budget gate.
type QuotaConfig struct {
	// Enabled turns on Redis-backed quota gating; requires durable mode
	// with the Redis backend.
	Enabled bool `yaml:"enabled"`
}

// PrefetchConfig configures the room warmer.
type PrefetchConfig struct {
	Workers     int           `yaml:"workers"`
	ItemTimeout time.Duration `yaml:"item_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Cache: CacheConfig{
			Mode:             ModeMemoryOnly,
			Backend:          BackendRedis,
			MaxMemoryEntries: 10000,
			ReadTimeout:      1500 * time.Millisecond,
			WriteTimeout:     3 * time.Second,
			WriteQueueSize:   256,
			Compression:      true,
			AudioTTL:         7 * 24 * time.Hour,
			ContentTTL:       24 * time.Hour,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		NATS: NATSConfig{
			URL:    "nats://localhost:4222",
			Bucket: "tapword-cache",
		},
		Content: UpstreamConfig{
			Timeout: 15 * time.Second,
		},
		Speech: UpstreamConfig{
			Timeout: 12 * time.Second,
		},
		Prefetch: PrefetchConfig{
			Workers:     4,
			ItemTimeout: 20 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (a missing file is fine), then the environment overlay.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults plus environment only.
		case err != nil:
			return cfg, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	overlayEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// overlayEnv applies TAPWORD_* environment variables on top of cfg.
func overlayEnv(cfg *Config) {
	setString("TAPWORD_SERVER_ADDR", &cfg.Server.Addr)
	setDuration("TAPWORD_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	setString("TAPWORD_CACHE_MODE", &cfg.Cache.Mode)
	setString("TAPWORD_CACHE_BACKEND", &cfg.Cache.Backend)
	setInt("TAPWORD_CACHE_MAX_MEMORY_ENTRIES", &cfg.Cache.MaxMemoryEntries)
	setDuration("TAPWORD_CACHE_READ_TIMEOUT", &cfg.Cache.ReadTimeout)
	setDuration("TAPWORD_CACHE_AUDIO_TTL", &cfg.Cache.AudioTTL)
	setDuration("TAPWORD_CACHE_CONTENT_TTL", &cfg.Cache.ContentTTL)
	setBool("TAPWORD_CACHE_COMPRESSION", &cfg.Cache.Compression)

	setString("TAPWORD_REDIS_ADDR", &cfg.Redis.Addr)
	setString("TAPWORD_REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("TAPWORD_REDIS_DB", &cfg.Redis.DB)

	setString("TAPWORD_NATS_URL", &cfg.NATS.URL)
	setString("TAPWORD_NATS_BUCKET", &cfg.NATS.Bucket)

	setString("TAPWORD_CONTENT_BASE_URL", &cfg.Content.BaseURL)
	setString("TAPWORD_CONTENT_API_KEY", &cfg.Content.APIKey)
	setDuration("TAPWORD_CONTENT_TIMEOUT", &cfg.Content.Timeout)

	setString("TAPWORD_SPEECH_BASE_URL", &cfg.Speech.BaseURL)
	setString("TAPWORD_SPEECH_API_KEY", &cfg.Speech.APIKey)
	setDuration("TAPWORD_SPEECH_TIMEOUT", &cfg.Speech.Timeout)

	setBool("TAPWORD_QUOTA_ENABLED", &cfg.Quota.Enabled)

	setInt("TAPWORD_PREFETCH_WORKERS", &cfg.Prefetch.Workers)
	setDuration("TAPWORD_PREFETCH_ITEM_TIMEOUT", &cfg.Prefetch.ItemTimeout)

	setString("TAPWORD_LOG_LEVEL", &cfg.Logging.Level)
	setBool("TAPWORD_LOG_PRETTY", &cfg.Logging.Pretty)
}

// validate rejects configurations the server cannot run with.
func (c *Config) validate() error {
	switch c.Cache.Mode {
	case ModeMemoryOnly, ModeDurable:
	default:
		return fmt.Errorf("cache.mode must be %q or %q (got %q)",
			ModeMemoryOnly, ModeDurable, c.Cache.Mode)
	}

	if c.Cache.Mode == ModeDurable {
		switch c.Cache.Backend {
		case BackendRedis:
			if c.Redis.Addr == "" {
				return fmt.Errorf("redis.addr is required in durable mode")
			}
		case BackendNATS:
			if c.NATS.URL == "" || c.NATS.Bucket == "" {
				return fmt.Errorf("nats.url and nats.bucket are required in durable mode")
			}
		default:
			return fmt.Errorf("cache.backend must be %q or %q (got %q)",
				BackendRedis, BackendNATS, c.Cache.Backend)
		}
	}

	if c.Quota.Enabled && (c.Cache.Mode != ModeDurable || c.Cache.Backend != BackendRedis) {
		return fmt.Errorf("quota gating requires durable mode with the redis backend")
	}

	if c.Content.BaseURL == "" {
		return fmt.Errorf("content.base_url is required")
	}
	if c.Speech.BaseURL == "" {
		return fmt.Errorf("speech.base_url is required")
	}

	if c.Cache.AudioTTL <= 0 || c.Cache.ContentTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.Prefetch.Workers <= 0 {
		return fmt.Errorf("prefetch.workers must be positive")
	}

	return nil
}

func setString(key string, target *string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setInt(key string, target *int) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func setBool(key string, target *bool) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func setDuration(key string, target *time.Duration) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			*target = parsed
		}
	}
}
