// Command content-proxy serves the mobile app's generation API: AI
// content and synthesized speech, memoized through the response cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tapword-app/content-client/internal/config"
	"github.com/tapword-app/content-client/pkg/cache"
	"github.com/tapword-app/content-client/pkg/content"
	"github.com/tapword-app/content-client/pkg/logging"
	"github.com/tapword-app/content-client/pkg/prefetch"
	"github.com/tapword-app/content-client/pkg/quota"
	"github.com/tapword-app/content-client/pkg/speech"
	"github.com/tapword-app/content-client/pkg/upstream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "content-proxy: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("TAPWORD_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
		Output: os.Stderr,
	})

	ctx := context.Background()

	tier, redisClient, natsConn, err := buildTier(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	store := cache.NewStore(tier, cache.Config{
		ReadTimeout:    cfg.Cache.ReadTimeout,
		WriteTimeout:   cfg.Cache.WriteTimeout,
		WriteQueueSize: cfg.Cache.WriteQueueSize,
	})
	defer store.Close()

	var contentGate, speechGate upstream.Gate
	if cfg.Quota.Enabled {
		contentGate = quota.NewTracker(redisClient, "content", logging.NewLogger("quota"))
		speechGate = quota.NewTracker(redisClient, "speech", logging.NewLogger("quota"))
	}

	contentClient, err := content.NewClient(content.Config{
		BaseURL: cfg.Content.BaseURL,
		APIKey:  cfg.Content.APIKey,
		Timeout: cfg.Content.Timeout,
		Gate:    contentGate,
	})
	if err != nil {
		return fmt.Errorf("create content client: %w", err)
	}

	speechClient, err := speech.NewClient(speech.Config{
		BaseURL: cfg.Speech.BaseURL,
		APIKey:  cfg.Speech.APIKey,
		Timeout: cfg.Speech.Timeout,
		Gate:    speechGate,
	})
	if err != nil {
		return fmt.Errorf("create speech client: %w", err)
	}

	contentService := content.NewService(store, contentClient, content.ServiceConfig{
		TTL:             cfg.Cache.ContentTTL,
		ProducerTimeout: cfg.Content.Timeout,
	})
	speechService := speech.NewService(store, speechClient, speech.ServiceConfig{
		TTL:             cfg.Cache.AudioTTL,
		ProducerTimeout: cfg.Speech.Timeout,
	})
	warmer := prefetch.NewWarmer(contentService, speechService, prefetch.Config{
		MaxConcurrency: cfg.Prefetch.Workers,
		ItemTimeout:    cfg.Prefetch.ItemTimeout,
	})

	srv := newServer(store, contentService, speechService, warmer)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Server.Addr).
			Str("cache_mode", cfg.Cache.Mode).
			Msg("Starting content proxy")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info().Msg("Shutdown complete")
	return nil
}

// buildTier constructs the cache storage strategy selected by the
// configuration: the memory tier alone, or the tiered composite over the
// configured durable backend.
func buildTier(ctx context.Context, cfg config.Config, logger zerolog.Logger) (cache.Tier, *redis.Client, *nats.Conn, error) {
	memory := cache.NewMemoryTier(cfg.Cache.MaxMemoryEntries)
	if cfg.Cache.Mode == config.ModeMemoryOnly {
		return memory, nil, nil, nil
	}

	var codec cache.Codec = cache.JSONCodec{}
	if cfg.Cache.Compression {
		zstdCodec, err := cache.NewZstdCodec(codec)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create codec: %w", err)
		}
		codec = zstdCodec
	}

	switch cfg.Cache.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		return cache.NewTiered(memory, cache.NewRedisTier(client, codec)), client, nil, nil

	case config.BackendNATS:
		conn, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to nats at %s: %w", cfg.NATS.URL, err)
		}
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return nil, nil, nil, fmt.Errorf("create jetstream context: %w", err)
		}
		kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket: cfg.NATS.Bucket,
			TTL:    cfg.Cache.AudioTTL,
		})
		if err != nil {
			conn.Close()
			return nil, nil, nil, fmt.Errorf("open key-value bucket %q: %w", cfg.NATS.Bucket, err)
		}
		logger.Info().Str("url", cfg.NATS.URL).Str("bucket", cfg.NATS.Bucket).Msg("Connected to NATS")
		return cache.NewTiered(memory, cache.NewNATSTier(kv, codec)), nil, conn, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
