package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tapword-app/content-client/pkg/cache"
	"github.com/tapword-app/content-client/pkg/logging"
)

// ServiceConfig holds the speech service configuration.
type ServiceConfig struct {
	// TTL is the validity window for cached clips (default 7 days).
	TTL time.Duration

	// ProducerTimeout bounds each synthesis call (default 12s).
	ProducerTimeout time.Duration
}

// DefaultServiceConfig returns the default service configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		TTL:             7 * 24 * time.Hour,
		ProducerTimeout: 12 * time.Second,
	}
}

// Service memoizes the synthesis upstream through the cache. Requests
// are normalized (trimmed text, voice defaulted from language, speed
// resolved to a rate) before key derivation, so "apple" spoken by the
// default voice is one entry no matter how the request spells it.
type Service struct {
	store       *cache.Store
	synthesizer Synthesizer
	cfg         ServiceConfig
	logger      zerolog.Logger
}

// NewService creates a speech service over the given cache and synthesizer.
func NewService(store *cache.Store, synthesizer Synthesizer, cfg ServiceConfig) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultServiceConfig().TTL
	}
	if cfg.ProducerTimeout <= 0 {
		cfg.ProducerTimeout = DefaultServiceConfig().ProducerTimeout
	}
	return &Service{
		store:       store,
		synthesizer: synthesizer,
		cfg:         cfg,
		logger:      logging.NewLogger("speech"),
	}
}

// Speak returns the synthesized clip for a request, cached or fresh.
// Synthesis failures propagate; there is no canned audio to fall back to.
func (s *Service) Speak(ctx context.Context, req Request) (*Clip, error) {
	text, voice, rate, err := normalize(req)
	if err != nil {
		return nil, err
	}

	key := cache.SpeechKey(text, voice, rate).String()

	fresh := false
	data, err := s.store.GetOrCompute(ctx, key, s.cfg.TTL, func(ctx context.Context) ([]byte, error) {
		pctx, cancel := context.WithTimeout(ctx, s.cfg.ProducerTimeout)
		defer cancel()

		clip, err := s.synthesizer.Synthesize(pctx, text, voice, rate)
		if err != nil {
			return nil, err
		}
		fresh = true
		return json.Marshal(clip)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("voice", voice).Msg("Speech synthesis failed")
		return nil, err
	}

	var clip Clip
	if err := json.Unmarshal(data, &clip); err != nil {
		return nil, fmt.Errorf("decode cached clip: %w", err)
	}
	clip.FromCache = !fresh
	return &clip, nil
}

// normalize resolves the request to the canonical (text, voice, rate)
// triple used for both the cache key and the upstream call.
func normalize(req Request) (text, voice, rate string, err error) {
	text = strings.TrimSpace(req.Text)
	if text == "" {
		return "", "", "", fmt.Errorf("text is required")
	}

	voice = strings.TrimSpace(req.Voice)
	if voice == "" {
		language := strings.TrimSpace(req.Language)
		if language == "" {
			language = DefaultLanguage
		}
		voice = VoiceForLanguage(language)
	}

	rate = RateForSpeed(req.Speed)
	return text, voice, rate, nil
}
