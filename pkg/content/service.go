package content

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

// Defaults applied by request normalization.
const (
	DefaultLanguage = "en-US"
	DefaultAgeGroup = "6-8"
)

// ServiceConfig holds the content service configuration.
type ServiceConfig struct {
	// TTL is the validity window for generated content (default 24h).
	TTL time.Duration

	// ProducerTimeout bounds each generation call (default 15s).
	ProducerTimeout time.Duration
}

// DefaultServiceConfig returns the default service configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		TTL:             24 * time.Hour,
		ProducerTimeout: 15 * time.Second,
	}
}

// Service memoizes the content upstream through the cache. Requests are
// normalized before key derivation so semantically identical requests
// share an entry. When generation fails, the conversational operations
// (intro, phrases, chat) serve canned fallback content instead of an
// error; fallbacks are never cached.
type Service struct {
	store     *cache.Store
	generator Generator
	cfg       ServiceConfig
	logger    zerolog.Logger
}

// NewService creates a content service over the given cache and generator.
func NewService(store *cache.Store, generator Generator, cfg ServiceConfig) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultServiceConfig().TTL
	}
	if cfg.ProducerTimeout <= 0 {
		cfg.ProducerTimeout = DefaultServiceConfig().ProducerTimeout
	}
	return &Service{
		store:     store,
		generator: generator,
		cfg:       cfg,
		logger:    logging.NewLogger("content"),
	}
}

// Intro returns the introduction for an object, cached or fresh.
// A failed generation degrades to canned fallback text.
func (s *Service) Intro(ctx context.Context, req IntroRequest) (*Intro, error) {
	req.ObjectName = strings.TrimSpace(req.ObjectName)
	req.RoomName = strings.TrimSpace(req.RoomName)
	normalizeCommon(&req.Language, &req.AgeGroup)
	if req.ObjectName == "" {
		return nil, fmt.Errorf("object name is required")
	}

	out, err := memoize[Intro](ctx, s, KindIntro, req, func(ctx context.Context) (*Intro, error) {
		return s.generator.GenerateIntro(ctx, req)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("object", req.ObjectName).
			Msg("Intro generation failed, serving fallback")
		return fallbackIntro(req.ObjectName), nil
	}
	return out, nil
}

// Phrases returns contextual phrases for an object, cached or fresh.
// A failed generation degrades to a canned phrase set.
func (s *Service) Phrases(ctx context.Context, req PhrasesRequest) (*PhraseSet, error) {
	req.ObjectName = strings.TrimSpace(req.ObjectName)
	req.RoomName = strings.TrimSpace(req.RoomName)
	normalizeCommon(&req.Language, &req.AgeGroup)
	if req.ObjectName == "" {
		return nil, fmt.Errorf("object name is required")
	}
	if req.Count <= 0 || req.Count > 10 {
		req.Count = 3
	}

	out, err := memoize[PhraseSet](ctx, s, KindPhrases, req, func(ctx context.Context) (*PhraseSet, error) {
		return s.generator.GeneratePhrases(ctx, req)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("object", req.ObjectName).
			Msg("Phrase generation failed, serving fallback")
		return fallbackPhrases(req.ObjectName), nil
	}
	return out, nil
}

// Breakdown returns the pronunciation breakdown of a word.
func (s *Service) Breakdown(ctx context.Context, req BreakdownRequest) (*Breakdown, error) {
	req.Word = strings.TrimSpace(req.Word)
	req.Language = strings.TrimSpace(req.Language)
	if req.Language == "" {
		req.Language = DefaultLanguage
	}
	if req.Word == "" {
		return nil, fmt.Errorf("word is required")
	}

	return memoize[Breakdown](ctx, s, KindBreakdown, req, func(ctx context.Context) (*Breakdown, error) {
		return s.generator.GenerateBreakdown(ctx, req)
	})
}

// FunFacts returns fun facts about an object.
func (s *Service) FunFacts(ctx context.Context, req FunFactsRequest) (*FunFacts, error) {
	req.ObjectName = strings.TrimSpace(req.ObjectName)
	normalizeCommon(&req.Language, &req.AgeGroup)
	if req.ObjectName == "" {
		return nil, fmt.Errorf("object name is required")
	}
	if req.Count <= 0 || req.Count > 5 {
		req.Count = 3
	}

	return memoize[FunFacts](ctx, s, KindFunFacts, req, func(ctx context.Context) (*FunFacts, error) {
		return s.generator.GenerateFunFacts(ctx, req)
	})
}

// Quiz returns a generated quiz about a topic.
func (s *Service) Quiz(ctx context.Context, req QuizRequest) (*Quiz, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	normalizeCommon(&req.Language, &req.AgeGroup)
	if req.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if req.QuestionCount <= 0 || req.QuestionCount > 10 {
		req.QuestionCount = 5
	}

	return memoize[Quiz](ctx, s, KindQuiz, req, func(ctx context.Context) (*Quiz, error) {
		return s.generator.GenerateQuiz(ctx, req)
	})
}

// Game returns mini-game word material for a room.
func (s *Service) Game(ctx context.Context, req GameRequest) (*Game, error) {
	req.RoomName = strings.TrimSpace(req.RoomName)
	normalizeCommon(&req.Language, &req.AgeGroup)
	if req.RoomName == "" {
		return nil, fmt.Errorf("room name is required")
	}
	switch req.GameType {
	case GameGuessWord, GameAnagram, GameQuickQuiz, GameMissingLetters:
	default:
		return nil, fmt.Errorf("unknown game type %q", req.GameType)
	}
	if req.Count <= 0 || req.Count > 10 {
		req.Count = 5
	}

	return memoize[Game](ctx, s, KindGame, req, func(ctx context.Context) (*Game, error) {
		return s.generator.GenerateGame(ctx, req)
	})
}

// Chat returns the next conversational reply. History is truncated to the
// last five turns before key derivation and the upstream call. A failed
// generation degrades to a keyword-picked fallback reply.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	req.ObjectName = strings.TrimSpace(req.ObjectName)
	req.Message = strings.TrimSpace(req.Message)
	normalizeCommon(&req.Language, &req.AgeGroup)
	if req.ObjectName == "" {
		return nil, fmt.Errorf("object name is required")
	}
	if req.Message == "" {
		return nil, fmt.Errorf("message is required")
	}
	if len(req.History) > maxChatHistory {
		req.History = req.History[len(req.History)-maxChatHistory:]
	}

	out, err := memoize[ChatReply](ctx, s, KindChat, req, func(ctx context.Context) (*ChatReply, error) {
		return s.generator.Chat(ctx, req)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("object", req.ObjectName).
			Msg("Chat generation failed, serving fallback")
		return fallbackChatReply(req.ObjectName, req.Message), nil
	}
	return out, nil
}

// memoize runs one generation through the cache: derive the key from the
// normalized request, serve a valid entry, or produce under the service's
// deadline and hand the result to the cache's best-effort writer. The
// producer error propagates so each operation decides its own fallback.
func memoize[T any](ctx context.Context, s *Service, kind string, req any, produce func(context.Context) (*T, error)) (*T, error) {
	canonical, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("canonicalize %s request: %w", kind, err)
	}
	key := cache.ContentKey(kind, canonical).String()

	fresh := false
	data, err := s.store.GetOrCompute(ctx, key, s.cfg.TTL, func(ctx context.Context) ([]byte, error) {
		pctx, cancel := context.WithTimeout(ctx, s.cfg.ProducerTimeout)
		defer cancel()

		value, err := produce(pctx)
		if err != nil {
			return nil, err
		}
		fresh = true
		return json.Marshal(value)
	})
	if err != nil {
		return nil, err
	}

	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", kind, err)
	}
	setFromCache(out, !fresh)
	return out, nil
}

// setFromCache marks responses served from the cache. Coalesced callers
// count as cached: their value came from another caller's producer.
func setFromCache(v any, fromCache bool) {
	switch r := v.(type) {
	case *Intro:
		r.FromCache = fromCache
	case *PhraseSet:
		r.FromCache = fromCache
	case *Breakdown:
		r.FromCache = fromCache
	case *FunFacts:
		r.FromCache = fromCache
	case *Quiz:
		r.FromCache = fromCache
	case *ChatReply:
		r.FromCache = fromCache
	case *Game:
		r.FromCache = fromCache
	}
}

// normalizeCommon applies the language and age-group defaults.
func normalizeCommon(language, ageGroup *string) {
	*language = strings.TrimSpace(*language)
	if *language == "" {
		*language = DefaultLanguage
	}
	*ageGroup = strings.TrimSpace(*ageGroup)
	if *ageGroup == "" {
		*ageGroup = DefaultAgeGroup
	}
}
