package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tapword-app/content-client/pkg/cache"
	"github.com/tapword-app/content-client/pkg/content"
	"github.com/tapword-app/content-client/pkg/logging"
	"github.com/tapword-app/content-client/pkg/prefetch"
	"github.com/tapword-app/content-client/pkg/speech"
	"github.com/tapword-app/content-client/pkg/upstream"
)

// server holds the handler dependencies.
type server struct {
	store   *cache.Store
	content *content.Service
	speech  *speech.Service
	warmer  *prefetch.Warmer
	logger  zerolog.Logger
}

func newServer(store *cache.Store, contentSvc *content.Service, speechSvc *speech.Service, warmer *prefetch.Warmer) *server {
	return &server{
		store:   store,
		content: contentSvc,
		speech:  speechSvc,
		warmer:  warmer,
		logger:  logging.NewLogger("http"),
	}
}

// routes builds the router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/content", func(r chi.Router) {
			r.Post("/intro", handle(s, s.content.Intro))
			r.Post("/phrases", handle(s, s.content.Phrases))
			r.Post("/breakdown", handle(s, s.content.Breakdown))
			r.Post("/funfacts", handle(s, s.content.FunFacts))
			r.Post("/quiz", handle(s, s.content.Quiz))
			r.Post("/game", handle(s, s.content.Game))
		})
		r.Post("/chat", handle(s, s.content.Chat))
		r.Post("/speech", handle(s, s.speech.Speak))
		r.Post("/prefetch/room", s.handlePrefetch)

		r.Get("/cache/stats", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheClear)
	})

	return r
}

// handle adapts a service operation into a JSON POST handler.
func handle[Req any, Resp any](s *server, op func(context.Context, Req) (*Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		resp, err := op(r.Context(), req)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, resp)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handlePrefetch(w http.ResponseWriter, r *http.Request) {
	var room prefetch.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if room.Name == "" || len(room.Objects) == 0 {
		s.writeError(w, http.StatusBadRequest, "room name and objects are required")
		return
	}

	report := s.warmer.WarmRoom(r.Context(), room)
	s.writeJSON(w, http.StatusOK, report)
}

func (s *server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Stats(r.Context()))
}

func (s *server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.ClearAll(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "cache clear failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service failures to HTTP statuses: quota blocks
// become 429, upstream failures 502, everything else (validation) 400.
func (s *server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, upstream.ErrQuotaExhausted):
		s.writeError(w, http.StatusTooManyRequests, "generation budget exhausted, try again soon")
	case errors.Is(err, upstream.ErrRetryExhausted), isUpstreamError(err),
		errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusBadGateway, "couldn't generate this right now")
	default:
		s.writeError(w, http.StatusBadRequest, err.Error())
	}
}

func isUpstreamError(err error) bool {
	var upErr *upstream.Error
	return errors.As(err, &upErr)
}

// requestID attaches a request ID header to every request.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), middleware.RequestIDKey, id)))
	})
}

// requestLogger logs one line per request.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", ww.Header().Get("X-Request-ID")).
			Msg("Request handled")
	})
}
