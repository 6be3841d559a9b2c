// Package prefetch warms the cache for a room before the child opens it:
// the introduction and its spoken audio are precomputed for every object
// in the room by a bounded worker pool, so first taps answer instantly.
package prefetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tapword-app/content-client/pkg/content"
	"github.com/tapword-app/content-client/pkg/speech"
)

// IntroProvider supplies cached-or-fresh introductions. *content.Service
// is the real implementation.
type IntroProvider interface {
	Intro(ctx context.Context, req content.IntroRequest) (*content.Intro, error)
}

// ClipProvider supplies cached-or-fresh audio clips. *speech.Service is
// the real implementation.
type ClipProvider interface {
	Speak(ctx context.Context, req speech.Request) (*speech.Clip, error)
}

// Config holds warmer configuration.
type Config struct {
	// MaxConcurrency is the number of parallel warm workers.
	MaxConcurrency int

	// ItemTimeout bounds the warming of a single object (intro + audio).
	ItemTimeout time.Duration
}

// DefaultConfig returns a safe default configuration. Four workers keep
// prefetch from flooding the metered upstreams while a child navigates.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		ItemTimeout:    20 * time.Second,
	}
}

// Room describes the room about to be opened.
type Room struct {
	Name     string   `json:"name"`
	Language string   `json:"language,omitempty"`
	AgeGroup string   `json:"age_group,omitempty"`
	Objects  []string `json:"objects"`
}

// ItemError records the failure of one object's warmup.
type ItemError struct {
	Object string `json:"object"`
	Error  string `json:"error"`
}

// Report summarizes a warmup run. Failures are partial: every object is
// attempted regardless of the others.
type Report struct {
	Room     string        `json:"room"`
	Warmed   int           `json:"warmed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
	Errors   []ItemError   `json:"errors,omitempty"`
}

// Warmer precomputes room content with a bounded worker pool.
type Warmer struct {
	intros IntroProvider
	clips  ClipProvider
	config Config
}

// NewWarmer creates a warmer over the content and speech providers.
func NewWarmer(intros IntroProvider, clips ClipProvider, config Config) *Warmer {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if config.ItemTimeout <= 0 {
		config.ItemTimeout = DefaultConfig().ItemTimeout
	}

	return &Warmer{
		intros: intros,
		clips:  clips,
		config: config,
	}
}

// WarmRoom precomputes the introduction and its audio for every object in
// the room. Blank object names are skipped; per-object failures are
// collected in the report rather than aborting the run.
func (w *Warmer) WarmRoom(ctx context.Context, room Room) *Report {
	start := time.Now()
	report := &Report{Room: room.Name}

	queue := make(chan string, len(room.Objects))
	for _, object := range room.Objects {
		if strings.TrimSpace(object) == "" {
			report.Skipped++
			continue
		}
		queue <- object
	}
	close(queue)

	log.Info().
		Str("room", room.Name).
		Int("objects", len(queue)).
		Int("workers", w.config.MaxConcurrency).
		Msg("Starting room warmup")

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < w.config.MaxConcurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for object := range queue {
				select {
				case <-ctx.Done():
					mu.Lock()
					report.Failed++
					report.Errors = append(report.Errors, ItemError{Object: object, Error: ctx.Err().Error()})
					mu.Unlock()
					continue
				default:
				}

				err := w.warmObject(ctx, room, object)

				mu.Lock()
				if err != nil {
					report.Failed++
					report.Errors = append(report.Errors, ItemError{Object: object, Error: err.Error()})
					mu.Unlock()

					log.Warn().
						Err(err).
						Str("room", room.Name).
						Str("object", object).
						Int("worker_id", workerID).
						Msg("Object warmup failed")
					continue
				}
				report.Warmed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	report.Duration = time.Since(start)

	log.Info().
		Str("room", room.Name).
		Int("warmed", report.Warmed).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Dur("duration", report.Duration).
		Msg("Room warmup complete")

	return report
}

// warmObject computes the introduction for one object and synthesizes
// its audio, both through the caching services.
func (w *Warmer) warmObject(ctx context.Context, room Room, object string) error {
	itemCtx, cancel := context.WithTimeout(ctx, w.config.ItemTimeout)
	defer cancel()

	intro, err := w.intros.Intro(itemCtx, content.IntroRequest{
		ObjectName: object,
		RoomName:   room.Name,
		Language:   room.Language,
		AgeGroup:   room.AgeGroup,
	})
	if err != nil {
		return err
	}

	// Fallback intros are transient; synthesizing them would cache audio
	// for text the next request will not serve.
	if intro.Fallback {
		return nil
	}

	_, err = w.clips.Speak(itemCtx, speech.Request{
		Text:     intro.IntroText,
		Language: room.Language,
	})
	return err
}
