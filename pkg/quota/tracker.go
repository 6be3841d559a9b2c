package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	quotaRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tapword_quota_remaining_requests",
		Help: "Request budget remaining in the current upstream window",
	}, []string{"service"})

	quotaBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tapword_quota_blocks_total",
		Help: "Total number of requests blocked by the quota gate",
	}, []string{"service"})

	quotaThrottlesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tapword_quota_throttles_total",
		Help: "Total number of requests throttled by the quota gate",
	}, []string{"service"})
)

// maxStateAge is how long persisted state stays authoritative. Budget
// windows are a minute; anything older describes a window long gone.
const maxStateAge = 5 * time.Minute

// Tracker monitors one upstream service's request budget and gates calls.
// A nil *Tracker is valid and allows everything; pass nil where gating is
// disabled (tests, memory-only deployments).
type Tracker struct {
	redis   *redis.Client
	service string
	logger  zerolog.Logger

	keyRemaining  string
	keyReset      string
	keyRetryAfter string
	keyLastUpdate string
}

// NewTracker creates a tracker for the named service ("content", "speech").
func NewTracker(redisClient *redis.Client, service string, logger zerolog.Logger) *Tracker {
	prefix := "tapword:quota:" + service + ":"
	return &Tracker{
		redis:         redisClient,
		service:       service,
		logger:        logger,
		keyRemaining:  prefix + "remaining",
		keyReset:      prefix + "reset_at",
		keyRetryAfter: prefix + "retry_after_until",
		keyLastUpdate: prefix + "last_update",
	}
}

// GetState retrieves the current budget state from Redis.
// Returns a default healthy state when no data exists or the stored state
// has gone stale.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	remaining, err := t.redis.Get(ctx, t.keyRemaining).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get remaining requests: %w", err)
	}
	if err == redis.Nil {
		return healthyState(), nil
	}

	resetUnix, err := t.redis.Get(ctx, t.keyReset).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get reset timestamp: %w", err)
	}

	retryAfterUnix, err := t.redis.Get(ctx, t.keyRetryAfter).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get retry-after timestamp: %w", err)
	}

	lastUpdateStr, err := t.redis.Get(ctx, t.keyLastUpdate).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last update: %w", err)
	}

	var lastUpdate time.Time
	if lastUpdateStr != "" {
		if err := json.Unmarshal([]byte(lastUpdateStr), &lastUpdate); err != nil {
			return nil, fmt.Errorf("parse last update: %w", err)
		}
	}

	state := &State{
		RemainingRequests: remaining,
		ResetAt:           time.Unix(resetUnix, 0),
		RetryAfterUntil:   time.Unix(retryAfterUnix, 0),
		LastUpdate:        lastUpdate,
	}
	if state.IsStale(maxStateAge) {
		t.logger.Debug().Str("service", t.service).Msg("Quota state stale, assuming healthy")
		return healthyState(), nil
	}
	state.UpdateHealth()

	return state, nil
}

// Record parses the budget headers of an upstream response and persists
// the new state. A 429 status additionally honours the Retry-After
// header. Responses without budget headers are ignored.
func (t *Tracker) Record(ctx context.Context, headers http.Header, statusCode int) error {
	if t == nil {
		return nil
	}

	remainStr := headers.Get("X-RateLimit-Remaining-Requests")
	retryAfter := parseRetryAfter(headers, statusCode)

	if remainStr == "" && retryAfter == 0 {
		return nil
	}

	now := time.Now()
	state := &State{LastUpdate: now}

	if remainStr != "" {
		remain, err := strconv.Atoi(remainStr)
		if err != nil {
			return fmt.Errorf("parse X-RateLimit-Remaining-Requests header: %w", err)
		}
		state.RemainingRequests = remain
		state.ResetAt = now.Add(parseReset(headers.Get("X-RateLimit-Reset-Requests")))
	} else {
		// 429 without budget headers: keep the last known budget.
		prev, err := t.GetState(ctx)
		if err != nil {
			return err
		}
		state.RemainingRequests = prev.RemainingRequests
		state.ResetAt = prev.ResetAt
	}

	if retryAfter > 0 {
		state.RetryAfterUntil = now.Add(retryAfter)
	}
	state.UpdateHealth()

	lastUpdateJSON, err := json.Marshal(state.LastUpdate)
	if err != nil {
		return fmt.Errorf("marshal last update: %w", err)
	}

	pipe := t.redis.Pipeline()
	pipe.Set(ctx, t.keyRemaining, state.RemainingRequests, maxStateAge)
	pipe.Set(ctx, t.keyReset, state.ResetAt.Unix(), maxStateAge)
	pipe.Set(ctx, t.keyRetryAfter, state.RetryAfterUntil.Unix(), maxStateAge)
	pipe.Set(ctx, t.keyLastUpdate, lastUpdateJSON, maxStateAge)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store quota state in redis: %w", err)
	}

	quotaRemaining.WithLabelValues(t.service).Set(float64(state.RemainingRequests))

	logEvent := t.logger.Info().
		Str("service", t.service).
		Int("remaining_requests", state.RemainingRequests).
		Time("reset_at", state.ResetAt).
		Bool("is_healthy", state.IsHealthy)

	switch {
	case state.NeedsCriticalBlock():
		logEvent = t.logger.Error().
			Str("service", t.service).
			Int("remaining_requests", state.RemainingRequests)
		logEvent.Msg("Upstream budget CRITICAL - requests will be blocked")
	case state.NeedsThrottling():
		logEvent = t.logger.Warn().
			Str("service", t.service).
			Int("remaining_requests", state.RemainingRequests)
		logEvent.Msg("Upstream budget WARNING - requests will be throttled")
	default:
		logEvent.Msg("Upstream budget state updated")
	}

	return nil
}

// Allow checks if a request may proceed. Returns false when the budget is
// critical or a Retry-After penalty is active; throttles (sleeps briefly)
// in the warning band. A nil tracker allows everything.
func (t *Tracker) Allow(ctx context.Context) (bool, error) {
	if t == nil {
		return true, nil
	}

	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get quota state: %w", err)
	}

	if state.NeedsCriticalBlock() {
		t.logger.Error().
			Str("service", t.service).
			Int("remaining_requests", state.RemainingRequests).
			Dur("wait", state.TimeUntilReset()).
			Msg("Upstream budget critical - blocking request")

		quotaBlocksTotal.WithLabelValues(t.service).Inc()
		return false, nil
	}

	if state.NeedsThrottling() {
		t.logger.Warn().
			Str("service", t.service).
			Int("remaining_requests", state.RemainingRequests).
			Msg("Upstream budget warning - throttling request")

		quotaThrottlesTotal.WithLabelValues(t.service).Inc()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(throttleDelay):
		}
	}

	return true, nil
}

func healthyState() *State {
	return &State{
		RemainingRequests: 100,
		ResetAt:           time.Now().Add(60 * time.Second),
		LastUpdate:        time.Now(),
		IsHealthy:         true,
	}
}

// parseRetryAfter returns the Retry-After delay of a 429 response, 0 otherwise.
func parseRetryAfter(headers http.Header, statusCode int) time.Duration {
	if statusCode != http.StatusTooManyRequests {
		return 0
	}
	raw := headers.Get("Retry-After")
	if raw == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// parseReset parses the X-RateLimit-Reset-Requests header, which carries
// either a Go-style duration ("6m0s", "1.5s") or plain seconds.
func parseReset(raw string) time.Duration {
	if raw == "" {
		return 60 * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 60 * time.Second
}
