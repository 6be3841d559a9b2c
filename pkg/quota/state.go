// Package quota tracks the shared request budget of the metered
// generation upstreams and gates outgoing calls. State lives in Redis so
// every proxy instance backs off together: it monitors the
// X-RateLimit-Remaining-Requests and X-RateLimit-Reset-Requests response
// headers plus Retry-After on 429 responses.
package quota

import (
	"time"
)

// Thresholds for budget decisions.
const (
	// ThresholdCritical blocks all requests when the remaining budget
	// falls below this value, keeping headroom for in-flight calls.
	ThresholdCritical = 5

	// ThresholdWarning throttles requests when the remaining budget
	// falls below this value.
	ThresholdWarning = 20

	// ThresholdHealthy indicates normal operation; at or above this
	// value no restrictions apply.
	ThresholdHealthy = 50
)

// throttleDelay is the pause applied per request in the warning band.
const throttleDelay = 500 * time.Millisecond

// State represents the current upstream budget, shared across all proxy
// instances via Redis.
type State struct {
	// RemainingRequests is the request budget left in the current window,
	// from the X-RateLimit-Remaining-Requests header.
	RemainingRequests int `json:"remaining_requests"`

	// ResetAt is when the budget window resets, derived from the
	// X-RateLimit-Reset-Requests header.
	ResetAt time.Time `json:"reset_at"`

	// RetryAfterUntil is set when the upstream answered 429 with a
	// Retry-After header; no requests are sent before this time.
	RetryAfterUntil time.Time `json:"retry_after_until"`

	// LastUpdate is when this state was last written; used to detect
	// stale data.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when RemainingRequests >= ThresholdHealthy and
	// no Retry-After penalty is active.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state is older than maxAge. Stale state is
// treated as healthy: the window has long since reset.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// InRetryAfter returns true while a 429 Retry-After penalty is active.
func (s *State) InRetryAfter() bool {
	return time.Now().Before(s.RetryAfterUntil)
}

// NeedsCriticalBlock returns true if requests should be blocked.
func (s *State) NeedsCriticalBlock() bool {
	return s.InRetryAfter() || s.RemainingRequests < ThresholdCritical
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *State) NeedsThrottling() bool {
	return s.RemainingRequests < ThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the budget window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	until := s.ResetAt
	if s.RetryAfterUntil.After(until) {
		until = s.RetryAfterUntil
	}
	duration := time.Until(until)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth recomputes the IsHealthy field.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.RemainingRequests >= ThresholdHealthy && !s.InRetryAfter()
}
