package quota

import (
	"testing"
	"time"
)

func TestState_IsStale(t *testing.T) {
	tests := []struct {
		name     string
		state    *State
		maxAge   time.Duration
		expected bool
	}{
		{
			name:     "fresh state",
			state:    &State{LastUpdate: time.Now()},
			maxAge:   5 * time.Minute,
			expected: false,
		},
		{
			name:     "stale state",
			state:    &State{LastUpdate: time.Now().Add(-10 * time.Minute)},
			maxAge:   5 * time.Minute,
			expected: true,
		},
		{
			name:     "just under max age",
			state:    &State{LastUpdate: time.Now().Add(-4 * time.Minute)},
			maxAge:   5 * time.Minute,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsStale(tt.maxAge); got != tt.expected {
				t.Errorf("IsStale() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_NeedsCriticalBlock(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		expected  bool
	}{
		{"well above critical threshold", 50, false},
		{"at critical threshold", ThresholdCritical, false},
		{"below critical threshold", ThresholdCritical - 1, true},
		{"budget exhausted", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &State{RemainingRequests: tt.remaining}
			if got := state.NeedsCriticalBlock(); got != tt.expected {
				t.Errorf("NeedsCriticalBlock() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_RetryAfterBlocks(t *testing.T) {
	state := &State{
		RemainingRequests: 100,
		RetryAfterUntil:   time.Now().Add(30 * time.Second),
	}

	if !state.NeedsCriticalBlock() {
		t.Error("NeedsCriticalBlock() = false during an active Retry-After penalty")
	}

	state.UpdateHealth()
	if state.IsHealthy {
		t.Error("IsHealthy = true during an active Retry-After penalty")
	}

	expired := &State{
		RemainingRequests: 100,
		RetryAfterUntil:   time.Now().Add(-time.Second),
	}
	if expired.NeedsCriticalBlock() {
		t.Error("NeedsCriticalBlock() = true after the Retry-After penalty expired")
	}
}

func TestState_NeedsThrottling(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		expected  bool
	}{
		{"healthy budget", 100, false},
		{"at warning threshold", ThresholdWarning, false},
		{"in warning band", ThresholdWarning - 1, true},
		{"critical beats throttling", ThresholdCritical - 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &State{RemainingRequests: tt.remaining}
			if got := state.NeedsThrottling(); got != tt.expected {
				t.Errorf("NeedsThrottling() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_TimeUntilReset(t *testing.T) {
	state := &State{ResetAt: time.Now().Add(30 * time.Second)}
	if got := state.TimeUntilReset(); got <= 0 || got > 30*time.Second {
		t.Errorf("TimeUntilReset() = %v, want within (0, 30s]", got)
	}

	past := &State{ResetAt: time.Now().Add(-time.Minute)}
	if got := past.TimeUntilReset(); got != 0 {
		t.Errorf("TimeUntilReset() for past reset = %v, want 0", got)
	}

	penalty := &State{
		ResetAt:         time.Now().Add(5 * time.Second),
		RetryAfterUntil: time.Now().Add(time.Minute),
	}
	if got := penalty.TimeUntilReset(); got <= 30*time.Second {
		t.Errorf("TimeUntilReset() = %v, want the later Retry-After deadline", got)
	}
}

func TestState_UpdateHealth(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		healthy   bool
	}{
		{"at healthy threshold", ThresholdHealthy, true},
		{"above healthy threshold", 100, true},
		{"below healthy threshold", ThresholdHealthy - 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &State{RemainingRequests: tt.remaining}
			state.UpdateHealth()
			if state.IsHealthy != tt.healthy {
				t.Errorf("IsHealthy = %v, want %v", state.IsHealthy, tt.healthy)
			}
		})
	}
}
