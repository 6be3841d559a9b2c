package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tapword-app/content-client/pkg/cache"
)

// fakeSynthesizer counts calls and records the inputs it was given.
type fakeSynthesizer struct {
	mu        sync.Mutex
	calls     int
	lastVoice string
	lastRate  string
	err       error
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, voice, rate string) (*Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastVoice = voice
	f.lastRate = rate
	if f.err != nil {
		return nil, f.err
	}
	return &Clip{
		AudioURL: "https://audio.test/" + text + ".mp3",
		Text:     text,
		Voice:    voice,
		Rate:     rate,
	}, nil
}

func (f *fakeSynthesizer) called() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testService(t *testing.T, synth Synthesizer) *Service {
	t.Helper()

	store := cache.NewMemoryStore(0, cache.DefaultConfig())
	t.Cleanup(store.Close)
	return NewService(store, synth, DefaultServiceConfig())
}

func TestService_Speak_CacheHit(t *testing.T) {
	synth := &fakeSynthesizer{}
	svc := testService(t, synth)
	ctx := context.Background()

	req := Request{Text: "good morning", Language: "en-US", Speed: SpeedNormal}

	first, err := svc.Speak(ctx, req)
	if err != nil {
		t.Fatalf("First Speak() failed: %v", err)
	}
	if first.FromCache {
		t.Error("First clip marked FromCache")
	}

	time.Sleep(50 * time.Millisecond)

	second, err := svc.Speak(ctx, req)
	if err != nil {
		t.Fatalf("Second Speak() failed: %v", err)
	}
	if !second.FromCache {
		t.Error("Second clip not marked FromCache")
	}
	if second.AudioURL != first.AudioURL {
		t.Errorf("Cached URL %q differs from fresh URL %q", second.AudioURL, first.AudioURL)
	}
	if synth.called() != 1 {
		t.Errorf("Synthesizer calls = %d, want 1", synth.called())
	}
}

func TestService_Speak_Normalization(t *testing.T) {
	synth := &fakeSynthesizer{}
	svc := testService(t, synth)
	ctx := context.Background()

	if _, err := svc.Speak(ctx, Request{Text: "apple"}); err != nil {
		t.Fatalf("Speak() failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	// Whitespace-padded text with the defaults spelled out is the same clip.
	if _, err := svc.Speak(ctx, Request{
		Text:     "  apple ",
		Voice:    VoiceForLanguage("en-US"),
		Speed:    SpeedNormal,
		Language: "en-US",
	}); err != nil {
		t.Fatalf("Speak() failed: %v", err)
	}

	if synth.called() != 1 {
		t.Errorf("Synthesizer calls = %d, want 1 (normalized requests share a key)", synth.called())
	}
	if synth.lastVoice != "en-US-AvaNeural" {
		t.Errorf("Voice = %q, want the en-US default", synth.lastVoice)
	}
	if synth.lastRate != "+0%" {
		t.Errorf("Rate = %q, want +0%%", synth.lastRate)
	}
}

func TestService_Speak_DistinctVoicesAreDistinctClips(t *testing.T) {
	synth := &fakeSynthesizer{}
	svc := testService(t, synth)
	ctx := context.Background()

	if _, err := svc.Speak(ctx, Request{Text: "apple", Language: "en-US"}); err != nil {
		t.Fatalf("Speak() failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if _, err := svc.Speak(ctx, Request{Text: "apple", Language: "en-GB"}); err != nil {
		t.Fatalf("Speak() failed: %v", err)
	}
	if _, err := svc.Speak(ctx, Request{Text: "apple", Language: "en-US", Speed: SpeedSlow}); err != nil {
		t.Fatalf("Speak() failed: %v", err)
	}

	if synth.called() != 3 {
		t.Errorf("Synthesizer calls = %d, want 3 (voice and rate are part of the key)", synth.called())
	}
}

func TestService_Speak_FailureNotCached(t *testing.T) {
	synth := &fakeSynthesizer{err: errors.New("synthesis unavailable")}
	svc := testService(t, synth)
	ctx := context.Background()

	if _, err := svc.Speak(ctx, Request{Text: "hello"}); err == nil {
		t.Fatal("Speak() should propagate the synthesis error")
	}

	synth.mu.Lock()
	synth.err = nil
	synth.mu.Unlock()

	clip, err := svc.Speak(ctx, Request{Text: "hello"})
	if err != nil {
		t.Fatalf("Speak() after recovery failed: %v", err)
	}
	if clip.FromCache {
		t.Error("Recovered clip marked FromCache, failure was memoized")
	}
	if synth.called() != 2 {
		t.Errorf("Synthesizer calls = %d, want 2", synth.called())
	}
}

func TestService_Speak_EmptyText(t *testing.T) {
	svc := testService(t, &fakeSynthesizer{})

	if _, err := svc.Speak(context.Background(), Request{Text: "   "}); err == nil {
		t.Fatal("Speak() with blank text should fail")
	}
}

func TestRateForSpeed(t *testing.T) {
	tests := []struct {
		speed    string
		expected string
	}{
		{"slow", "-20%"},
		{"normal", "+0%"},
		{"fast", "+20%"},
		{"FAST", "+20%"},
		{"", "+0%"},
		{"warp", "+0%"},
	}

	for _, tt := range tests {
		t.Run(tt.speed, func(t *testing.T) {
			if got := RateForSpeed(tt.speed); got != tt.expected {
				t.Errorf("RateForSpeed(%q) = %q, want %q", tt.speed, got, tt.expected)
			}
		})
	}
}

func TestVoiceForLanguage(t *testing.T) {
	if got := VoiceForLanguage("pt-BR"); got != "pt-BR-ThalitaNeural" {
		t.Errorf("VoiceForLanguage(pt-BR) = %q", got)
	}
	if got := VoiceForLanguage("fr-FR"); got != VoiceForLanguage(DefaultLanguage) {
		t.Errorf("Unknown language should fall back to the default voice, got %q", got)
	}
}
