// Package speech provides the typed client and caching service for the
// speech-synthesis upstream. Synthesized clips are keyed by the
// normalized (text, voice, rate) triple and cached for a week.
package speech

import (
	"strings"
)

// Speed names accepted from the app, mapped to synthesis rate strings.
const (
	SpeedSlow   = "slow"
	SpeedNormal = "normal"
	SpeedFast   = "fast"
)

// rateForSpeed maps the caller-facing speed name to the upstream rate.
var rateForSpeed = map[string]string{
	SpeedSlow:   "-20%",
	SpeedNormal: "+0%",
	SpeedFast:   "+20%",
}

// defaultVoices maps a language tag to its default neural voice.
var defaultVoices = map[string]string{
	"en-US": "en-US-AvaNeural",
	"en-GB": "en-GB-SoniaNeural",
	"pt-BR": "pt-BR-ThalitaNeural",
	"es-ES": "es-ES-XimenaNeural",
}

// DefaultLanguage is assumed when a request names neither voice nor language.
const DefaultLanguage = "en-US"

// Request asks for a synthesized clip. Voice wins over Language; when
// both are empty the default language's voice is used. Speed defaults to
// normal.
type Request struct {
	Text     string `json:"text"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
	Speed    string `json:"speed,omitempty"`
}

// Clip references a synthesized audio file.
type Clip struct {
	AudioURL   string `json:"audio_url"`
	Text       string `json:"text"`
	Voice      string `json:"voice"`
	Language   string `json:"language,omitempty"`
	Rate       string `json:"rate"`
	DurationMS int    `json:"duration_ms,omitempty"`
	Model      string `json:"model,omitempty"`
	FromCache  bool   `json:"from_cache"`
}

// VoiceForLanguage returns the default voice for a language tag, falling
// back to the default language's voice for unknown tags.
func VoiceForLanguage(language string) string {
	if voice, ok := defaultVoices[language]; ok {
		return voice
	}
	return defaultVoices[DefaultLanguage]
}

// RateForSpeed resolves a speed name to a synthesis rate string.
// Unknown names resolve to the normal rate.
func RateForSpeed(speed string) string {
	if rate, ok := rateForSpeed[strings.ToLower(strings.TrimSpace(speed))]; ok {
		return rate
	}
	return rateForSpeed[SpeedNormal]
}
