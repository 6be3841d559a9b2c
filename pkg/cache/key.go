package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key categories. The category is the first segment of a key string and
// selects the TTL policy for the entry (audio vs. generated content).
const (
	CategoryAudio   = "audio"
	CategoryContent = "ai"
)

// Key represents the logical identity of a cacheable request.
// Distinct logical requests must map to distinct keys; the digest is a
// full SHA-256 over the canonicalized request identity, so collisions are
// not a practical concern. Input normalization (trimming, defaulting
// voice and speed) is the caller's responsibility and happens before
// derivation.
type Key struct {
	// Category is "audio" for synthesized speech, "ai" for generated content
	Category string

	// Kind is the content kind for ai keys (intro, phrases, chat, ...); empty for audio
	Kind string

	// Digest is the hex SHA-256 of the canonicalized request identity
	Digest string
}

// String renders the key in its storage form.
// Format: audio:<digest> or ai:<kind>:<digest>
func (k Key) String() string {
	if k.Kind == "" {
		return k.Category + ":" + k.Digest
	}
	return k.Category + ":" + k.Kind + ":" + k.Digest
}

// SpeechKey derives the cache key for a synthesis request.
// rate is the synthesis rate string ("+0%", "-20%", ...), already resolved
// from the caller-facing speed name.
func SpeechKey(text, voice, rate string) Key {
	return Key{
		Category: CategoryAudio,
		Digest:   digest("tts|" + text + "|" + voice + "|" + rate),
	}
}

// ContentKey derives the cache key for a generated-content request.
// canonical is the canonical serialization of the request payload; the
// caller marshals it exactly once so the key and the upstream request
// agree on the identity.
func ContentKey(kind string, canonical []byte) Key {
	return Key{
		Category: CategoryContent,
		Kind:     kind,
		Digest:   digest(kind + "|" + string(canonical)),
	}
}

// Category returns the category segment of a key string ("audio", "ai").
// Returns the whole key if it has no separator.
func Category(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

func digest(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
