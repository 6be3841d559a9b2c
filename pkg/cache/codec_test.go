package cache

import (
	"errors"
	"testing"
	"time"
)

func TestJSONCodec_RoundTrip(t *testing.T) {
	codec := JSONCodec{}
	entry := NewEntry([]byte(`{"audio_url":"https://audio.test/a.mp3"}`), time.Hour)

	data, err := codec.Encode(entry)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if string(decoded.Data) != string(entry.Data) {
		t.Errorf("Data = %s, want %s", decoded.Data, entry.Data)
	}
	if !decoded.ExpiresAt.Equal(entry.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", decoded.ExpiresAt, entry.ExpiresAt)
	}
}

func TestJSONCodec_CorruptPayload(t *testing.T) {
	codec := JSONCodec{}

	if _, err := codec.Decode([]byte("{truncated")); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Decode() of corrupt bytes = %v, want ErrInvalidEntry", err)
	}
}

func TestZstdCodec_RoundTrip(t *testing.T) {
	codec, err := NewZstdCodec(JSONCodec{})
	if err != nil {
		t.Fatalf("NewZstdCodec() failed: %v", err)
	}

	entry := NewEntry([]byte(`{"intro_text":"Hi! I'm a cozy bed. I love naps."}`), time.Hour)

	data, err := codec.Encode(entry)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if string(decoded.Data) != string(entry.Data) {
		t.Errorf("Data = %s, want %s", decoded.Data, entry.Data)
	}
}

func TestZstdCodec_CorruptPayload(t *testing.T) {
	codec, err := NewZstdCodec(JSONCodec{})
	if err != nil {
		t.Fatalf("NewZstdCodec() failed: %v", err)
	}

	if _, err := codec.Decode([]byte("not zstd frames")); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Decode() of corrupt bytes = %v, want ErrInvalidEntry", err)
	}
}
