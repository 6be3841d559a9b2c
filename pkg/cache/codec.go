package cache

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Codec serializes entries for durable tiers. Memory tiers store entries
// directly and do not use a codec.
type Codec interface {
	Encode(entry *Entry) ([]byte, error)
	Decode(data []byte) (*Entry, error)
}

// JSONCodec serializes entries as JSON.
type JSONCodec struct{}

func (JSONCodec) Encode(entry *Entry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return data, nil
}

func (JSONCodec) Decode(data []byte) (*Entry, error) {
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return &entry, nil
}

// ZstdCodec compresses another codec's output with zstd. Synthesized
// speech payloads and AI responses are text-heavy, so durable storage
// shrinks considerably.
type ZstdCodec struct {
	inner   Codec
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstdCodec wraps inner with zstd compression. The encoder and decoder
// are reused across calls; EncodeAll/DecodeAll are safe for concurrent use.
func NewZstdCodec(inner Codec) (*ZstdCodec, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &ZstdCodec{inner: inner, encoder: encoder, decoder: decoder}, nil
}

func (c *ZstdCodec) Encode(entry *Entry) ([]byte, error) {
	data, err := c.inner.Encode(entry)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func (c *ZstdCodec) Decode(data []byte) (*Entry, error) {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrInvalidEntry, err)
	}
	return c.inner.Decode(raw)
}
