package speech

import (
	"context"
	"time"

	"github.com/tapword-app/content-client/pkg/upstream"
)

// Synthesizer produces fresh clips from the synthesis upstream. The
// service treats it as an opaque producer; *Client is the real
// implementation.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, rate string) (*Clip, error)
}

// Config holds the speech client configuration.
type Config struct {
	// BaseURL is the root of the synthesis API.
	BaseURL string

	// APIKey authenticates against the synthesis API.
	APIKey string

	// Timeout bounds each HTTP attempt.
	Timeout time.Duration

	// Gate is the optional quota gate; nil disables gating.
	Gate upstream.Gate
}

// Client is the HTTP client for the speech-synthesis upstream.
type Client struct {
	http *upstream.Client
}

// NewClient creates a speech client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}

	httpClient, err := upstream.NewClient("speech", upstream.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
		Gate:    cfg.Gate,
	})
	if err != nil {
		return nil, err
	}
	return &Client{http: httpClient}, nil
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Rate  string `json:"rate"`
}

// Synthesize asks the upstream to synthesize text with the given voice
// and rate. Inputs are expected to be normalized by the service.
func (c *Client) Synthesize(ctx context.Context, text, voice, rate string) (*Clip, error) {
	var out Clip
	req := synthesizeRequest{Text: text, Voice: voice, Rate: rate}
	if err := c.http.PostJSON(ctx, "/v1/synthesize", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
