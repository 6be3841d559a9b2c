package content

import (
	"context"
	"time"

	"github.com/tapword-app/content-client/pkg/upstream"
)

// Generator produces fresh content from the AI upstream. The service
// treats every method as an opaque producer; *Client is the real
// implementation.
type Generator interface {
	GenerateIntro(ctx context.Context, req IntroRequest) (*Intro, error)
	GeneratePhrases(ctx context.Context, req PhrasesRequest) (*PhraseSet, error)
	GenerateBreakdown(ctx context.Context, req BreakdownRequest) (*Breakdown, error)
	GenerateFunFacts(ctx context.Context, req FunFactsRequest) (*FunFacts, error)
	GenerateQuiz(ctx context.Context, req QuizRequest) (*Quiz, error)
	GenerateGame(ctx context.Context, req GameRequest) (*Game, error)
	Chat(ctx context.Context, req ChatRequest) (*ChatReply, error)
}

// Config holds the content client configuration.
type Config struct {
	// BaseURL is the root of the content API.
	BaseURL string

	// APIKey authenticates against the content API.
	APIKey string

	// Timeout bounds each HTTP attempt.
	Timeout time.Duration

	// Gate is the optional quota gate; nil disables gating.
	Gate upstream.Gate
}

// Client is the HTTP client for the AI content upstream.
type Client struct {
	http *upstream.Client
}

// NewClient creates a content client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	httpClient, err := upstream.NewClient("content", upstream.Config{
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

// GenerateIntro asks the upstream for an object introduction.
func (c *Client) GenerateIntro(ctx context.Context, req IntroRequest) (*Intro, error) {
	var out Intro
	if err := c.http.PostJSON(ctx, "/v1/generate/intro", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GeneratePhrases asks the upstream for contextual phrases.
func (c *Client) GeneratePhrases(ctx context.Context, req PhrasesRequest) (*PhraseSet, error) {
	var out PhraseSet
	if err := c.http.PostJSON(ctx, "/v1/generate/phrases", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateBreakdown asks the upstream for a pronunciation breakdown.
func (c *Client) GenerateBreakdown(ctx context.Context, req BreakdownRequest) (*Breakdown, error) {
	var out Breakdown
	if err := c.http.PostJSON(ctx, "/v1/generate/breakdown", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateFunFacts asks the upstream for fun facts.
func (c *Client) GenerateFunFacts(ctx context.Context, req FunFactsRequest) (*FunFacts, error) {
	var out FunFacts
	if err := c.http.PostJSON(ctx, "/v1/generate/funfacts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateQuiz asks the upstream for a quiz.
func (c *Client) GenerateQuiz(ctx context.Context, req QuizRequest) (*Quiz, error) {
	var out Quiz
	if err := c.http.PostJSON(ctx, "/v1/generate/quiz", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateGame asks the upstream for mini-game material.
func (c *Client) GenerateGame(ctx context.Context, req GameRequest) (*Game, error) {
	var out Game
	if err := c.http.PostJSON(ctx, "/v1/generate/game", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat asks the upstream for the next conversational reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	var out ChatReply
	if err := c.http.PostJSON(ctx, "/v1/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
