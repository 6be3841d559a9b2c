// Package upstream provides the shared HTTP machinery for the metered
// generation APIs: JSON round-trips, error classification, retry with
// backoff, request-budget gating and Prometheus metrics. The content and
// speech clients are thin typed layers over this package.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tapword-app/content-client/pkg/logging"
)

// Gate decides whether an upstream call may proceed and records the
// budget headers of each response. A quota.Tracker satisfies this; a nil
// Gate disables gating (tests, memory-only deployments).
type Gate interface {
	Allow(ctx context.Context) (bool, error)
	Record(ctx context.Context, headers http.Header, statusCode int) error
}

// Config holds the configuration for an upstream client.
type Config struct {
	// BaseURL is the root of the upstream API, without trailing slash.
	BaseURL string

	// APIKey is sent as the Authorization bearer token.
	APIKey string

	// Timeout bounds each HTTP attempt (the retry loop multiplies this).
	Timeout time.Duration

	// Gate is consulted before each call; nil disables gating.
	Gate Gate
}

// Client executes JSON POST calls against one upstream service with
// retry, classification, gating and metrics. Construct one per service.
type Client struct {
	service    string
	httpClient *http.Client
	cfg        Config
	logger     zerolog.Logger
}

// NewClient creates a client for the named service ("content", "speech").
func NewClient(service string, cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		service:    service,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logging.NewLogger(service + "-upstream"),
	}, nil
}

// PostJSON sends body as JSON to path and decodes the response into out.
// Retryable failures (5xx, 429, network) are retried with backoff; client
// errors and quota blocks return immediately. The returned error is an
// *Error for HTTP-level failures.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(c.service, path).Observe(time.Since(start).Seconds())
	}()

	if c.cfg.Gate != nil {
		allowed, err := c.cfg.Gate.Allow(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Quota check failed")
			return fmt.Errorf("quota check: %w", err)
		}
		if !allowed {
			requestsTotal.WithLabelValues(c.service, path, "quota_blocked").Inc()
			c.logger.Warn().Str("endpoint", path).Msg("Request blocked by quota gate")
			return ErrQuotaExhausted
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var respBody []byte

	retryErr := retryWithBackoff(ctx, c.service, func() (ErrorClass, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.cfg.BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return ErrorClassNetwork, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			class := Classify(nil, err)
			errorsTotal.WithLabelValues(c.service, string(class)).Inc()
			requestsTotal.WithLabelValues(c.service, path, "network_error").Inc()
			c.logger.Error().Err(err).Str("endpoint", path).Msg("Upstream request failed")
			return class, err
		}
		defer resp.Body.Close()

		if c.cfg.Gate != nil {
			if err := c.cfg.Gate.Record(ctx, resp.Header, resp.StatusCode); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to record quota headers")
			}
		}

		requestsTotal.WithLabelValues(c.service, path, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			class := Classify(resp, nil)
			errorsTotal.WithLabelValues(c.service, string(class)).Inc()

			c.logger.Warn().
				Str("endpoint", path).
				Int("status_code", resp.StatusCode).
				Str("error_class", string(class)).
				Msg("Upstream request error")

			return class, &Error{
				Service:    c.service,
				StatusCode: resp.StatusCode,
				Class:      class,
				Message:    resp.Status,
			}
		}

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			errorsTotal.WithLabelValues(c.service, string(ErrorClassNetwork)).Inc()
			return ErrorClassNetwork, fmt.Errorf("read response: %w", err)
		}
		return "", nil
	})
	if retryErr != nil {
		return retryErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode %s response: %w", c.service, err)
		}
	}
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
