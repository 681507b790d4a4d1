package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hattiebot/toolrunner/internal/core"
)

// BaseURL is the default OpenRouter API root.
const BaseURL = "https://openrouter.ai/api/v1"

// ErrNoAPIKey is returned when the client has no credential.
var ErrNoAPIKey = errors.New("openrouter: API key not set")

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTP       *http.Client
	MaxRetries int
	Backoff    time.Duration
	Logger     *log.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTP = h }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTP = &http.Client{Timeout: d}
		}
	}
}

// WithRetry sets the retry count and the initial backoff, doubled per attempt.
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.MaxRetries = maxRetries
		c.Backoff = backoff
	}
}

// WithLogger sets where retry diagnostics go.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.Logger = l }
}

// NewClient creates a client for baseURL (BaseURL when empty) with the given API key.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTP:       http.DefaultClient,
		MaxRetries: 3,
		Backoff:    1 * time.Second,
		Logger:     log.Default(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends one chat completion request and decodes the top level of the response.
// Network errors, 429 and 5xx are retried with exponential backoff; anything
// else that is not a decodable 200 response is returned as an error.
func (c *Client) Complete(ctx context.Context, req core.ChatRequest) (*core.ChatResponse, error) {
	if c.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if req.Model == "" {
		return nil, fmt.Errorf("openrouter: model not set")
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter: encode request: %w", err)
	}

	var (
		status    int
		bodyBytes []byte
		lastErr   error
	)
	backoff := c.Backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			c.Logger.Printf("[OPENROUTER] Retry %d/%d after %v...", attempt, c.MaxRetries, backoff)
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, fmt.Errorf("openrouter: %w", err)
			}
			backoff *= 2
		}

		status, bodyBytes, lastErr = c.do(ctx, raw)
		if lastErr != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("openrouter: %w", ctx.Err())
			}
			c.Logger.Printf("[OPENROUTER] Network error: %v", lastErr)
			continue
		}
		if status >= 500 || status == http.StatusTooManyRequests {
			c.Logger.Printf("[OPENROUTER] Retryable error: HTTP %d", status)
			lastErr = fmt.Errorf("HTTP %d: %s", status, string(bodyBytes))
			continue
		}
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("openrouter: request failed after %d retries: %w", c.MaxRetries, lastErr)
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("openrouter: HTTP %d: %s", status, string(bodyBytes))
	}
	var out core.ChatResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return nil, fmt.Errorf("openrouter: decode: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("openrouter: %s", out.Error.Message)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
