// Package model invokes the external text-generation endpoint that analyses activities.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single model invocation.
const DefaultTimeout = 5 * time.Second

const maxErrorBody = 4 << 10

// ErrEmptyResponse is returned when the endpoint answers with an empty body.
var ErrEmptyResponse = errors.New("model returned empty response")

// Client sends a prompt to the model and returns the raw response text.
type Client interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// StatusError reports a non-2xx answer from the model endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model endpoint returned %d: %s", e.Code, e.Body)
}

// request mirrors the generateContent body: {"contents":[{"parts":[{"text":...}]}]}.
type request struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// HTTPConfig contains tunables for HTTPClient.
type HTTPConfig struct {
	URL       string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables limiting
}

// HTTPClient posts prompts to a generateContent-compatible REST endpoint.
type HTTPClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPClient constructs an HTTPClient.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &HTTPClient{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c
}

// Invoke implements Client. The response body is returned verbatim.
func (c *HTTPClient) Invoke(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(request{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read model response: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", ErrEmptyResponse
	}
	return string(data), nil
}
