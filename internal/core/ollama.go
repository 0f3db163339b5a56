package core

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

	"github.com/cenkalti/backoff/v5"
	"gwi.com/synthetic-respondents/internal/config"
)

const (
	healthCheckTimeout    = 5 * time.Second
	defaultInitialBackoff = 500 * time.Millisecond
)

type generateRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	Temperature float64  `json:"temperature"`
	Stream      bool     `json:"stream"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// OllamaClient talks to a local Ollama server's /generate and /tags endpoints.
type OllamaClient struct {
	cfg            config.InferenceConfig
	client         *http.Client
	healthTimeout  time.Duration
	initialBackoff time.Duration
}

func NewOllamaClient(cfg config.InferenceConfig) *OllamaClient {
	return &OllamaClient{
		cfg:            cfg,
		client:         &http.Client{Timeout: cfg.Timeout},
		healthTimeout:  healthCheckTimeout,
		initialBackoff: defaultInitialBackoff,
	}
}

func (c *OllamaClient) Name() string {
	return "ollama:" + c.cfg.Model
}

func (c *OllamaClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	payload := generateRequest{
		Model:       c.cfg.Model,
		Prompt:      prompt,
		Temperature: temperature,
		Stream:      false,
		NumPredict:  c.cfg.MaxTokens,
		Stop:        c.cfg.StopSequences,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	if c.cfg.MaxRetries <= 0 {
		return c.generate(ctx, body)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	return backoff.Retry(ctx, func() (string, error) {
		text, err := c.generate(ctx, body)
		if err != nil && !isRetryable(err) {
			return "", backoff.Permanent(err)
		}
		return text, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(c.cfg.MaxRetries+1)))
}

func (c *OllamaClient) generate(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", &InferenceError{Op: "ollama generate", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &InferenceError{Op: "ollama generate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &InferenceError{
			Op:         "ollama generate",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(detail))),
		}
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &InferenceError{
			Op:         "ollama generate",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return result.Response, nil
}

// HealthCheck reports whether /tags answered within healthTimeout; any HTTP
// response counts.
func (c *OllamaClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

func (c *OllamaClient) Close() error { return nil }

// isRetryable: connection errors, 429 and 5xx. Anything that reached a 2xx
// and failed to decode, or a 4xx, will fail the same way again.
func isRetryable(err error) bool {
	var ie *InferenceError
	if !errors.As(err, &ie) {
		return false
	}
	switch {
	case ie.StatusCode == 0:
		return true
	case ie.StatusCode == http.StatusTooManyRequests:
		return true
	case ie.StatusCode >= 500:
		return true
	}
	return false
}
