// Package llmclient is an OpenAI-compatible chat completions client with
// bounded retry and SSE streaming. It satisfies the orchestrator's
// ModelClient capability and the conversation manager's Summarizer.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/marmotcli/marmot/src/aisdk"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 120 * time.Second
)

// Config holds client configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	RetryCount int
	RetryDelay time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	retryCount int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient validates the config and creates a client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if config.Model == "" {
		return nil, ErrNoModel
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.RetryCount == 0 {
		config.RetryCount = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		model:      config.Model,
		retryCount: config.RetryCount,
		retryDelay: config.RetryDelay,
		httpClient: config.HTTPClient,
		logger:     logger.With("component", "llm_client", "model", config.Model),
	}, nil
}

// Model returns the bound model id.
func (c *Client) Model() string { return c.model }

// CreateChatCompletion sends a chat completion request.
func (c *Client) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	if len(req.Messages) == 0 {
		return nil, ErrEmptyMessages
	}
	if req.Model == "" {
		req.Model = c.model
	}

	resp, err := c.doJSON(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleError(resp)
	}

	var result aisdk.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	c.logger.Debug("chat completion succeeded", "usage_total", result.Usage.TotalTokens)
	return &result, nil
}

// Chat implements the orchestrator's model capability for batch turns.
func (c *Client) Chat(ctx context.Context, messages []aisdk.Message, tools []*aisdk.ChatTool) (any, error) {
	resp, err := c.CreateChatCompletion(ctx, &aisdk.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Stream implements the orchestrator's model capability for streaming turns.
func (c *Client) Stream(ctx context.Context, messages []aisdk.Message, tools []*aisdk.ChatTool) (aisdk.Stream, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyMessages
	}

	req := &aisdk.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
		Stream:   true,
	}
	resp, err := c.doJSON(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.handleError(resp)
	}
	return newSSEStream(resp.Body), nil
}

// Summarize implements the conversation manager's summarizer capability: one
// synchronous completion whose text content is the summary.
func (c *Client) Summarize(ctx context.Context, messages []aisdk.Message) (string, error) {
	resp, err := c.CreateChatCompletion(ctx, &aisdk.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// doJSON marshals the request and performs it with retry.
func (c *Client) doJSON(ctx context.Context, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.doRequestWithRetry(ctx, "/chat/completions", body)
}

// doRequestWithRetry performs the request with a bounded attempt count and a
// growing per-attempt delay. Transport failures, 5xx, and 429 are retried;
// other client errors (including auth failures) return immediately.
func (c *Client) doRequestWithRetry(ctx context.Context, path string, body []byte) (*http.Response, error) {
	logger := c.logger.With("path", path)
	var lastErr error

	for attempt := 1; attempt <= c.retryCount; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			logger.Debug("request attempt failed", "attempt", attempt, "error", err)
			if !c.backoff(ctx, attempt) {
				return nil, ctx.Err()
			}
			continue
		}

		if resp.StatusCode < 400 {
			return resp, nil
		}

		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		if !retryable || attempt == c.retryCount {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		logger.Debug("retrying after error response", "attempt", attempt, "status_code", resp.StatusCode)
		if !c.backoff(ctx, attempt) {
			return nil, ctx.Err()
		}
	}

	logger.Error("request failed after all retries", "retry_count", c.retryCount, "error", lastErr)
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.retryCount, lastErr)
}

func (c *Client) backoff(ctx context.Context, attempt int) bool {
	timer := time.NewTimer(c.retryDelay * time.Duration(attempt))
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// handleError converts a non-200 response into an APIError.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error response: %w", err)
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RetryAfter: resp.Header.Get("Retry-After"),
	}

	var errResp aisdk.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		apiErr.Type = errResp.Error.Type
		apiErr.Message = errResp.Error.Message
		apiErr.Code = errResp.Error.Code
	} else {
		apiErr.Message = string(body)
	}

	if apiErr.IsAuthError() {
		c.logger.Error("authentication failed", "status_code", resp.StatusCode)
	} else if apiErr.IsRateLimit() {
		c.logger.Warn("rate limited", "retry_after", apiErr.RetryAfter)
	}
	return apiErr
}
