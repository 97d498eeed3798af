// Package llm provides the reasoning-service client and helpers for
// recovering structured actions from free-text model output.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eventpilot/eventpilot/internal/types"
	openai "github.com/sashabaranov/go-openai"
)

// RateLimitError signals that the reasoning service rejected a request
// because of rate limiting. The caller should wait RetryAfter (or its own
// default interval) and resubmit the same request unchanged.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// Config holds reasoning-service client configuration.
type Config struct {
	Endpoint    string // OpenAI-compatible base URL, e.g. the Groq API
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultConfig returns defaults targeting the Groq OpenAI-compatible API.
func DefaultConfig() Config {
	return Config{
		Endpoint:    "https://api.groq.com/openai/v1",
		Model:       "llama3-70b-8192",
		Temperature: 0.3,
		MaxTokens:   1024,
		Timeout:     60 * time.Second,
	}
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewClient creates a reasoning-service client.
func NewClient(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		apiCfg.BaseURL = cfg.Endpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Chat sends the full conversation history and returns the assistant's
// textual reply. HTTP 429 surfaces as *RateLimitError.
func (c *Client) Chat(ctx context.Context, history []types.Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", &RateLimitError{Err: err}
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from reasoning service")
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}
