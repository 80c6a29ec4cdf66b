// Package genai provides language model completions for JekleTube.
//
// It wraps the OpenAI-compatible chat completion endpoint exposed by
// Mistral and bounds every call with a fixed deadline.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Constants for GenAI client configuration
const (
	// DefaultBaseURL is Mistral's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.mistral.ai/v1"
	// DefaultModel is the chat model used for replies.
	DefaultModel = "mistral-large-latest"
	// DefaultTimeout bounds one completion call.
	DefaultTimeout = 50 * time.Second
	// maxCompletionTokens caps the length of a generated reply.
	maxCompletionTokens = 1000
)

// ErrTimeout is returned when a completion exceeds the configured deadline.
var ErrTimeout = errors.New("completion timed out")

// Completer is an interface for generating replies (for production and testing).
type Completer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey  string        // Mistral API key
	BaseURL string        // API base URL (overridden in tests)
	Model   string        // chat model name
	Timeout time.Duration // per-call deadline
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) {
		o.APIKey = key
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(o *Opts) {
		o.BaseURL = url
	}
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(o *Opts) {
		o.Model = model
	}
}

// WithTimeout overrides the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) {
		o.Timeout = d
	}
}

// Client generates chat completions against the Mistral API.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new GenAI client, applying any provided options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Mistral API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	slog.Debug("GenAI NewClient options set", "baseURL", cfg.BaseURL, "model", cfg.Model, "timeout", cfg.Timeout)

	// Single attempt per call: delivery discipline is one try, no retries.
	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	)
	return &Client{api: api, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Generate produces a reply for a single user prompt. The call is bounded
// by the configured deadline; exceeding it returns ErrTimeout.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	slog.Debug("GenAI Generate", "prompt_length", len(prompt), "model", c.model)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		MaxTokens: openai.Int(maxCompletionTokens),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Error("GenAI Generate timed out", "timeout", c.timeout)
			return "", ErrTimeout
		}
		slog.Error("GenAI Generate failed", "error", err)
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	reply := resp.Choices[0].Message.Content
	slog.Debug("GenAI Generate succeeded", "reply_length", len(reply))
	return reply, nil
}
