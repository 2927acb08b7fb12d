package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// HTTPCompleter calls an OpenAI-compatible chat completions API.
//
// Works with OpenAI, hosted inference proxies, and self-hosted gateways that
// front a foundation model behind the same wire format. Temperature is pinned
// to 0 so extraction output is reproducible for identical prompts.
type HTTPCompleter struct {
	client *openai.Client
	model  string
}

// HTTPConfig configures the HTTP completer.
type HTTPConfig struct {
	// BaseURL is the base URL of the completion service, e.g.
	// "https://api.openai.com/v1" or an internal proxy endpoint.
	BaseURL string

	// Model is the chat model identifier.
	Model string

	// APIKey for authentication (optional for local proxies).
	APIKey string

	// Timeout for HTTP requests (default: 60s).
	Timeout time.Duration
}

// NewHTTPCompleter creates a new chat-completions-backed completer.
func NewHTTPCompleter(cfg HTTPConfig) (*HTTPCompleter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "dummy-key" // Local proxies don't need real key
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = cfg.BaseURL
	config.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	return &HTTPCompleter{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}, nil
}

// Complete sends the prompt as a single user message and returns the first
// choice's content.
func (c *HTTPCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Model returns the chat model identifier.
func (c *HTTPCompleter) Model() string {
	return c.model
}
