package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/c360/semquery/metric"
)

// HTTPEmbedder embeds one text per call against an OpenAI-compatible
// endpoint (OpenAI itself, TEI, LocalAI, or any proxy speaking the same
// API). Repeated texts are served from the cache when one is configured, so
// category descriptions and recurring item texts cost one upstream call per
// run at most.
type HTTPEmbedder struct {
	client  *openai.Client
	model   string
	cache   Cache
	metrics *metric.Metrics
	logger  *slog.Logger
}

// HTTPConfig configures the HTTP embedder.
type HTTPConfig struct {
	// BaseURL of the embedding service, e.g. "https://api.openai.com/v1".
	BaseURL string

	// Model identifier, e.g. "text-embedding-3-small".
	Model string

	// APIKey for authentication (optional for local services).
	APIKey string

	// Timeout for HTTP requests (default: 30s).
	Timeout time.Duration

	// Cache for embedding results (optional).
	Cache Cache

	// Metrics records oracle call counts and latency (optional).
	Metrics *metric.Metrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewHTTPEmbedder creates an embedder for the configured endpoint.
func NewHTTPEmbedder(cfg HTTPConfig) (*HTTPEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "dummy-key" // Local services don't need a real key
	}

	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPEmbedder{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		cache:   cfg.Cache,
		metrics: cfg.Metrics,
		logger:  logger,
	}, nil
}

// Embed returns the embedding for one text, consulting the cache first.
func (h *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	hash := ContentHash(text)
	if h.cache != nil {
		if vec, err := h.cache.Get(ctx, hash); err == nil {
			return vec, nil
		}
	}

	start := time.Now()
	resp, err := h.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(h.model),
	})
	if err == nil && (len(resp.Data) != 1 || len(resp.Data[0].Embedding) == 0) {
		err = fmt.Errorf("embedding API returned %d vectors for one text", len(resp.Data))
	}
	if h.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		h.metrics.RecordEmbeddingCall(status, time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("embedding API call failed: %w", err)
	}

	vec := resp.Data[0].Embedding
	if h.cache != nil {
		// Cache is best-effort
		if err := h.cache.Put(ctx, hash, vec); err != nil {
			h.logger.Warn("embedding cache put failed", "hash", hash, "error", err)
		}
	}
	return vec, nil
}
