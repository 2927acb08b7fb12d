// Package oracle provides the similarity oracle consumed by the classifier:
// embedding generation plus vector similarity scoring.
//
// The oracle itself is an external service; this package contains the client
// interfaces, an OpenAI-compatible HTTP implementation, and an in-memory
// content-addressed cache.
package oracle

import "context"

// Embedder generates the embedding vector for one text. Classification and
// category refresh both embed texts one at a time, so this is the whole
// surface the service needs from a provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Oracle combines embedding generation with similarity scoring. Scores are
// in [-1, 1] and deterministic for identical inputs within one run.
type Oracle interface {
	// Embed returns the embedding for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Similarity returns the similarity score between two embeddings.
	Similarity(a, b []float32) float64
}

// Cache provides content-addressed caching for embeddings.
//
// Implementations should use a hash of the text content as the key to enable
// deduplication and fast lookups.
type Cache interface {
	// Get retrieves a cached embedding for the given content hash. Returns an
	// error if the embedding is not found in the cache.
	Get(ctx context.Context, contentHash string) ([]float32, error)

	// Put stores an embedding in the cache with the given content hash.
	Put(ctx context.Context, contentHash string, embedding []float32) error
}

// CosineOracle adapts any Embedder into an Oracle using cosine similarity.
type CosineOracle struct {
	embedder Embedder
}

// NewCosineOracle wraps an embedder with cosine similarity scoring.
func NewCosineOracle(embedder Embedder) *CosineOracle {
	return &CosineOracle{embedder: embedder}
}

// Embed returns the embedding for one text.
func (o *CosineOracle) Embed(ctx context.Context, text string) ([]float32, error) {
	return o.embedder.Embed(ctx, text)
}

// Similarity returns the cosine similarity between two embeddings.
func (o *CosineOracle) Similarity(a, b []float32) float64 {
	return CosineSimilarity(a, b)
}
