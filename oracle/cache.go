package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
)

// ErrCacheMiss is returned by Cache.Get when no entry exists for the hash.
var ErrCacheMiss = errors.New("embedding cache miss")

// MemoryCache implements Cache with a bounded in-process map.
//
// Embeddings are stored with content-addressed keys (SHA-256 hash of text)
// to enable deduplication. When the cache reaches capacity, the whole map is
// dropped; category descriptions are re-embedded on the next refresh cycle,
// so a coarse eviction policy is acceptable here.
type MemoryCache struct {
	mu       sync.RWMutex
	maxItems int
	entries  map[string][]float32
}

// NewMemoryCache creates an in-memory embedding cache holding up to maxItems
// entries (default 4096 when maxItems <= 0).
func NewMemoryCache(maxItems int) *MemoryCache {
	if maxItems <= 0 {
		maxItems = 4096
	}
	return &MemoryCache{
		maxItems: maxItems,
		entries:  make(map[string][]float32),
	}
}

// Get retrieves a cached embedding by content hash.
func (c *MemoryCache) Get(_ context.Context, contentHash string) ([]float32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	embedding, ok := c.entries[contentHash]
	if !ok {
		return nil, ErrCacheMiss
	}
	return embedding, nil
}

// Put stores an embedding in the cache with the given content hash.
func (c *MemoryCache) Put(_ context.Context, contentHash string, embedding []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxItems {
		c.entries = make(map[string][]float32)
	}
	c.entries[contentHash] = embedding
	return nil
}

// Len returns the number of cached embeddings.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ContentHash generates a SHA-256 hash of text content for use as a cache key.
//
// This function provides consistent hashing across the codebase for
// content-addressed storage.
func ContentHash(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
