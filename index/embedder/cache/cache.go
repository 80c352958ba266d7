// Package cache puts an in-process cache in front of an embedder so
// repeated queries skip the provider call.
package cache

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index"
)

// Embedder caches embeddings by exact text.
type Embedder struct {
	inner index.Embedder
	cache *ristretto.Cache
}

// New wraps inner with a cache holding roughly maxEntries vectors.
func New(inner index.Embedder, maxEntries int) (*Embedder, error) {
	if maxEntries <= 0 {
		maxEntries = 1000
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(maxEntries) * 10, // ristretto recommends 10x entries
		MaxCost:     int64(maxEntries),
		BufferItems: 64,

		// cost is counted in entries, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &Embedder{inner: inner, cache: c}, nil
}

// Embed returns the cached vector for text or computes and stores it.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		return v.([]float32), nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(text, vec, 1)
	e.cache.Wait()
	return vec, nil
}

// Dimensions returns the wrapped embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Close stops the cache's background goroutines.
func (e *Embedder) Close() {
	e.cache.Close()
}
