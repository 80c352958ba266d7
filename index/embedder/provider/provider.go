// Package provider adapts remote embedding APIs to index.Embedder.
//
// The HTTP clients are chromem-go's built-in embedding funcs; this package
// adds throttling, a per-call timeout and dimension tracking on top.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"golang.org/x/time/rate"
)

// Config tunes calls to the provider.
type Config struct {
	// RPS caps requests per second. Zero disables throttling.
	RPS float64

	// Timeout bounds a single embedding call. Zero means no timeout.
	Timeout time.Duration
}

// Embedder calls a remote embedding provider.
type Embedder struct {
	name    string
	fn      chromem.EmbeddingFunc
	limiter *rate.Limiter
	timeout time.Duration
	dims    atomic.Int64
}

// New wraps an arbitrary chromem embedding func.
func New(name string, fn chromem.EmbeddingFunc, cfg Config) *Embedder {
	e := &Embedder{
		name:    name,
		fn:      fn,
		timeout: cfg.Timeout,
	}
	if cfg.RPS > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	return e
}

// NewOllama embeds through a local Ollama server.
// baseURL is the API root, e.g. http://localhost:11434/api.
func NewOllama(model, baseURL string, cfg Config) *Embedder {
	return New("ollama", chromem.NewEmbeddingFuncOllama(model, baseURL), cfg)
}

// NewOpenAI embeds through the OpenAI embeddings API.
func NewOpenAI(apiKey, model string, cfg Config) (*Embedder, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if model == "" {
		model = string(chromem.EmbeddingModelOpenAI3Small)
	}
	return New("openai", chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI(model)), cfg), nil
}

// Embed converts text to an embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: wait for rate limit: %w", e.name, err)
		}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	vec, err := e.fn(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.name, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%s: empty embedding returned", e.name)
	}

	e.dims.CompareAndSwap(0, int64(len(vec)))
	return vec, nil
}

// Dimensions returns the vector size seen on the first successful call,
// or 0 before any call.
func (e *Embedder) Dimensions() int {
	return int(e.dims.Load())
}
