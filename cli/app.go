package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/config"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/corpus"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index/embedder/cache"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index/embedder/mock"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index/embedder/provider"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/llm"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/logger"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/pipeline"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/session"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/workflow"
)

// app holds the wired components for one command run.
type app struct {
	cfg          *config.Config
	log          *zap.Logger
	index        *index.Index
	orchestrator *pipeline.Orchestrator
	closers      []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.log.Sync()
}

// newIndexApp wires logging, the embedder and the index.
func newIndexApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	embedder, closeEmbedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeEmbedder)

	// The tokenizer is only needed when the index has to be built.
	load := func(ctx context.Context) ([]core.Chunk, error) {
		splitter, err := corpus.NewSplitter(cfg.Corpus.ChunkSize, cfg.Corpus.ChunkOverlap)
		if err != nil {
			return nil, err
		}
		return corpus.Loader(cfg.Corpus.Directory, splitter)(ctx)
	}

	ix, err := index.BuildOrOpen(ctx, index.Config{
		Directory:  cfg.Index.Directory,
		Collection: cfg.Index.Collection,
		TopK:       cfg.Index.TopK,
	}, embedder, load, index.WithLogger(log))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.index = ix
	return a, nil
}

// newApp wires the full answering pipeline.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a, err := newIndexApp(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gen, err := llm.NewAnthropic(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
		RPS:         cfg.LLM.RPS,
		BaseURL:     cfg.LLM.BaseURL,
	}, llm.WithLogger(a.log))
	if err != nil {
		a.Close()
		return nil, err
	}

	wf := workflow.New(a.index, gen, workflow.WithLogger(a.log))
	store := session.NewStore(session.WithTTL(cfg.Session.TTL), session.WithLogger(a.log))
	a.orchestrator = pipeline.New(store, wf,
		pipeline.WithTimeout(cfg.App.QueryTimeout),
		pipeline.WithLogger(a.log))
	return a, nil
}

// newEmbedder builds the configured embedding provider, wrapped in a
// query cache when CacheSize is positive.
func newEmbedder(cfg config.EmbeddingConfig) (index.Embedder, func(), error) {
	pcfg := provider.Config{RPS: cfg.RPS, Timeout: cfg.Timeout}

	var (
		embedder index.Embedder
		closer   = func() {}
	)
	switch cfg.Provider {
	case "ollama":
		embedder = provider.NewOllama(cfg.Model, cfg.OllamaBaseURL, pcfg)
	case "openai":
		e, err := provider.NewOpenAI(cfg.OpenAIKey, cfg.Model, pcfg)
		if err != nil {
			return nil, nil, err
		}
		embedder = e
	case "onnx":
		e, closeONNX, err := newONNXEmbedder(cfg)
		if err != nil {
			return nil, nil, err
		}
		embedder, closer = e, closeONNX
	case "mock":
		embedder = mock.New()
	default:
		return nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	if cfg.CacheSize <= 0 {
		return embedder, closer, nil
	}
	cached, err := cache.New(embedder, cfg.CacheSize)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return cached, func() {
		cached.Close()
		closer()
	}, nil
}
