package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
)

// Metadata keys stored with every document.
const (
	metaDocumentID = "document_id"
	metaOffset     = "offset"
)

// buildLocks serializes build-or-open per persisted collection so two
// concurrent first starts never build the same collection twice.
var buildLocks sync.Map // map[string]*sync.Mutex

func lockFor(cfg Config) *sync.Mutex {
	key := filepath.Clean(cfg.Directory) + "\x00" + cfg.Collection
	mu, _ := buildLocks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Index is a chromem-go backed vector index over corpus chunks.
type Index struct {
	db       *chromem.DB
	col      *chromem.Collection
	embedder Embedder
	cfg      Config
	log      *zap.Logger
}

// BuildOrOpen opens the persisted collection named in cfg, or builds it
// from corpus if it does not exist yet. Opening never calls corpus and
// never embeds documents.
func BuildOrOpen(ctx context.Context, cfg Config, embedder Embedder, corpus CorpusFunc, opts ...Option) (*Index, error) {
	if embedder == nil {
		return nil, core.IndexBuildError("build or open", errors.New("embedder is required"))
	}

	ix := &Index{
		embedder: embedder,
		cfg:      cfg.withDefaults(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ix)
	}

	mu := lockFor(ix.cfg)
	mu.Lock()
	defer mu.Unlock()

	db, err := chromem.NewPersistentDB(ix.cfg.Directory, ix.cfg.Compress)
	if err != nil {
		return nil, core.IndexBuildError("open persistent db", err)
	}
	ix.db = db

	col, err := ix.existing()
	if err != nil {
		return nil, err
	}
	if col != nil {
		ix.log.Info("loading existing collection",
			zap.String("collection", ix.cfg.Collection),
			zap.Int("documents", col.Count()))
		ix.col = col
		return ix, nil
	}

	ix.log.Info("creating new collection",
		zap.String("collection", ix.cfg.Collection),
		zap.String("directory", ix.cfg.Directory))
	if err := ix.build(ctx, corpus); err != nil {
		return nil, err
	}
	return ix, nil
}

// Exists reports whether a non-empty collection is persisted for cfg.
// It does not create the persistence directory.
func Exists(cfg Config) (bool, error) {
	cfg = cfg.withDefaults()

	info, err := os.Stat(cfg.Directory)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat index directory: %w", err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("index path %s is not a directory", cfg.Directory)
	}

	db, err := chromem.NewPersistentDB(cfg.Directory, cfg.Compress)
	if err != nil {
		return false, fmt.Errorf("open persistent db: %w", err)
	}
	col := db.GetCollection(cfg.Collection, nil)
	return col != nil && col.Count() > 0, nil
}

// existing returns the persisted collection, or nil if it must be built.
// An empty collection is left over from an interrupted build and is removed.
func (ix *Index) existing() (*chromem.Collection, error) {
	col := ix.db.GetCollection(ix.cfg.Collection, ix.embedFunc())
	if col == nil {
		return nil, nil
	}
	if col.Count() > 0 {
		return col, nil
	}

	ix.log.Warn("discarding empty collection", zap.String("collection", ix.cfg.Collection))
	if err := ix.db.DeleteCollection(ix.cfg.Collection); err != nil {
		return nil, core.IndexBuildError("delete empty collection", err)
	}
	return nil, nil
}

func (ix *Index) build(ctx context.Context, corpus CorpusFunc) error {
	if corpus == nil {
		return core.IndexBuildError("build", core.ErrEmptyCorpus)
	}

	chunks, err := corpus(ctx)
	if err != nil {
		return core.IndexBuildError("load corpus", err)
	}
	chunks = nonEmpty(chunks)
	if len(chunks) == 0 {
		return core.IndexBuildError("build", core.ErrEmptyCorpus)
	}

	docs, err := ix.embedChunks(ctx, chunks)
	if err != nil {
		return core.EmbeddingError("embed corpus", err)
	}

	col, err := ix.db.CreateCollection(ix.cfg.Collection, map[string]string{
		"chunks": strconv.Itoa(len(docs)),
	}, ix.embedFunc())
	if err != nil {
		return core.IndexBuildError("create collection", err)
	}

	if err := col.AddDocuments(ctx, docs, ix.cfg.Concurrency); err != nil {
		// Leave nothing behind that a later start would mistake for a
		// complete collection.
		if delErr := ix.db.DeleteCollection(ix.cfg.Collection); delErr != nil {
			ix.log.Error("delete partial collection", zap.Error(delErr))
		}
		return core.IndexBuildError("persist documents", err)
	}

	ix.log.Info("collection built",
		zap.String("collection", ix.cfg.Collection),
		zap.Int("documents", len(docs)))
	ix.col = col
	return nil
}

// embedChunks embeds every chunk with bounded concurrency.
func (ix *Index) embedChunks(ctx context.Context, chunks []core.Chunk) ([]chromem.Document, error) {
	docs := make([]chromem.Document, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Concurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			id := chunk.ID
			if id == "" {
				id = fmt.Sprintf("chunk-%06d", i)
			}

			vec, err := ix.embedder.Embed(gctx, chunk.Content)
			if err != nil {
				return fmt.Errorf("embed chunk %s: %w", id, err)
			}

			docs[i] = chromem.Document{
				ID:        id,
				Content:   chunk.Content,
				Embedding: vec,
				Metadata:  chunkMetadata(chunk),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Query returns the TopK chunks most similar to text.
func (ix *Index) Query(ctx context.Context, text string) (core.RetrievalResult, error) {
	return ix.Search(ctx, text, ix.cfg.TopK)
}

// Search returns at most k chunks most similar to text, highest first.
// If the collection holds fewer than k chunks, all of them are returned.
func (ix *Index) Search(ctx context.Context, text string, k int) (core.RetrievalResult, error) {
	result := core.RetrievalResult{Query: text}

	count := ix.col.Count()
	if k <= 0 || count == 0 {
		return result, nil
	}
	// chromem-go requires nResults <= collection size
	if k > count {
		k = count
	}

	embedding, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return result, core.EmbeddingError("embed query", err)
	}

	hits, err := ix.col.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return result, fmt.Errorf("query collection: %w", err)
	}

	result.Chunks = make([]core.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		result.Chunks = append(result.Chunks, toScoredChunk(hit))
	}

	ix.log.Debug("retrieved chunks",
		zap.String("query", text),
		zap.Int("k", k),
		zap.Int("results", len(result.Chunks)))
	return result, nil
}

// Count returns the number of indexed chunks.
func (ix *Index) Count() int {
	return ix.col.Count()
}

// TopK returns the default number of results for Query.
func (ix *Index) TopK() int {
	return ix.cfg.TopK
}

func (ix *Index) embedFunc() chromem.EmbeddingFunc {
	return ix.embedder.Embed
}

func nonEmpty(chunks []core.Chunk) []core.Chunk {
	out := make([]core.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) != "" {
			out = append(out, c)
		}
	}
	return out
}

func chunkMetadata(c core.Chunk) map[string]string {
	meta := make(map[string]string, len(c.Metadata)+2)
	for k, v := range c.Metadata {
		meta[k] = v
	}
	meta[metaDocumentID] = c.DocumentID
	meta[metaOffset] = strconv.Itoa(c.Offset)
	return meta
}

func toScoredChunk(r chromem.Result) core.ScoredChunk {
	offset, _ := strconv.Atoi(r.Metadata[metaOffset])

	var meta map[string]string
	for k, v := range r.Metadata {
		if k == metaDocumentID || k == metaOffset {
			continue
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[k] = v
	}

	return core.ScoredChunk{
		Chunk: core.Chunk{
			ID:         r.ID,
			DocumentID: r.Metadata[metaDocumentID],
			Offset:     offset,
			Content:    r.Content,
			Metadata:   meta,
		},
		Similarity: r.Similarity,
	}
}
