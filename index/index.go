package index

import (
	"context"

	"go.uber.org/zap"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
)

// Embedder converts text to embedding vectors.
// The same embedder must be used to build and to query an index.
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size, or 0 if unknown
	// until the first call.
	Dimensions() int
}

// CorpusFunc supplies the chunks to index. It is only called when the
// collection has to be built.
type CorpusFunc func(ctx context.Context) ([]core.Chunk, error)

// Static returns a CorpusFunc serving a fixed chunk list.
func Static(chunks []core.Chunk) CorpusFunc {
	return func(context.Context) ([]core.Chunk, error) {
		return chunks, nil
	}
}

// Config locates the persisted collection.
type Config struct {
	// Directory is where the collection is persisted.
	Directory string

	// Collection is the collection name inside Directory.
	Collection string

	// TopK is the number of chunks Query returns. Default: 3.
	TopK int

	// Compress gzips persisted documents.
	Compress bool

	// Concurrency bounds parallel embedding calls during a build. Default: 4.
	Concurrency int
}

// DefaultConfig mirrors the layout the corpus was first indexed with.
var DefaultConfig = Config{
	Directory:   "./chroma_db",
	Collection:  "icl-docs",
	TopK:        3,
	Concurrency: 4,
}

func (c Config) withDefaults() Config {
	if c.Directory == "" {
		c.Directory = DefaultConfig.Directory
	}
	if c.Collection == "" {
		c.Collection = DefaultConfig.Collection
	}
	if c.TopK <= 0 {
		c.TopK = DefaultConfig.TopK
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConfig.Concurrency
	}
	return c
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(ix *Index) {
		ix.log = l.Named("index")
	}
}
