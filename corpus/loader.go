package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index"
)

// Extensions lists the file types LoadDir reads.
var Extensions = []string{".txt", ".md"}

// Document is one source file.
type Document struct {
	ID   string // path relative to the corpus directory
	Text string
}

// LoadDir reads every supported file under dir, in path order.
func LoadDir(ctx context.Context, dir string) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !supported(path) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, Document{ID: filepath.ToSlash(rel), Text: string(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load corpus from %s: %w", dir, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Loader returns a corpus supplier that reads dir and splits each
// document. It runs only when the index has to be built.
func Loader(dir string, splitter *Splitter) index.CorpusFunc {
	return func(ctx context.Context) ([]core.Chunk, error) {
		docs, err := LoadDir(ctx, dir)
		if err != nil {
			return nil, err
		}

		var chunks []core.Chunk
		for _, doc := range docs {
			chunks = append(chunks, splitter.Split(doc.ID, doc.Text)...)
		}
		return chunks, nil
	}
}

func supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
