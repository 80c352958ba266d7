package core

import (
	"fmt"
	"strings"
)

// Chunk is a bounded span of corpus text, the unit of retrieval.
// The embedding for a chunk is owned by the index, not the chunk.
type Chunk struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Offset     int               `json:"offset"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ScoredChunk is a chunk returned from a similarity lookup.
type ScoredChunk struct {
	Chunk
	Similarity float32 `json:"similarity"`
}

// RetrievalResult holds the top-k chunks for one query, most similar first.
type RetrievalResult struct {
	Query  string        `json:"query"`
	Chunks []ScoredChunk `json:"chunks"`
}

// NoDocumentsNotice is the context rendered when nothing was retrieved.
const NoDocumentsNotice = "No relevant documents were retrieved."

// Empty reports whether nothing was retrieved.
func (r RetrievalResult) Empty() bool {
	return len(r.Chunks) == 0
}

// Format renders the result as a labelled block for prompt injection.
func (r RetrievalResult) Format() string {
	if r.Empty() {
		return "=== RETRIEVED DOCUMENTS ===\n" + NoDocumentsNotice
	}

	parts := []string{"=== RETRIEVED DOCUMENTS ==="}
	for i, c := range r.Chunks {
		source := c.DocumentID
		if source == "" {
			source = "unknown"
		}
		parts = append(parts, fmt.Sprintf("%d. [source: %s, offset: %d, similarity: %.3f]\n%s",
			i+1, source, c.Offset, c.Similarity, strings.TrimSpace(c.Content)))
	}
	return strings.Join(parts, "\n\n")
}
