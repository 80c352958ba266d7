// Package corpus loads legal documents from disk and splits them into
// token-bounded chunks for indexing.
package corpus

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
)

// Default chunking, in tokens.
const (
	DefaultChunkSize    = 200
	DefaultChunkOverlap = 50
)

// Encoder converts between text and tokens. *tiktoken.Tiktoken satisfies it.
type Encoder interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// Splitter cuts text into overlapping windows of tokens.
type Splitter struct {
	enc     Encoder
	size    int
	overlap int
}

// NewSplitter creates a splitter using the cl100k_base encoding.
func NewSplitter(size, overlap int) (*Splitter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return NewSplitterWithEncoder(enc, size, overlap)
}

// NewSplitterWithEncoder creates a splitter with a custom encoder.
func NewSplitterWithEncoder(enc Encoder, size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Splitter{enc: enc, size: size, overlap: overlap}, nil
}

// Split returns the chunks of text. Offsets are token positions within
// the document. Blank windows are dropped.
//
// Byte-level encodings can split one character across several tokens, so
// windows only begin and end on tokens that start a character. A window
// exceeds the chunk size only when a single character does.
func (s *Splitter) Split(documentID, text string) []core.Chunk {
	tokens := s.enc.Encode(text, nil, nil)
	n := len(tokens)
	if n == 0 {
		return nil
	}
	starts := s.runeStarts(tokens)

	var chunks []core.Chunk
	for from := 0; from < n; {
		to := min(from+s.size, n)
		for to > from && !starts[to] {
			to--
		}
		if to == from {
			for to = min(from+s.size, n); !starts[to]; to++ {
			}
		}

		content := strings.TrimSpace(s.enc.Decode(tokens[from:to]))
		if content != "" {
			chunks = append(chunks, core.Chunk{
				ID:         fmt.Sprintf("%s#%d", documentID, len(chunks)),
				DocumentID: documentID,
				Offset:     from,
				Content:    content,
			})
		}

		if to == n {
			break
		}
		next := max(to-s.overlap, from+1)
		for next > from && !starts[next] {
			next--
		}
		if next == from {
			next = to
		}
		from = next
	}
	return chunks
}

// runeStarts reports, for every token position plus the end position,
// whether a window may begin or end there without cutting a character.
func (s *Splitter) runeStarts(tokens []int) []bool {
	starts := make([]bool, len(tokens)+1)
	starts[0] = true
	starts[len(tokens)] = true
	for i := 1; i < len(tokens); i++ {
		piece := s.enc.Decode(tokens[i : i+1])
		starts[i] = piece == "" || utf8.RuneStart(piece[0])
	}
	return starts
}

// CountTokens returns the number of tokens in text.
func (s *Splitter) CountTokens(text string) int {
	return len(s.enc.Encode(text, nil, nil))
}
