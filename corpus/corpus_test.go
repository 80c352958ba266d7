package corpus_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/corpus"
)

// wordEncoder treats each whitespace-separated word as one token.
type wordEncoder struct {
	words []string
	ids   map[string]int
}

func newWordEncoder() *wordEncoder {
	return &wordEncoder{ids: make(map[string]int)}
}

func (e *wordEncoder) Encode(text string, _, _ []string) []int {
	var out []int
	for _, w := range strings.Fields(text) {
		id, ok := e.ids[w]
		if !ok {
			id = len(e.words)
			e.words = append(e.words, w)
			e.ids[w] = id
		}
		out = append(out, id)
	}
	return out
}

func (e *wordEncoder) Decode(tokens []int) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = e.words[t]
	}
	return strings.Join(parts, " ")
}

// byteEncoder emits one token per byte, like a byte-level BPE that has
// no merges for the input script.
type byteEncoder struct{}

func (byteEncoder) Encode(text string, _, _ []string) []int {
	out := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = int(text[i])
	}
	return out
}

func (byteEncoder) Decode(tokens []int) string {
	b := make([]byte, len(tokens))
	for i, t := range tokens {
		b[i] = byte(t)
	}
	return string(b)
}

func numbered(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestSplit_OverlappingWindows(t *testing.T) {
	s, err := corpus.NewSplitterWithEncoder(newWordEncoder(), 4, 2)
	require.NoError(t, err)

	chunks := s.Split("doc.txt", numbered(8))

	require.Len(t, chunks, 3)
	assert.Equal(t, "w0 w1 w2 w3", chunks[0].Content)
	assert.Equal(t, "w2 w3 w4 w5", chunks[1].Content)
	assert.Equal(t, "w4 w5 w6 w7", chunks[2].Content)

	for i, c := range chunks {
		assert.Equal(t, "doc.txt", c.DocumentID)
		assert.Equal(t, fmt.Sprintf("doc.txt#%d", i), c.ID)
		assert.Equal(t, 2*i, c.Offset)
	}
}

func TestSplit_ShortText(t *testing.T) {
	s, err := corpus.NewSplitterWithEncoder(newWordEncoder(), 200, 50)
	require.NoError(t, err)

	chunks := s.Split("doc", "A plaint starts a suit.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A plaint starts a suit.", chunks[0].Content)

	assert.Empty(t, s.Split("doc", "   "))
}

func TestSplit_TailWindow(t *testing.T) {
	s, err := corpus.NewSplitterWithEncoder(newWordEncoder(), 4, 1)
	require.NoError(t, err)

	chunks := s.Split("doc", numbered(6))
	require.Len(t, chunks, 2)
	assert.Equal(t, "w3 w4 w5", chunks[1].Content)
	assert.Equal(t, 3, chunks[1].Offset)
}

func TestSplit_MultibyteText(t *testing.T) {
	text := strings.Repeat("वादपत्र सिविल मुकदमा शुरू करता है। ", 20)

	for _, tt := range []struct{ size, overlap int }{{200, 50}, {7, 2}, {2, 0}} {
		t.Run(fmt.Sprintf("size %d overlap %d", tt.size, tt.overlap), func(t *testing.T) {
			s, err := corpus.NewSplitterWithEncoder(byteEncoder{}, tt.size, tt.overlap)
			require.NoError(t, err)

			chunks := s.Split("hi", text)
			require.Greater(t, len(chunks), 1)

			var covered strings.Builder
			for _, c := range chunks {
				assert.True(t, utf8.ValidString(c.Content), "chunk %s: %q", c.ID, c.Content)
				assert.True(t, utf8.RuneStart(text[c.Offset]), "chunk %s starts mid-character", c.ID)
				assert.Contains(t, text, c.Content)
				covered.WriteString(c.Content)
			}
			for _, r := range strings.ReplaceAll(text, " ", "") {
				assert.Contains(t, covered.String(), string(r))
			}
		})
	}
}

func TestNewSplitter_InvalidSizes(t *testing.T) {
	_, err := corpus.NewSplitterWithEncoder(newWordEncoder(), 0, 0)
	assert.Error(t, err)

	_, err = corpus.NewSplitterWithEncoder(newWordEncoder(), 10, 10)
	assert.Error(t, err)

	_, err = corpus.NewSplitterWithEncoder(newWordEncoder(), 10, -1)
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "litigation.txt", "A plaint starts a civil suit.")
	writeFile(t, dir, "criminal/bail.md", "# Bail\nRelease pending trial.")
	writeFile(t, dir, "scan.pdf", "%PDF-1.4")

	docs, err := corpus.LoadDir(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "criminal/bail.md", docs[0].ID)
	assert.Equal(t, "litigation.txt", docs[1].ID)
	assert.Equal(t, "A plaint starts a civil suit.", docs[1].Text)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := corpus.LoadDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", numbered(6))
	writeFile(t, dir, "b.txt", "short")

	s, err := corpus.NewSplitterWithEncoder(newWordEncoder(), 4, 2)
	require.NoError(t, err)

	chunks, err := corpus.Loader(dir, s)(context.Background())
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Equal(t, "a.txt", chunks[0].DocumentID)
	assert.Equal(t, "a.txt", chunks[1].DocumentID)
	assert.Equal(t, "b.txt#0", chunks[2].ID)
}
