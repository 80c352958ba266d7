package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/config"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index/embedder/cache"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index/embedder/mock"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "version flag", args: []string{"--version"}},
		{name: "help flag", args: []string{"--help"}},
		{name: "ask without question", args: []string{"ask"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			rootCmd.SetArgs(tt.args)
			rootCmd.SetOut(&stdout)
			rootCmd.SetErr(&stderr)

			err := rootCmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Errorf("rootCmd.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewEmbedder(t *testing.T) {
	e, closer, err := newEmbedder(config.EmbeddingConfig{Provider: "mock"})
	require.NoError(t, err)
	defer closer()
	assert.IsType(t, &mock.Embedder{}, e)

	cached, closeCached, err := newEmbedder(config.EmbeddingConfig{Provider: "mock", CacheSize: 16})
	require.NoError(t, err)
	defer closeCached()
	assert.IsType(t, &cache.Embedder{}, cached)

	_, _, err = newEmbedder(config.EmbeddingConfig{Provider: "word2vec"})
	assert.Error(t, err)

	_, _, err = newEmbedder(config.EmbeddingConfig{Provider: "openai"})
	assert.Error(t, err, "openai requires an API key")

	_, _, err = newEmbedder(config.EmbeddingConfig{Provider: "onnx"})
	assert.Error(t, err, "onnx requires a model")
}

func TestRenderMessage(t *testing.T) {
	out := renderMessage(core.NewHumanMessage("  What is a plaint?  "))
	assert.Contains(t, out, "human:")
	assert.True(t, strings.HasSuffix(out, " What is a plaint?"))

	var buf bytes.Buffer
	printHistory(&buf, "A", nil)
	assert.Contains(t, buf.String(), "No messages yet.")
}

// setupEnv points configuration at a prebuilt mock index and a fake
// Messages API that answers with a fixed text.
func setupEnv(t *testing.T, answer string) string {
	t.Helper()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",`+
			`"content":[{"type":"text","text":%q}],"stop_reason":"end_turn","stop_sequence":null,`+
			`"usage":{"input_tokens":1,"output_tokens":1}}`, answer)
	}))
	t.Cleanup(api.Close)

	dir := filepath.Join(t.TempDir(), "chroma_db")
	t.Setenv("EMBEDDING_PROVIDER", "mock")
	t.Setenv("EMBEDDING_CACHE_SIZE", "16")
	t.Setenv("INDEX_DIR", dir)
	t.Setenv("CORPUS_DIR", filepath.Join(t.TempDir(), "empty"))
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("ANTHROPIC_BASE_URL", api.URL+"/")
	t.Setenv("LLM_MAX_RETRIES", "0")
	return dir
}

func prebuildIndex(t *testing.T, dir string) {
	t.Helper()
	_, err := index.BuildOrOpen(context.Background(), index.Config{
		Directory:  dir,
		Collection: "icl-docs",
	}, mock.New(), index.Static([]core.Chunk{
		{DocumentID: "civil-procedure", Content: "A plaint is the written statement that starts a civil suit."},
		{DocumentID: "criminal-procedure", Content: "Bail is release of an accused pending trial."},
	}))
	require.NoError(t, err)
}

func TestAskCommand(t *testing.T) {
	dir := setupEnv(t, "A plaint is the document that starts a civil case.")
	prebuildIndex(t, dir)

	var stdout bytes.Buffer
	rootCmd.SetArgs([]string{"ask", "What", "is", "a", "plaint?"})
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "A plaint is the document that starts a civil case.\n", stdout.String())
}

func TestChatCommand(t *testing.T) {
	dir := setupEnv(t, "Bail is temporary release.")
	prebuildIndex(t, dir)

	var stdout bytes.Buffer
	rootCmd.SetArgs([]string{"chat", "--session", "chat-test"})
	rootCmd.SetIn(strings.NewReader("What is bail?\n\n/history\n/exit\n"))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { chatSession = "default_session" })

	require.NoError(t, rootCmd.Execute())

	out := stdout.String()
	assert.Contains(t, out, "Bail is temporary release.")
	assert.Contains(t, out, "Conversation History (chat-test)")
	assert.Contains(t, out, "What is bail?")
}

func TestIndexStatus(t *testing.T) {
	dir := setupEnv(t, "unused")
	t.Cleanup(func() { indexStatus = false })

	run := func() string {
		var stdout bytes.Buffer
		rootCmd.SetArgs([]string{"index", "--status"})
		rootCmd.SetOut(&stdout)
		rootCmd.SetErr(&bytes.Buffer{})
		require.NoError(t, rootCmd.Execute())
		return stdout.String()
	}

	assert.Contains(t, run(), "not built")
	prebuildIndex(t, dir)
	assert.Contains(t, run(), "exists")
}
