package provider_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index/embedder/provider"
)

func TestOllama_Embed(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel, _ = req["model"].(string)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embedding":[0.6,0.8,0.0],"embeddings":[[0.6,0.8,0.0]]}`))
	}))
	defer srv.Close()

	e := provider.NewOllama("nomic-embed-text", srv.URL+"/api", provider.Config{RPS: 100, Timeout: time.Second})
	assert.Equal(t, 0, e.Dimensions())

	vec, err := e.Embed(context.Background(), "plaint")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
	assert.Equal(t, 3, e.Dimensions())
	assert.Equal(t, "nomic-embed-text", gotModel)
}

func TestOllama_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	e := provider.NewOllama("nomic-embed-text", srv.URL+"/api", provider.Config{})
	_, err := e.Embed(context.Background(), "plaint")
	assert.ErrorContains(t, err, "ollama")
}

func TestEmbed_WrapsFuncError(t *testing.T) {
	cause := errors.New("quota exceeded")
	e := provider.New("fake", func(ctx context.Context, text string) ([]float32, error) {
		return nil, cause
	}, provider.Config{})

	_, err := e.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, cause)
}

func TestEmbed_Timeout(t *testing.T) {
	e := provider.New("slow", func(ctx context.Context, text string) ([]float32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, provider.Config{Timeout: 10 * time.Millisecond})

	_, err := e.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := provider.NewOpenAI("", "", provider.Config{})
	assert.Error(t, err)
}
