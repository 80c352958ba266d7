//go:build !onnx

package cli

import (
	"errors"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/config"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index"
)

func newONNXEmbedder(config.EmbeddingConfig) (index.Embedder, func(), error) {
	return nil, nil, errors.New("onnx embedder not available: rebuild with -tags onnx")
}
