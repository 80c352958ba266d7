//go:build onnx

package cli

import (
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/config"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index/embedder/onnx"
)

func newONNXEmbedder(cfg config.EmbeddingConfig) (index.Embedder, func(), error) {
	e, err := onnx.New(onnx.Config{
		ModelPath:     cfg.ONNXModelPath,
		TokenizerPath: cfg.ONNXTokenizerPath,
		LibraryPath:   cfg.ONNXLibraryPath,
	})
	if err != nil {
		return nil, nil, err
	}
	return e, func() { _ = e.Close() }, nil
}
