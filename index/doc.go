// Package index provides the persistent document index used for retrieval.
//
// The index embeds every corpus chunk once and stores the vectors in a
// chromem-go persistent collection. Later processes reopen the same
// collection instead of re-embedding the corpus.
//
// Architecture:
//   - Index: build-or-open plus top-k similarity lookup
//   - Embedder: text-to-vector conversion (remote provider, local ONNX
//     model, or the deterministic mock used in tests)
//   - CorpusFunc: lazy corpus supplier, only called when building
//
// Embedder implementations live under index/embedder:
//   - mock: hashed bag-of-words, offline and deterministic
//   - provider: Ollama / OpenAI through chromem-go embedding funcs
//   - cache: ristretto-backed cache in front of any embedder
//   - onnx: all-MiniLM-L6-v2 through ONNX Runtime (build tag "onnx")
package index
