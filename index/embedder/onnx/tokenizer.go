package onnx

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Special token IDs of the BERT uncased vocabulary.
const (
	clsTokenID = 101
	sepTokenID = 102
	unkTokenID = 100
)

// Tokenizer performs BERT-style WordPiece tokenization from a
// HuggingFace tokenizer.json vocabulary.
type Tokenizer struct {
	vocab map[string]int
}

// LoadTokenizer reads the vocabulary from tokenizer.json.
func LoadTokenizer(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokenizer: %w", err)
	}

	var file struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tokenizer: %w", err)
	}
	if len(file.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer %s has an empty vocabulary", path)
	}

	return NewTokenizer(file.Model.Vocab), nil
}

// NewTokenizer builds a tokenizer from an in-memory vocabulary.
func NewTokenizer(vocab map[string]int) *Tokenizer {
	return &Tokenizer{vocab: vocab}
}

// Encode returns [CLS] tokens... [SEP] padded to maxLen, with the matching
// attention mask. Tokens beyond maxLen-2 are dropped.
func (t *Tokenizer) Encode(text string, maxLen int) (ids, mask []int64) {
	tokens := t.Tokenize(text)
	if len(tokens) > maxLen-2 {
		tokens = tokens[:maxLen-2]
	}

	ids = make([]int64, maxLen)
	mask = make([]int64, maxLen)

	ids[0], mask[0] = clsTokenID, 1
	for i, tok := range tokens {
		ids[i+1], mask[i+1] = tok, 1
	}
	end := len(tokens) + 1
	ids[end], mask[end] = sepTokenID, 1

	return ids, mask
}

// Tokenize converts text to WordPiece token IDs without special tokens.
func (t *Tokenizer) Tokenize(text string) []int64 {
	var tokens []int64

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()[]")
		if word == "" {
			continue
		}

		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, int64(id))
			continue
		}

		for _, piece := range t.wordPieces(word) {
			if id, ok := t.vocab[piece]; ok {
				tokens = append(tokens, int64(id))
			} else {
				tokens = append(tokens, unkTokenID)
			}
		}
	}

	return tokens
}

// wordPieces splits word greedily into the longest known prefixes.
// Continuation pieces carry the "##" prefix.
func (t *Tokenizer) wordPieces(word string) []string {
	var pieces []string

	for start := 0; start < len(word); {
		end := len(word)
		matched := false

		for ; end > start; end-- {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if _, ok := t.vocab[piece]; ok {
				pieces = append(pieces, piece)
				matched = true
				break
			}
		}

		if !matched {
			pieces = append(pieces, "[UNK]")
			start++
			continue
		}
		start = end
	}

	return pieces
}
