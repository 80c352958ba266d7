// Package llm wraps the language model that writes answers.
package llm

import (
	"context"
	"errors"
)

// Generator turns a fully rendered prompt into answer text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrRefused is returned when the provider declines to answer.
	ErrRefused = errors.New("model refused to answer")

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("model returned no text")
)

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
