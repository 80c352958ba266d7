package core

import (
	"errors"
	"fmt"
)

// Failure kinds. Match them with errors.Is; every layer keeps the kind
// of the error it received and adds its own on top.
var (
	// ErrIndexBuild means the document index could not be built or opened.
	ErrIndexBuild = errors.New("index build failure")

	// ErrEmbedding means the embedding provider failed.
	ErrEmbedding = errors.New("embedding failure")

	// ErrWorkflow means a workflow node failed and the invocation aborted.
	ErrWorkflow = errors.New("workflow failure")

	// ErrQuery is the caller-facing failure of a single answer request.
	ErrQuery = errors.New("query failure")
)

// Input errors.
var (
	// ErrEmptyCorpus indicates a build was attempted with no chunks.
	ErrEmptyCorpus = errors.New("corpus is empty")

	// ErrEmptyQuery indicates a blank query string.
	ErrEmptyQuery = errors.New("query is empty")
)

// Error tags a cause with a failure kind and the operation that failed.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Is matches the failure kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IndexBuildError wraps err as an index build failure.
func IndexBuildError(op string, err error) error {
	return &Error{Kind: ErrIndexBuild, Op: op, Err: err}
}

// EmbeddingError wraps err as an embedding failure.
func EmbeddingError(op string, err error) error {
	return &Error{Kind: ErrEmbedding, Op: op, Err: err}
}

// WorkflowError wraps err as a workflow failure.
func WorkflowError(op string, err error) error {
	return &Error{Kind: ErrWorkflow, Op: op, Err: err}
}

// QueryError wraps err as a query failure.
func QueryError(op string, err error) error {
	return &Error{Kind: ErrQuery, Op: op, Err: err}
}
