// Package workflow runs the two-step answer graph: retrieve context for the
// latest question, then summarize it into a plain-language answer.
package workflow

import (
	"context"
	"fmt"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/llm"
)

// Workflow is a compiled graph of nodes. It holds no per-invocation state
// and is safe for concurrent use.
type Workflow struct {
	nodes  map[NodeName]Node
	edges  map[NodeName]NodeName
	prompt *template.Template
	log    *zap.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) {
		w.log = l.Named("workflow")
	}
}

// WithPrompt replaces the summarization prompt. See ParsePrompt.
func WithPrompt(tmpl *template.Template) Option {
	return func(w *Workflow) {
		w.prompt = tmpl
	}
}

// New compiles the retrieve -> summarize graph.
func New(retriever Retriever, generator llm.Generator, opts ...Option) *Workflow {
	w := &Workflow{
		prompt: defaultPrompt,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	retrieve := NewRetrieve(retriever)
	summarize := NewSummarize(generator, w.prompt)

	w.nodes = map[NodeName]Node{
		retrieve.Name():  retrieve,
		summarize.Name(): summarize,
	}
	w.edges = map[NodeName]NodeName{
		Start:         RetrieveNode,
		RetrieveNode:  SummarizeNode,
		SummarizeNode: End,
	}
	return w
}

// Invoke runs the graph over history, whose last message is the question.
// history is not modified. On failure the error names the failing node and
// the partial state is returned for inspection.
func (w *Workflow) Invoke(ctx context.Context, history []core.Message) (*State, error) {
	state := newState(history)

	current := w.edges[Start]
	for steps := 0; current != End; steps++ {
		if steps > len(w.nodes) {
			return state, core.WorkflowError(string(current), fmt.Errorf("graph did not reach %s", End))
		}

		node, ok := w.nodes[current]
		if !ok {
			return state, core.WorkflowError(string(current), fmt.Errorf("unknown node"))
		}

		start := time.Now()
		if err := node.Run(ctx, state); err != nil {
			w.log.Warn("node failed", zap.String("node", string(current)), zap.Error(err))
			return state, core.WorkflowError(string(current), err)
		}
		state.Visited = append(state.Visited, current)
		w.log.Debug("node completed",
			zap.String("node", string(current)),
			zap.Duration("elapsed", time.Since(start)))

		current = w.edges[current]
	}
	return state, nil
}
