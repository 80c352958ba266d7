package workflow

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/llm"
)

// NodeName identifies a workflow state.
type NodeName string

const (
	// Start is the entry point; it has no node of its own.
	Start NodeName = "__start__"

	// RetrieveNode looks up context for the question.
	RetrieveNode NodeName = "retrieve"

	// SummarizeNode writes the answer.
	SummarizeNode NodeName = "summarize"

	// End terminates the run.
	End NodeName = "__end__"
)

// Node is one step of the workflow. Run reads and extends the state.
type Node interface {
	Name() NodeName
	Run(ctx context.Context, state *State) error
}

// Retriever returns the chunks most relevant to a query.
type Retriever interface {
	Query(ctx context.Context, text string) (core.RetrievalResult, error)
}

// Retrieve looks up context for the latest message and records it as a
// system message.
type Retrieve struct {
	retriever Retriever
}

// NewRetrieve creates the retrieve node.
func NewRetrieve(r Retriever) *Retrieve {
	return &Retrieve{retriever: r}
}

// Name returns RetrieveNode.
func (n *Retrieve) Name() NodeName { return RetrieveNode }

// Run queries the retriever with the last message and appends the
// formatted result as a retrieved-context system message.
func (n *Retrieve) Run(ctx context.Context, state *State) error {
	last, ok := state.Final()
	if !ok || strings.TrimSpace(last.Content) == "" {
		return core.ErrEmptyQuery
	}

	result, err := n.retriever.Query(ctx, last.Content)
	if err != nil {
		return err
	}

	state.Query = last.Content
	state.Retrieval = result
	state.append(core.NewMessage(core.RoleSystem, result.Format(), map[string]string{
		core.MetaKind: core.KindRetrievedContext,
		core.MetaNode: string(RetrieveNode),
	}))
	return nil
}

// Summarize asks the model for a plain-language answer grounded in the
// context retrieved during this invocation.
type Summarize struct {
	generator llm.Generator
	prompt    *template.Template
}

// NewSummarize creates the summarize node. A nil prompt uses DefaultPrompt.
func NewSummarize(g llm.Generator, prompt *template.Template) *Summarize {
	if prompt == nil {
		prompt = defaultPrompt
	}
	return &Summarize{generator: g, prompt: prompt}
}

// Name returns SummarizeNode.
func (n *Summarize) Name() NodeName { return SummarizeNode }

// Run renders the prompt from this invocation's retrieval and the latest
// human message, calls the generator once and appends the trimmed answer.
func (n *Summarize) Run(ctx context.Context, state *State) error {
	query, ok := state.lastHuman()
	if !ok {
		query = state.Query
	}

	prompt, err := render(n.prompt, PromptData{
		Context: state.Retrieval.Format(),
		Query:   query,
	})
	if err != nil {
		return err
	}

	answer, err := n.generator.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generate answer: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return llm.ErrEmptyResponse
	}

	state.append(core.NewMessage(core.RoleAssistant, answer, map[string]string{
		core.MetaNode: string(SummarizeNode),
	}))
	return nil
}
