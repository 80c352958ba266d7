package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/index/embedder/mock"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/llm"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/pipeline"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/session"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/workflow"
)

var queryLine = regexp.MustCompile(`Original Query: (.*)`)

// echoGenerator answers "answer to <query>" using the query in the prompt.
func echoGenerator() llm.Generator {
	return llm.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		m := queryLine.FindStringSubmatch(prompt)
		if m == nil {
			return "", errors.New("prompt has no query")
		}
		return "answer to " + m[1], nil
	})
}

type staticRetriever struct{}

func (staticRetriever) Query(_ context.Context, text string) (core.RetrievalResult, error) {
	return core.RetrievalResult{Query: text}, nil
}

func newOrchestrator(gen llm.Generator, opts ...pipeline.Option) (*pipeline.Orchestrator, *session.Store) {
	store := session.NewStore()
	wf := workflow.New(staticRetriever{}, gen)
	return pipeline.New(store, wf, opts...), store
}

func roles(msgs []core.Message) []core.Role {
	out := make([]core.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func TestAnswer_AppendsQueryThenAnswer(t *testing.T) {
	orch, _ := newOrchestrator(echoGenerator())
	ctx := context.Background()

	queries := []string{"What is a plaint?", "What is bail?", "Who files an FIR?"}
	for _, q := range queries {
		answer, err := orch.Answer(ctx, q, "A")
		require.NoError(t, err)
		assert.Equal(t, "answer to "+q, answer)
	}

	history := orch.History("A")
	require.Len(t, history, 2*len(queries))
	for i, q := range queries {
		assert.Equal(t, core.RoleHuman, history[2*i].Role)
		assert.Equal(t, q, history[2*i].Content)
		assert.Equal(t, core.RoleAssistant, history[2*i+1].Role)
		assert.Equal(t, "answer to "+q, history[2*i+1].Content)
	}
}

func TestAnswer_SessionsAreIsolated(t *testing.T) {
	orch, _ := newOrchestrator(echoGenerator())
	ctx := context.Background()

	_, err := orch.Answer(ctx, "What is a plaint?", "A")
	require.NoError(t, err)
	before := orch.History("A")

	_, err = orch.Answer(ctx, "What is bail?", "B")
	require.NoError(t, err)
	_, err = orch.Answer(ctx, "What is an FIR?", "B")
	require.NoError(t, err)

	assert.Equal(t, before, orch.History("A"))
	assert.Len(t, orch.History("B"), 4)
}

func TestAnswer_FailureKeepsQueryAndRecovers(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	cause := errors.New("provider unavailable")

	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		if fail.Load() {
			return "", cause
		}
		return echoGenerator().Generate(ctx, prompt)
	})
	orch, _ := newOrchestrator(gen)
	ctx := context.Background()

	_, err := orch.Answer(ctx, "What is a plaint?", "A")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrQuery)
	assert.ErrorIs(t, err, core.ErrWorkflow)
	assert.ErrorIs(t, err, cause)

	history := orch.History("A")
	require.Len(t, history, 1)
	assert.Equal(t, core.RoleHuman, history[0].Role)

	fail.Store(false)
	answer, err := orch.Answer(ctx, "What is bail?", "A")
	require.NoError(t, err)
	assert.Equal(t, "answer to What is bail?", answer)
	assert.Equal(t, []core.Role{core.RoleHuman, core.RoleHuman, core.RoleAssistant}, roles(orch.History("A")))
}

func TestAnswer_EmptyQueryRejected(t *testing.T) {
	orch, store := newOrchestrator(echoGenerator())

	_, err := orch.Answer(context.Background(), "   ", "A")
	assert.ErrorIs(t, err, core.ErrQuery)
	assert.ErrorIs(t, err, core.ErrEmptyQuery)
	assert.Equal(t, 0, store.Len(), "rejected query must not create a session")
}

func TestAnswer_DefaultSession(t *testing.T) {
	orch, _ := newOrchestrator(echoGenerator())

	_, err := orch.Answer(context.Background(), "What is a plaint?", "")
	require.NoError(t, err)
	assert.Len(t, orch.History(session.DefaultSessionID), 2)
}

func TestAnswer_ConcurrentTurnsDoNotInterleave(t *testing.T) {
	orch, _ := newOrchestrator(echoGenerator())
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := orch.Answer(ctx, fmt.Sprintf("question %d", i), "shared")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history := orch.History("shared")
	require.Len(t, history, 2*n)
	for i := 0; i < n; i++ {
		q, a := history[2*i], history[2*i+1]
		assert.Equal(t, core.RoleHuman, q.Role)
		assert.Equal(t, core.RoleAssistant, a.Role)
		assert.Equal(t, "answer to "+q.Content, a.Content)
	}
}

func TestAnswer_Timeout(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	orch, _ := newOrchestrator(gen, pipeline.WithTimeout(20*time.Millisecond))

	_, err := orch.Answer(context.Background(), "What is a plaint?", "A")
	assert.ErrorIs(t, err, core.ErrQuery)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHistory_UnknownSession(t *testing.T) {
	orch, store := newOrchestrator(echoGenerator())

	assert.Nil(t, orch.History("nobody"))
	assert.Equal(t, 0, store.Len())
}

func TestAnswer_SlowTurnOutlivesSessionTTL(t *testing.T) {
	store := session.NewStore(session.WithTTL(30 * time.Millisecond))
	slow := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		time.Sleep(90 * time.Millisecond)
		return echoGenerator().Generate(ctx, prompt)
	})
	orch := pipeline.New(store, workflow.New(staticRetriever{}, slow))

	answer, err := orch.Answer(context.Background(), "What is a plaint?", "A")
	require.NoError(t, err)
	assert.Equal(t, "answer to What is a plaint?", answer)

	history := orch.History("A")
	require.Len(t, history, 2, "answer must land on the live session")
	assert.Equal(t, []core.Role{core.RoleHuman, core.RoleAssistant}, roles(history))
}

// legalGenerator stands in for the model: it answers from the retrieved
// context when that context mentions the question's subject, and otherwise
// says the question is not about law.
func legalGenerator() llm.Generator {
	return llm.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		m := queryLine.FindStringSubmatch(prompt)
		if m == nil {
			return "", errors.New("prompt has no query")
		}
		if strings.Contains(m[1], "plaint") && strings.Contains(prompt, "A plaint is the written statement") {
			return "A plaint is the document a person files in a civil court to start a case.", nil
		}
		return "This question is not law-related. It asks about the weather, which is not a legal matter.", nil
	})
}

func newIndexedOrchestrator(t *testing.T) *pipeline.Orchestrator {
	t.Helper()
	ctx := context.Background()

	corpus := []core.Chunk{
		{DocumentID: "civil-procedure", Content: "A plaint is the written statement of a plaintiff's claim, filed in a civil court to start a suit."},
		{DocumentID: "civil-procedure", Offset: 200, Content: "The defendant answers a plaint with a written statement within thirty days."},
		{DocumentID: "criminal-procedure", Content: "Bail is the conditional release of an accused person pending trial."},
		{DocumentID: "criminal-procedure", Offset: 200, Content: "An FIR is the first information report recorded by police for a cognizable offence."},
	}
	cfg := index.Config{
		Directory:  filepath.Join(t.TempDir(), "chroma_db"),
		Collection: "icl-docs",
		TopK:       3,
	}
	ix, err := index.BuildOrOpen(ctx, cfg, mock.New(), index.Static(corpus))
	require.NoError(t, err)

	wf := workflow.New(ix, legalGenerator())
	return pipeline.New(session.NewStore(), wf)
}

func TestAnswer_EndToEndLegalQuestion(t *testing.T) {
	orch := newIndexedOrchestrator(t)

	answer, err := orch.Answer(context.Background(), "What is a plaint?", "A")
	require.NoError(t, err)
	assert.Contains(t, answer, "civil court")

	history := orch.History("A")
	assert.Equal(t, []core.Role{core.RoleHuman, core.RoleAssistant}, roles(history))
	assert.Equal(t, "What is a plaint?", history[0].Content)
	assert.Equal(t, answer, history[1].Content)
}

func TestAnswer_EndToEndOffTopic(t *testing.T) {
	orch := newIndexedOrchestrator(t)

	answer, err := orch.Answer(context.Background(), "What is the weather today?", "A")
	require.NoError(t, err)
	assert.Contains(t, answer, "not law-related")
	assert.Equal(t, []core.Role{core.RoleHuman, core.RoleAssistant}, roles(orch.History("A")))
}
