// Package pipeline answers user queries within a session: it records the
// question, runs the workflow over the session's history and records the
// answer.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/logger"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/session"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/workflow"
)

// Workflow runs one invocation over a history ending in the question.
type Workflow interface {
	Invoke(ctx context.Context, history []core.Message) (*workflow.State, error)
}

// Orchestrator is the entry point for answering queries.
type Orchestrator struct {
	sessions *session.Store
	workflow Workflow
	timeout  time.Duration
	log      *zap.Logger
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds each Answer call. Zero means no limit beyond ctx.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l.Named("pipeline")
	}
}

// New creates an orchestrator.
func New(sessions *session.Store, wf Workflow, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sessions: sessions,
		workflow: wf,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Answer appends query to the session's history, runs the workflow and
// appends the answer. On failure the query stays in the history, no answer
// is appended and the session remains usable. Turns on one session run one
// at a time, and a session cannot expire while a turn is running on it.
func (o *Orchestrator) Answer(ctx context.Context, query, sessionID string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", core.QueryError("answer", core.ErrEmptyQuery)
	}

	history, release := o.sessions.Acquire(sessionID)
	defer release()
	endTurn := history.BeginTurn()
	defer endTurn()

	history.Append(core.NewHumanMessage(query))

	log := o.log.With(zap.String("session_id", history.SessionID()))
	log.Info("Processing query", zap.String("query", logger.Truncate(query, 120)))

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	state, err := o.workflow.Invoke(ctx, history.Messages())
	if err != nil {
		log.Error("Query failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return "", core.QueryError("answer", err)
	}

	final, ok := state.Final()
	if !ok || final.Role != core.RoleAssistant {
		err := core.WorkflowError("answer", errors.New("workflow produced no answer"))
		log.Error("Query failed", zap.Error(err))
		return "", core.QueryError("answer", err)
	}

	history.Append(final)
	log.Info("Query processed successfully",
		zap.Int("messages", history.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return final.Content, nil
}

// History returns a copy of the session's messages, or nil if the session
// does not exist.
func (o *Orchestrator) History(sessionID string) []core.Message {
	h, ok := o.sessions.Lookup(sessionID)
	if !ok {
		return nil
	}
	return h.Messages()
}
