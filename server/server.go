// Package server exposes the orchestrator over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/session"
)

// FailureNotice is shown to users when a query could not be answered.
// Details go to the log only.
const FailureNotice = "Sorry, I couldn't answer that right now. Please try again."

// Answerer answers queries and exposes session history.
type Answerer interface {
	Answer(ctx context.Context, query, sessionID string) (string, error)
	History(sessionID string) []core.Message
}

// Config configures the server.
type Config struct {
	Answerer Answerer
	Logger   *zap.Logger

	// CheckOrigin validates WebSocket origins. Nil accepts all origins.
	CheckOrigin func(r *http.Request) bool

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout time.Duration
}

// Server is the HTTP front-end.
type Server struct {
	answerer Answerer
	log      *zap.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
	shutdown time.Duration
}

// New creates a server.
func New(cfg Config) (*Server, error) {
	if cfg.Answerer == nil {
		return nil, fmt.Errorf("answerer is required")
	}

	log := zap.NewNop()
	if cfg.Logger != nil {
		log = cfg.Logger.Named("server")
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	shutdown := cfg.ShutdownTimeout
	if shutdown == 0 {
		shutdown = 10 * time.Second
	}

	s := &Server{
		answerer: cfg.Answerer,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		mux:      http.NewServeMux(),
		shutdown: shutdown,
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /ask", s.handleAsk)
	s.mux.HandleFunc("GET /sessions/{id}/history", s.handleHistory)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// AskResponse is the reply to POST /ask.
type AskResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HistoryResponse is the reply to GET /sessions/{id}/history.
type HistoryResponse struct {
	SessionID string         `json:"session_id"`
	Messages  []core.Message `json:"messages"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AskResponse{Error: "invalid request body"})
		return
	}
	sessionID := sessionOrDefault(req.SessionID)

	answer, err := s.answerer.Answer(r.Context(), req.Query, sessionID)
	if err != nil {
		status, msg := s.failure(err, sessionID)
		writeJSON(w, status, AskResponse{SessionID: sessionID, Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, AskResponse{SessionID: sessionID, Answer: answer})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	msgs := s.answerer.History(sessionID)
	if msgs == nil {
		msgs = []core.Message{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{SessionID: sessionID, Messages: msgs})
}

// failure maps an Answer error to a status and a user-facing message.
func (s *Server) failure(err error, sessionID string) (int, string) {
	if errors.Is(err, core.ErrEmptyQuery) {
		return http.StatusBadRequest, "query must not be empty"
	}
	s.log.Error("answer failed", zap.String("session_id", sessionID), zap.Error(err))
	return http.StatusBadGateway, FailureNotice
}

func sessionOrDefault(id string) string {
	if id == "" {
		return session.DefaultSessionID
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
