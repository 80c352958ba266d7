package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Frame types.
const (
	FrameAsk     = "ask"
	FrameHistory = "history"
	FrameAnswer  = "answer"
	FrameError   = "error"
)

// Frame is a WebSocket message in either direction.
type Frame struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Query     string         `json:"query,omitempty"`
	Answer    string         `json:"answer,omitempty"`
	Messages  []core.Message `json:"messages,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// conn serializes writes from the read loop and the pinger.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(f)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &conn{ws: ws}
	defer ws.Close()

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.ping(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	s.log.Debug("websocket connected", zap.String("remote", r.RemoteAddr))
	for {
		var in Frame
		if err := ws.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		out := s.handleFrame(r, in)
		if err := c.write(out); err != nil {
			s.log.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) handleFrame(r *http.Request, in Frame) Frame {
	sessionID := sessionOrDefault(in.SessionID)

	switch in.Type {
	case FrameAsk:
		answer, err := s.answerer.Answer(r.Context(), in.Query, sessionID)
		if err != nil {
			_, msg := s.failure(err, sessionID)
			return Frame{Type: FrameError, SessionID: sessionID, Error: msg}
		}
		return Frame{Type: FrameAnswer, SessionID: sessionID, Answer: answer}

	case FrameHistory:
		return Frame{Type: FrameHistory, SessionID: sessionID, Messages: s.answerer.History(sessionID)}

	default:
		return Frame{Type: FrameError, SessionID: sessionID, Error: "unknown frame type " + in.Type}
	}
}
