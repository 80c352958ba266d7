// Package session keeps the conversation history of every session.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
)

// DefaultSessionID is used when a caller supplies no session id.
const DefaultSessionID = "default_session"

// Store maps session ids to histories. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	cache  *cache.Cache
	ttl    time.Duration
	active map[string]*lease
	log    *zap.Logger
}

// lease pins a history while turns are running on it.
type lease struct {
	history *core.History
	n       int
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires sessions that have not been accessed for ttl.
// Zero keeps sessions for the lifetime of the process.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.log = l.Named("session")
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		active: make(map[string]*lease),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.ttl > 0 {
		s.cache = cache.New(s.ttl, s.ttl)
	} else {
		s.cache = cache.New(cache.NoExpiration, 0)
	}
	s.cache.OnEvicted(func(id string, _ interface{}) {
		s.log.Debug("session expired", zap.String("session_id", id))
	})
	return s
}

// Get returns the history for sessionID, creating an empty one on first
// use. Concurrent calls with the same id always receive the same History.
func (s *Store) Get(sessionID string) *core.History {
	sessionID = normalize(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(sessionID)
}

// Acquire returns the history for sessionID and pins it until release is
// called. A pinned session does not expire, and its idle time restarts
// on release. Release is idempotent.
func (s *Store) Acquire(sessionID string) (h *core.History, release func()) {
	sessionID = normalize(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	h = s.getLocked(sessionID)
	l, ok := s.active[sessionID]
	if !ok {
		l = &lease{history: h}
		s.active[sessionID] = l
	}
	l.n++

	var once sync.Once
	return h, func() {
		once.Do(func() { s.release(sessionID, l) })
	}
}

func (s *Store) release(sessionID string, l *lease) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.n--
	if l.n == 0 {
		delete(s.active, sessionID)
	}
	if s.ttl > 0 {
		s.cache.Set(sessionID, l.history, cache.DefaultExpiration)
	}
}

func (s *Store) getLocked(sessionID string) *core.History {
	if x, found := s.cache.Get(sessionID); found {
		h := x.(*core.History)
		if s.ttl > 0 {
			s.cache.Set(sessionID, h, cache.DefaultExpiration)
		}
		return h
	}

	if l, ok := s.active[sessionID]; ok {
		s.cache.Set(sessionID, l.history, cache.DefaultExpiration)
		return l.history
	}

	h := core.NewHistory(sessionID)
	s.cache.Set(sessionID, h, cache.DefaultExpiration)
	s.log.Debug("session created", zap.String("session_id", sessionID))
	return h
}

// Lookup returns the history for sessionID without creating it.
func (s *Store) Lookup(sessionID string) (*core.History, bool) {
	sessionID = normalize(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if x, found := s.cache.Get(sessionID); found {
		return x.(*core.History), true
	}
	if l, ok := s.active[sessionID]; ok {
		return l.history, true
	}
	return nil, false
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return len(s.IDs())
}

// IDs returns the live session ids in sorted order.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.cache.Items()
	ids := make([]string, 0, len(items)+len(s.active))
	for id := range items {
		ids = append(ids, id)
	}
	for id := range s.active {
		if _, ok := items[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func normalize(sessionID string) string {
	if sessionID == "" {
		return DefaultSessionID
	}
	return sessionID
}
