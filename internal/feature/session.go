package feature

import (
	"slices"
	"sync"
	"time"

	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/types"

	"github.com/google/uuid"
)

// SessionKind distinguishes the two conversational features.
type SessionKind string

const (
	SessionChat      SessionKind = "chat"
	SessionInterview SessionKind = "interview"
)

// Session is one conversational exchange: a career-chat thread or a mock
// interview. History is append-only and owned exclusively by this session.
type Session struct {
	ID   string
	Kind SessionKind

	// Interview sessions keep the opening they interview for; unused for chat.
	JobTitle       string
	JobDescription string

	mu         sync.Mutex
	history    []types.ChatMessage
	inFlight   bool
	createdAt  time.Time
	lastActive time.Time
}

// Append records one conversation turn.
func (s *Session) Append(role types.ChatRole, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, types.ChatMessage{
		Role:    role,
		Content: content,
		SentAt:  time.Now(),
	})
}

// History returns a copy of the full transcript.
func (s *Session) History() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// Recent returns a copy of the last maxTurns messages. The full transcript is
// never trimmed; the cap only bounds what gets re-sent in prompts.
func (s *Session) Recent(maxTurns int) []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if maxTurns <= 0 || len(s.history) <= maxTurns {
		return slices.Clone(s.history)
	}
	return slices.Clone(s.history[len(s.history)-maxTurns:])
}

// Len returns the number of recorded turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// beginRequest marks the session busy. Returns false when a submit for this
// session is already in flight.
func (s *Session) beginRequest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

// endRequest clears the busy flag.
func (s *Session) endRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive.Before(cutoff)
}

// SessionStore keeps conversational sessions in memory. Sessions expire after
// sitting idle for the configured TTL; a background routine evicts them.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	done     chan struct{} // Channel to signal cleanup goroutine to stop
	logger   *apperrors.Logger
}

// NewSessionStore creates a store with the given idle TTL and starts its
// eviction routine.
func NewSessionStore(ttl time.Duration, logger *apperrors.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	store := &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
		logger:   logger,
	}

	go store.cleanupRoutine(ttl / 2)

	return store
}

// Create registers a new session of the given kind and returns it.
func (s *SessionStore) Create(kind SessionKind) *Session {
	now := time.Now()
	session := &Session{
		ID:         uuid.New().String(),
		Kind:       kind,
		createdAt:  now,
		lastActive: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get returns the live session with the given id and kind. Expired sessions
// and kind mismatches are reported as not found.
func (s *SessionStore) Get(id string, kind SessionKind) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if ok && session.idleSince(time.Now().Add(-s.ttl)) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		ok = false
	}

	if !ok || session.Kind != kind {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeSessionNotFound,
			"Session not found or expired", nil)
	}

	session.touch()
	return session, nil
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// cleanupRoutine periodically evicts idle sessions
func (s *SessionStore) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.done:
			return
		}
	}
}

// evictExpired removes sessions idle for longer than the TTL
func (s *SessionStore) evictExpired() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	var evicted int
	for id, session := range s.sessions {
		if session.idleSince(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	if evicted > 0 && s.logger != nil {
		s.logger.Debug("Session cleanup completed",
			"evicted", evicted,
			"remaining", remaining)
	}
}

// Close stops the eviction goroutine. Should be called when shutting down.
func (s *SessionStore) Close() {
	close(s.done)
}
