package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
)

var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a session has expired.
	ErrSessionExpired = errors.New("session expired")
)

// State is what the interactive frontend remembers between requests: the last
// selections and the last generated script.
type State struct {
	Framework    scriptgen.Framework `json:"framework,omitempty"`
	BaseURL      string              `json:"base_url,omitempty"`
	GenerationID uuid.UUID           `json:"generation_id,omitempty"`
	Script       string              `json:"script,omitempty"`
	Files        []string            `json:"files,omitempty"`
	Warning      string              `json:"warning,omitempty"`
	UpdatedAt    time.Time           `json:"updated_at,omitempty"`
}

// IsEmpty reports whether nothing has been generated in this session yet.
func (s State) IsEmpty() bool {
	return s.GenerationID == uuid.Nil && s.Script == ""
}

// Session represents one browser session of the interactive frontend.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
	State     State
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *Session) clone() *Session {
	c := *s
	if s.State.Files != nil {
		c.State.Files = append([]string(nil), s.State.Files...)
	}
	return &c
}

// Store is an in-memory session store. It hands out copies, so callers
// never share a Session with other goroutines.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates a new in-memory session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Set stores a session in the store.
func (s *Store) Set(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session.clone()
}

// Get retrieves a session from the store.
func (s *Store) Get(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return session.clone(), nil
}

// UpdateState applies fn to the stored state of a live session.
func (s *Store) UpdateState(sessionID string, fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}
	if session.IsExpired() {
		return ErrSessionExpired
	}

	fn(&session.State)
	return nil
}

// Delete removes a session from the store.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup removes expired sessions from the store.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}

	return removed
}
