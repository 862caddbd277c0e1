package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/design-testgen/logger"
	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
)

// Manager manages interactive sessions with automatic cleanup.
type Manager struct {
	store    *Store
	duration time.Duration
	logger   logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewManager creates a new session manager with the given duration.
func NewManager(duration time.Duration, log logger.Logger) *Manager {
	return &Manager{
		store:    NewStore(),
		duration: duration,
		logger:   log,
		stopCh:   make(chan struct{}),
	}
}

// Create starts a new session with empty state.
func (m *Manager) Create(ctx context.Context) *Session {
	now := time.Now()
	session := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.duration),
	}

	m.store.Set(session)

	m.logger.Info(ctx, "session created", map[string]interface{}{
		"session_id": session.ID,
	})

	return session
}

// Get retrieves a session by ID.
func (m *Manager) Get(sessionID string) (*Session, error) {
	return m.store.Get(sessionID)
}

// SaveResult replaces the session state with the outcome of a generation.
func (m *Manager) SaveResult(ctx context.Context, sessionID string, state State) error {
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}

	err := m.store.UpdateState(sessionID, func(s *State) {
		*s = state
	})
	if err != nil {
		m.logger.Warn(ctx, "failed to save session state", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}

	m.logger.Debug(ctx, "session state saved", map[string]interface{}{
		"session_id":    sessionID,
		"generation_id": state.GenerationID.String(),
	})
	return nil
}

// SetSelections remembers the framework and base URL picked in the frontend
// without touching the last result.
func (m *Manager) SetSelections(ctx context.Context, sessionID string, framework scriptgen.Framework, baseURL string) error {
	return m.store.UpdateState(sessionID, func(s *State) {
		s.Framework = framework
		s.BaseURL = baseURL
		s.UpdatedAt = time.Now()
	})
}

// Clear wipes the remembered selections and result but keeps the session.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	err := m.store.UpdateState(sessionID, func(s *State) {
		*s = State{}
	})
	if err != nil {
		return err
	}

	m.logger.Info(ctx, "session state cleared", map[string]interface{}{
		"session_id": sessionID,
	})
	return nil
}

// Delete deletes a session by ID.
func (m *Manager) Delete(ctx context.Context, sessionID string) {
	m.store.Delete(sessionID)
	m.logger.Info(ctx, "session deleted", map[string]interface{}{
		"session_id": sessionID,
	})
}

// StartCleanup starts a background goroutine that periodically cleans up expired sessions.
func (m *Manager) StartCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				removed := m.store.Cleanup()
				if removed > 0 {
					m.logger.Info(context.Background(), "cleaned up expired sessions", map[string]interface{}{
						"removed_count": removed,
						"active_count":  m.store.Len(),
					})
				}
			case <-m.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// StopCleanup stops the cleanup goroutine. It is safe to call more than once.
func (m *Manager) StopCleanup() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}
