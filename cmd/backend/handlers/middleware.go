package handlers

import (
	"context"
	"net/http"

	"github.com/hairizuanbinnoorazman/design-testgen/logger"
	"github.com/hairizuanbinnoorazman/design-testgen/session"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// SessionIDKey is the context key for the interactive session ID.
const SessionIDKey ContextKey = "session_id"

// SessionMiddleware attaches an interactive session to every request,
// starting a new one when the cookie is missing, forged or expired.
type SessionMiddleware struct {
	sessionManager *session.Manager
	cookies        *session.CookieCodec
	logger         logger.Logger
}

// NewSessionMiddleware creates a new session middleware.
func NewSessionMiddleware(sessionManager *session.Manager, cookies *session.CookieCodec, log logger.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		sessionManager: sessionManager,
		cookies:        cookies,
		logger:         log,
	}
}

// Handler wraps an HTTP handler with session resolution.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sessionID, err := m.cookies.Read(r)
		if err == nil {
			if _, getErr := m.sessionManager.Get(sessionID); getErr != nil {
				m.logger.Debug(ctx, "session cookie refers to unknown session", map[string]interface{}{
					"error": getErr.Error(),
				})
				sessionID = ""
			}
		} else if err != http.ErrNoCookie {
			m.logger.Warn(ctx, "invalid session cookie", map[string]interface{}{
				"error":  err.Error(),
				"cookie": m.cookies.Name(),
				"path":   r.URL.Path,
			})
		}

		if sessionID == "" {
			sess := m.sessionManager.Create(ctx)
			if err := m.cookies.Write(w, sess.ID); err != nil {
				m.logger.Error(ctx, "failed to write session cookie", map[string]interface{}{
					"error": err.Error(),
				})
				respondError(w, http.StatusInternalServerError, "failed to start session")
				return
			}
			sessionID = sess.ID
		}

		ctx = context.WithValue(ctx, SessionIDKey, sessionID)
		ctx = logger.ContextWithFields(ctx, map[string]interface{}{
			"session_id": sessionID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts the session ID from the request context.
func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok && sessionID != ""
}
