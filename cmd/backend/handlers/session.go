package handlers

import (
	"errors"
	"net/http"

	"github.com/hairizuanbinnoorazman/design-testgen/logger"
	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
	"github.com/hairizuanbinnoorazman/design-testgen/session"
)

// SessionHandler exposes the interactive state of the caller's session.
type SessionHandler struct {
	sessions   *session.Manager
	cookies    *session.CookieCodec
	validation *scriptgen.ValidationConfig
	logger     logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *session.Manager, cookies *session.CookieCodec, validation *scriptgen.ValidationConfig, log logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:   sessions,
		cookies:    cookies,
		validation: validation,
		logger:     log,
	}
}

// SessionResponse describes the current session.
type SessionResponse struct {
	ID    string        `json:"id"`
	State session.State `json:"state"`
}

// UpdateSelectionsRequest changes the remembered framework and base URL.
type UpdateSelectionsRequest struct {
	Framework string `json:"framework"`
	BaseURL   string `json:"base_url"`
}

func (h *SessionHandler) current(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID, ok := GetSessionID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "no session")
		return nil, false
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrSessionExpired) {
			respondError(w, http.StatusUnauthorized, "session expired")
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, "failed to load session")
		return nil, false
	}
	return sess, true
}

// Get handles GET /api/v1/session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.current(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{ID: sess.ID, State: sess.State})
}

// Update handles PUT /api/v1/session.
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, ok := h.current(w, r)
	if !ok {
		return
	}

	var req UpdateSelectionsRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	framework, err := scriptgen.ParseFramework(req.Framework)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid framework (must be 'playwright' or 'selenium')")
		return
	}
	baseURL, err := scriptgen.NormalizeBaseURL(req.BaseURL, h.validation)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sessions.SetSelections(ctx, sess.ID, framework, baseURL); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update session")
		return
	}

	updated, err := h.sessions.Get(sess.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{ID: updated.ID, State: updated.State})
}

// Clear handles DELETE /api/v1/session. It drops the remembered selections and
// last result without asking for confirmation. With ?end=true the session
// itself is deleted and its cookie expired; the next request starts a new one.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, ok := h.current(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("end") == "true" {
		h.sessions.Delete(ctx, sess.ID)
		h.cookies.Clear(w)
		h.logger.Info(ctx, "session ended", nil)
		respondSuccess(w, "session ended")
		return
	}

	if err := h.sessions.Clear(ctx, sess.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to clear session")
		return
	}
	respondSuccess(w, "session cleared")
}
