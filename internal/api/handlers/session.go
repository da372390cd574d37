package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagetalk-ai/pagetalk/internal/api"
	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

// SessionManager exposes session-scoped context operations.
type SessionManager interface {
	History(ctx context.Context, sessionID string) ([]domain.QAEntry, error)
	ClearSession(ctx context.Context, sessionID string) error
	Stats(ctx context.Context, sessionID string) (*domain.SessionStats, error)
}

type SessionHandler struct {
	svc SessionManager
}

func NewSessionHandler(svc SessionManager) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type HistoryResponse struct {
	SessionID string           `json:"session_id"`
	History   []domain.QAEntry `json:"history"`
}

// History handles GET /history/{sessionID}. Unknown sessions return an empty
// history rather than an error.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		api.Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	history, err := h.svc.History(r.Context(), sessionID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if history == nil {
		history = []domain.QAEntry{}
	}

	api.Success(w, http.StatusOK, HistoryResponse{SessionID: sessionID, History: history})
}

// Delete handles DELETE /sessions/{sessionID}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		api.Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	if err := h.svc.ClearSession(r.Context(), sessionID); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /sessions/{sessionID}/stats.
func (h *SessionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		api.Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	stats, err := h.svc.Stats(r.Context(), sessionID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, stats)
}
