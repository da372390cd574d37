package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pagetalk-ai/pagetalk/internal/api"
	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

// Answerer answers questions against a session's stored content.
type Answerer interface {
	Answer(ctx context.Context, sessionID, question string) (*domain.Answer, error)
}

type QuestionHandler struct {
	svc Answerer
}

func NewQuestionHandler(svc Answerer) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

type QuestionRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// Ask handles POST /question.
func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.svc.Answer(r.Context(), req.SessionID, req.Question)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, answer)
}
