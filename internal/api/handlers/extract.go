package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pagetalk-ai/pagetalk/internal/api"
	"github.com/pagetalk-ai/pagetalk/internal/domain"
	"github.com/pagetalk-ai/pagetalk/internal/service"
)

// Extractor fetches and extracts readable content from URLs.
type Extractor interface {
	ExtractAll(ctx context.Context, urls []string) *domain.ExtractionResult
}

// ContextWriter persists extracted content for a session.
type ContextWriter interface {
	StoreContext(ctx context.Context, sessionID string, docs []*domain.ExtractedDocument) error
}

type ExtractHandler struct {
	extractor Extractor
	contexts  ContextWriter
	maxURLs   int
}

func NewExtractHandler(extractor Extractor, contexts ContextWriter, maxURLs int) *ExtractHandler {
	return &ExtractHandler{
		extractor: extractor,
		contexts:  contexts,
		maxURLs:   maxURLs,
	}
}

type ExtractRequest struct {
	URLs      []string `json:"urls"`
	SessionID string   `json:"session_id,omitempty"`
}

type ExtractResponse struct {
	SessionID      string                      `json:"session_id"`
	Documents      []*domain.ExtractedDocument `json:"documents"`
	TotalWordCount int                         `json:"total_word_count"`
	FailedURLs     []string                    `json:"failed_urls"`
	Success        bool                        `json:"success"`
}

// Extract handles POST /extract. It fetches every requested URL, stores the
// readable content under the session, and reports per-URL outcomes. Partial
// failures are reported in the payload, not as an HTTP error.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.URLs) == 0 {
		api.HandleError(w, domain.ErrNoURLs)
		return
	}
	if h.maxURLs > 0 && len(req.URLs) > h.maxURLs {
		api.HandleError(w, domain.ErrTooManyURLs)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = service.NewSessionID()
	}

	result := h.extractor.ExtractAll(r.Context(), req.URLs)

	if result.Success {
		if err := h.contexts.StoreContext(r.Context(), sessionID, result.SuccessfulDocuments()); err != nil {
			api.HandleError(w, err)
			return
		}
	}

	api.Success(w, http.StatusOK, ExtractResponse{
		SessionID:      sessionID,
		Documents:      result.Documents,
		TotalWordCount: result.TotalWordCount,
		FailedURLs:     result.FailedURLs,
		Success:        result.Success,
	})
}
