package repository

import (
	"context"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

// ContextStore is the flat key-value tier for session content and history.
// Implementations return empty (not an error) for unknown sessions so tiers
// can be chained; absence is decided by the caller.
type ContextStore interface {
	SetDocuments(ctx context.Context, sessionID string, docs []*domain.ExtractedDocument) error
	GetDocuments(ctx context.Context, sessionID string) ([]*domain.ExtractedDocument, error)
	AppendQA(ctx context.Context, sessionID string, entry domain.QAEntry) error
	History(ctx context.Context, sessionID string) ([]domain.QAEntry, error)
	Clear(ctx context.Context, sessionID string) error
}
