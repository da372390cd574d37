package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pagetalk-ai/pagetalk/internal/domain"
	"github.com/pagetalk-ai/pagetalk/internal/telemetry"
)

// EmbeddingClient defines the embedding interface consumed by the context service
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChunkIndexInterface defines the vector index interface for chunk persistence
type ChunkIndexInterface interface {
	ReplaceChunks(ctx context.Context, sessionID string, chunks []domain.ContentChunk) error
	QueryByEmbedding(ctx context.Context, sessionID string, embedding []float32, limit int) ([]domain.ScoredChunk, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Stats(ctx context.Context, sessionID string) (*domain.SessionStats, error)
}

// ContextStoreInterface defines the raw document store consumed by the context service
type ContextStoreInterface interface {
	SetDocuments(ctx context.Context, sessionID string, docs []*domain.ExtractedDocument) error
	GetDocuments(ctx context.Context, sessionID string) ([]*domain.ExtractedDocument, error)
	AppendQA(ctx context.Context, sessionID string, entry domain.QAEntry) error
	History(ctx context.Context, sessionID string) ([]domain.QAEntry, error)
	Clear(ctx context.Context, sessionID string) error
}

// candidateMultiplier controls how many semantic candidates are fetched
// before balanced selection trims them down to maxResults.
const candidateMultiplier = 3

// ContextService stores extracted content for a session and retrieves the
// chunks most relevant to a question. Storage is two-tier: a vector index
// when Postgres and an embedder are configured, and a raw document store
// (Redis or in-memory) that also backs keyword retrieval.
type ContextService struct {
	index    ChunkIndexInterface
	embedder EmbeddingClient
	store    ContextStoreInterface
	chunkCfg ChunkConfig
}

// NewContextService creates a new ContextService instance. index and embedder
// may be nil, in which case retrieval uses keyword scoring only.
func NewContextService(index ChunkIndexInterface, embedder EmbeddingClient, store ContextStoreInterface) *ContextService {
	return &ContextService{
		index:    index,
		embedder: embedder,
		store:    store,
		chunkCfg: DefaultChunkConfig(),
	}
}

func (s *ContextService) semanticEnabled() bool {
	return s.index != nil && s.embedder != nil
}

// NewSessionID mints a short session token.
func NewSessionID() string {
	return uuid.NewString()[:8]
}

// StoreContext chunks the successfully extracted documents and persists them
// for the session, replacing any previously stored content. The raw document
// store is always written; the vector index is written when semantic retrieval
// is enabled, and index failures degrade to keyword retrieval rather than
// failing the call.
func (s *ContextService) StoreContext(ctx context.Context, sessionID string, docs []*domain.ExtractedDocument) error {
	ctx, span := telemetry.StartSpan(ctx, "ContextService.StoreContext", telemetry.SpanAttributes{
		SessionID: sessionID,
		Operation: "store",
	})
	defer span.End()

	successful := make([]*domain.ExtractedDocument, 0, len(docs))
	for _, doc := range docs {
		if doc.Success {
			successful = append(successful, doc)
		}
	}
	if len(successful) == 0 {
		return domain.ErrNoExtractableContent
	}

	if err := s.store.SetDocuments(ctx, sessionID, successful); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to store session content", err)
	}

	if s.semanticEnabled() {
		if err := s.indexDocuments(ctx, sessionID, successful); err != nil {
			log.Printf("Vector indexing failed for session %s, keyword retrieval only: %v", sessionID, err)
			telemetry.CaptureError(ctx, err)
		}
	}
	return nil
}

func (s *ContextService) indexDocuments(ctx context.Context, sessionID string, docs []*domain.ExtractedDocument) error {
	var all []domain.ContentChunk
	for _, doc := range docs {
		all = append(all, ChunkDocument(sessionID, doc, s.chunkCfg)...)
	}
	for i := range all {
		embedding, err := s.embedder.GenerateEmbedding(ctx, all[i].Text)
		if err != nil {
			return err
		}
		all[i].Embedding = embedding
	}
	return s.index.ReplaceChunks(ctx, sessionID, all)
}

// Retrieve returns up to maxResults chunks relevant to the query, balanced
// across source URLs. Semantic retrieval is tried first; on failure or when
// disabled, deterministic keyword scoring over the stored documents is used.
// Sessions with at most five chunks skip scoring and return everything.
func (s *ContextService) Retrieve(ctx context.Context, sessionID, query string, maxResults int) ([]domain.ScoredChunk, error) {
	ctx, span := telemetry.StartSpan(ctx, "ContextService.Retrieve", telemetry.SpanAttributes{
		SessionID: sessionID,
		Operation: "retrieve",
	})
	defer span.End()

	if s.semanticEnabled() {
		chunks, err := s.retrieveSemantic(ctx, sessionID, query, maxResults)
		if err != nil {
			log.Printf("Semantic retrieval failed for session %s, falling back to keyword scoring: %v", sessionID, err)
			telemetry.CaptureError(ctx, err)
		} else if len(chunks) > 0 {
			return chunks, nil
		}
	}
	return s.retrieveKeyword(ctx, sessionID, query, maxResults)
}

func (s *ContextService) retrieveSemantic(ctx context.Context, sessionID, query string, maxResults int) ([]domain.ScoredChunk, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	candidates, err := s.index.QueryByEmbedding(ctx, sessionID, embedding, maxResults*candidateMultiplier)
	if err != nil {
		return nil, err
	}
	if len(candidates) <= maxResults {
		return candidates, nil
	}
	return SelectBalanced(candidates, maxResults), nil
}

func (s *ContextService) retrieveKeyword(ctx context.Context, sessionID, query string, maxResults int) ([]domain.ScoredChunk, error) {
	docs, err := s.store.GetDocuments(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNoSessionContent
	}

	var chunks []domain.ContentChunk
	for _, doc := range docs {
		chunks = append(chunks, ChunkDocument(sessionID, doc, s.chunkCfg)...)
	}
	if len(chunks) <= smallSessionThreshold {
		all := make([]domain.ScoredChunk, len(chunks))
		for i, c := range chunks {
			all[i] = domain.ScoredChunk{Chunk: c}
		}
		return all, nil
	}

	terms := TokenizeQuery(query)
	ranked := RankChunks(terms, chunks)
	if len(ranked) <= maxResults {
		return ranked, nil
	}
	return SelectBalanced(ranked, maxResults), nil
}

// AppendQA records a question/answer pair in the session's history.
func (s *ContextService) AppendQA(ctx context.Context, sessionID string, entry domain.QAEntry) error {
	return s.store.AppendQA(ctx, sessionID, entry)
}

// History returns the session's full question/answer history in order.
func (s *ContextService) History(ctx context.Context, sessionID string) ([]domain.QAEntry, error) {
	return s.store.History(ctx, sessionID)
}

// ClearSession removes all stored content and history for the session.
func (s *ContextService) ClearSession(ctx context.Context, sessionID string) error {
	if s.index != nil {
		if err := s.index.DeleteSession(ctx, sessionID); err != nil {
			return err
		}
	}
	return s.store.Clear(ctx, sessionID)
}

// Stats reports what is stored for the session. The vector index is
// authoritative when available; otherwise stats are derived from the raw
// document store.
func (s *ContextService) Stats(ctx context.Context, sessionID string) (*domain.SessionStats, error) {
	if s.index != nil {
		stats, err := s.index.Stats(ctx, sessionID)
		if err == nil && stats.TotalChunks > 0 {
			return stats, nil
		}
		if err != nil {
			log.Printf("Index stats failed for session %s: %v", sessionID, err)
		}
	}

	docs, err := s.store.GetDocuments(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	stats := &domain.SessionStats{SessionID: sessionID}
	for _, doc := range docs {
		stats.URLs = append(stats.URLs, doc.URL)
		stats.TotalChunks += len(ChunkDocument(sessionID, doc, s.chunkCfg))
	}
	return stats, nil
}
