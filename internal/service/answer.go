package service

import (
	"context"
	"log"
	"time"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
	"github.com/pagetalk-ai/pagetalk/internal/telemetry"
)

// Strategy confidence levels, graded by answer quality.
const (
	confidenceHosted     = 0.9
	confidenceOllama     = 0.8
	confidenceHF         = 0.7
	confidenceExtractive = 0.6
)

// defaultMaxResults is how many chunks are retrieved per question.
const defaultMaxResults = 6

// strategyTimeout bounds a single strategy attempt so a slow provider cannot
// stall the whole cascade.
const strategyTimeout = 45 * time.Second

// AnswerRequest carries everything a strategy needs to answer a question.
type AnswerRequest struct {
	Question string
	Chunks   []domain.ScoredChunk
	History  []domain.QAEntry
}

// Strategy is a single answering backend in the cascade. Available reports
// whether the strategy can be attempted at all; Answer performs the attempt.
type Strategy interface {
	Name() string
	Available(ctx context.Context) bool
	Answer(ctx context.Context, req AnswerRequest) (string, error)
}

// RetrieverInterface defines the context retrieval interface consumed by the
// answer service.
type RetrieverInterface interface {
	Retrieve(ctx context.Context, sessionID, query string, maxResults int) ([]domain.ScoredChunk, error)
	History(ctx context.Context, sessionID string) ([]domain.QAEntry, error)
	AppendQA(ctx context.Context, sessionID string, entry domain.QAEntry) error
}

// AnswerService answers questions against a session's stored content by
// walking an ordered cascade of strategies. Strategy failures never surface
// to the caller; the last strategy is deterministic and cannot fail, so every
// question over a non-empty session gets an answer.
type AnswerService struct {
	retriever  RetrieverInterface
	strategies []Strategy
	maxResults int
	now        func() time.Time
}

// NewAnswerService creates a new AnswerService with the given cascade order.
func NewAnswerService(retriever RetrieverInterface, strategies []Strategy) *AnswerService {
	return &AnswerService{
		retriever:  retriever,
		strategies: strategies,
		maxResults: defaultMaxResults,
		now:        time.Now,
	}
}

// Answer retrieves relevant context for the session, walks the strategy
// cascade until one produces an answer, records the exchange in the session
// history, and returns the graded answer.
func (s *AnswerService) Answer(ctx context.Context, sessionID, question string) (*domain.Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnswerService.Answer", telemetry.SpanAttributes{
		SessionID: sessionID,
	})
	defer span.End()

	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if sessionID == "" {
		return nil, domain.ErrNoSessionContent
	}

	chunks, err := s.retriever.Retrieve(ctx, sessionID, question, s.maxResults)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, domain.ErrNoSessionContent
	}

	history, err := s.retriever.History(ctx, sessionID)
	if err != nil {
		log.Printf("History lookup failed for session %s: %v", sessionID, err)
		history = nil
	}

	req := AnswerRequest{
		Question: question,
		Chunks:   chunks,
		History:  RecentHistory(history, historyWindow),
	}

	for _, strategy := range s.strategies {
		if !strategy.Available(ctx) {
			continue
		}
		text, err := s.attempt(ctx, strategy, req)
		if err != nil {
			log.Printf("Strategy %s failed for session %s: %v", strategy.Name(), sessionID, err)
			continue
		}

		answer := &domain.Answer{
			Text:       text,
			Sources:    domain.DistinctSources(chunks),
			SessionID:  sessionID,
			Confidence: confidenceFor(strategy.Name()),
			Strategy:   strategy.Name(),
		}
		if err := s.retriever.AppendQA(ctx, sessionID, domain.QAEntry{
			Question:  question,
			Answer:    text,
			Timestamp: s.now().UTC(),
		}); err != nil {
			log.Printf("Failed to record history for session %s: %v", sessionID, err)
		}
		return answer, nil
	}

	span.SetError(domain.ErrCascadeExhausted)
	return nil, domain.ErrCascadeExhausted
}

func (s *AnswerService) attempt(ctx context.Context, strategy Strategy, req AnswerRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, strategyTimeout)
	defer cancel()
	return strategy.Answer(ctx, req)
}

func confidenceFor(name string) float64 {
	switch name {
	case StrategyOllama:
		return confidenceOllama
	case StrategyHuggingFace:
		return confidenceHF
	case StrategyExtractive:
		return confidenceExtractive
	default:
		return confidenceHosted
	}
}
