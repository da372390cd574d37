package repository

import (
	"context"
	"log"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

// ContextStoreChain composes storage tiers so callers never branch on which
// tier answered. Reads return the first tier with content; writes go to
// every tier so a durable tier outage degrades silently to memory.
type ContextStoreChain struct {
	tiers []ContextStore
}

func NewContextStoreChain(tiers ...ContextStore) *ContextStoreChain {
	return &ContextStoreChain{tiers: tiers}
}

func (c *ContextStoreChain) SetDocuments(ctx context.Context, sessionID string, docs []*domain.ExtractedDocument) error {
	var lastErr error
	wrote := false
	for _, tier := range c.tiers {
		if err := tier.SetDocuments(ctx, sessionID, docs); err != nil {
			log.Printf("context store tier write failed for session %s: %v", sessionID, err)
			lastErr = err
			continue
		}
		wrote = true
	}
	if !wrote {
		return lastErr
	}
	return nil
}

func (c *ContextStoreChain) GetDocuments(ctx context.Context, sessionID string) ([]*domain.ExtractedDocument, error) {
	var lastErr error
	for _, tier := range c.tiers {
		docs, err := tier.GetDocuments(ctx, sessionID)
		if err != nil {
			log.Printf("context store tier read failed for session %s: %v", sessionID, err)
			lastErr = err
			continue
		}
		if len(docs) > 0 {
			return docs, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

func (c *ContextStoreChain) AppendQA(ctx context.Context, sessionID string, entry domain.QAEntry) error {
	var lastErr error
	wrote := false
	for _, tier := range c.tiers {
		if err := tier.AppendQA(ctx, sessionID, entry); err != nil {
			log.Printf("history tier write failed for session %s: %v", sessionID, err)
			lastErr = err
			continue
		}
		wrote = true
	}
	if !wrote {
		return lastErr
	}
	return nil
}

func (c *ContextStoreChain) History(ctx context.Context, sessionID string) ([]domain.QAEntry, error) {
	var lastErr error
	for _, tier := range c.tiers {
		entries, err := tier.History(ctx, sessionID)
		if err != nil {
			lastErr = err
			continue
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

func (c *ContextStoreChain) Clear(ctx context.Context, sessionID string) error {
	var lastErr error
	for _, tier := range c.tiers {
		if err := tier.Clear(ctx, sessionID); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
