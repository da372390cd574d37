package repository

import (
	"context"
	"sync"
	"time"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

// MemoryContextStore is the in-process, last-resort tier. Entries carry a
// TTL and are reaped by Sweep; data does not survive a restart. Writes are
// whole-value replacements, so last-writer-wins per session.
type MemoryContextStore struct {
	mu       sync.RWMutex
	contexts map[string]memoryEntry
	history  map[string]historyEntry
	ttl      time.Duration
	now      func() time.Time
}

type memoryEntry struct {
	docs      []*domain.ExtractedDocument
	expiresAt time.Time
}

type historyEntry struct {
	entries   []domain.QAEntry
	expiresAt time.Time
}

func NewMemoryContextStore(ttl time.Duration) *MemoryContextStore {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	return &MemoryContextStore{
		contexts: make(map[string]memoryEntry),
		history:  make(map[string]historyEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryContextStore) SetDocuments(_ context.Context, sessionID string, docs []*domain.ExtractedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[sessionID] = memoryEntry{docs: docs, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryContextStore) GetDocuments(_ context.Context, sessionID string) ([]*domain.ExtractedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.contexts[sessionID]
	if !ok || s.now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.docs, nil
}

func (s *MemoryContextStore) AppendQA(_ context.Context, sessionID string, entry domain.QAEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.history[sessionID]
	// Copy-on-write so concurrent readers never observe a partially
	// mutated slice.
	entries := make([]domain.QAEntry, 0, len(h.entries)+1)
	entries = append(entries, h.entries...)
	entries = append(entries, entry)
	s.history[sessionID] = historyEntry{entries: entries, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryContextStore) History(_ context.Context, sessionID string) ([]domain.QAEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.history[sessionID]
	if !ok || s.now().After(h.expiresAt) {
		return nil, nil
	}
	return h.entries, nil
}

func (s *MemoryContextStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, sessionID)
	delete(s.history, sessionID)
	return nil
}

// Sweep drops expired entries and reports how many sessions were removed.
func (s *MemoryContextStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, entry := range s.contexts {
		if now.After(entry.expiresAt) {
			delete(s.contexts, id)
			removed++
		}
	}
	for id, h := range s.history {
		if now.After(h.expiresAt) {
			delete(s.history, id)
		}
	}
	return removed
}
