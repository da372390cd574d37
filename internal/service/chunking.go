package service

import (
	"strings"
	"time"
	"unicode"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

// ChunkConfig controls chunking of extracted documents for indexing.
type ChunkConfig struct {
	MaxChars int
	Overlap  int
	// BoundaryWindow is how far back from the cut point a sentence end is
	// searched before falling back to a whitespace boundary.
	BoundaryWindow int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars:       1000,
		Overlap:        100,
		BoundaryWindow: 200,
	}
}

// ChunkDocument splits a document into session-scoped content chunks.
func ChunkDocument(sessionID string, doc *domain.ExtractedDocument, cfg ChunkConfig) []domain.ContentChunk {
	pieces := chunkText(doc.Content, cfg)
	chunks := make([]domain.ContentChunk, 0, len(pieces))
	now := time.Now().UTC()
	for i, text := range pieces {
		chunks = append(chunks, domain.ContentChunk{
			SessionID:   sessionID,
			URL:         doc.URL,
			Title:       doc.Title,
			Text:        text,
			ChunkIndex:  i,
			TotalChunks: len(pieces),
			CreatedAt:   now,
		})
	}
	return chunks
}

// chunkText splits text into overlapping chunks, cutting at sentence ends
// when one falls within the boundary window and at whitespace otherwise, so
// chunks never cut mid-sentence when avoidable.
func chunkText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}
	runes := []rune(clean)
	if len(runes) <= cfg.MaxChars {
		return []string{clean}
	}

	chunks := make([]string, 0, 8)
	start := 0
	for start < len(runes) {
		end := start + cfg.MaxChars
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			end = findCut(runes, start, end, cfg.BoundaryWindow)
		}
		if end <= start {
			break
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end
		if cfg.Overlap > 0 && end-start > cfg.Overlap {
			nextStart = end - cfg.Overlap
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return chunks
}

func findCut(runes []rune, start, end, window int) int {
	minCut := end - window
	if minCut < start+1 {
		minCut = start + 1
	}
	for i := end; i > minCut; i-- {
		if isSentenceEnd(runes[i-1]) {
			return i
		}
	}
	for i := end; i > minCut; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
