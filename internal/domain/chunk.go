package domain

import "time"

// ContentChunk is a bounded slice of a source document, the unit of semantic
// indexing and retrieval. Chunk sets are replaced wholesale when a session's
// content is re-stored; chunks are never partially updated.
type ContentChunk struct {
	ID          int64
	SessionID   string
	URL         string
	Title       string
	Text        string
	ChunkIndex  int
	TotalChunks int
	Embedding   []float32
	CreatedAt   time.Time
}

// ScoredChunk pairs a chunk with a relevance score. Semantic search produces
// similarity scores in (0,1]; the deterministic selector produces unbounded
// keyword scores. Callers compare scores only within one retrieval path.
type ScoredChunk struct {
	Chunk ContentChunk
	Score float64
}

// DistinctSources returns the distinct source URLs across chunks, in first
// occurrence order.
func DistinctSources(chunks []ScoredChunk) []string {
	seen := make(map[string]bool, len(chunks))
	var urls []string
	for _, c := range chunks {
		if !seen[c.Chunk.URL] {
			seen[c.Chunk.URL] = true
			urls = append(urls, c.Chunk.URL)
		}
	}
	return urls
}
