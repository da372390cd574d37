package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewExtractedDocument(t *testing.T) {
	doc := NewExtractedDocument("https://example.com", "Example", "one two three")

	assert.True(t, doc.Success)
	assert.Equal(t, 3, doc.WordCount)
	assert.Empty(t, doc.Error)
}

func TestNewFailedDocument(t *testing.T) {
	doc := NewFailedDocument("https://example.com", "", "HTTP 404: page not found")

	assert.False(t, doc.Success)
	assert.Equal(t, "HTTP 404: page not found", doc.Error)
	assert.Zero(t, doc.WordCount)
}

func TestExtractionResult_SuccessfulDocuments(t *testing.T) {
	result := &ExtractionResult{
		Documents: []*ExtractedDocument{
			NewExtractedDocument("https://a.example", "A", "alpha body"),
			NewFailedDocument("https://b.example", "", "timeout"),
			NewExtractedDocument("https://c.example", "C", "gamma body"),
		},
	}

	docs := result.SuccessfulDocuments()
	assert.Len(t, docs, 2)
	assert.Equal(t, "https://a.example", docs[0].URL)
	assert.Equal(t, "https://c.example", docs[1].URL)
}

func TestDistinctSources(t *testing.T) {
	chunks := []ScoredChunk{
		{Chunk: ContentChunk{URL: "https://a.example"}},
		{Chunk: ContentChunk{URL: "https://b.example"}},
		{Chunk: ContentChunk{URL: "https://a.example"}},
	}

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, DistinctSources(chunks))
}

func TestDomainError(t *testing.T) {
	err := NewDomainError(ErrCodeValidation, "bad input")
	assert.Equal(t, "[VALIDATION_ERROR] bad input", err.Error())

	wrapped := NewDomainErrorWithCause(ErrCodeInternalError, "store failed", assert.AnError)
	assert.ErrorIs(t, wrapped, assert.AnError)
}
