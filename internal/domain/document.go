package domain

import "strings"

// ExtractedDocument is the result of extracting one URL. It is created once
// per URL per extraction request and is immutable after creation.
type ExtractedDocument struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	WordCount int    `json:"word_count"`
}

// NewExtractedDocument creates a successful document and derives its word count.
func NewExtractedDocument(url, title, content string) *ExtractedDocument {
	return &ExtractedDocument{
		URL:       url,
		Title:     title,
		Content:   content,
		Success:   true,
		WordCount: len(strings.Fields(content)),
	}
}

// NewFailedDocument creates a document recording why extraction failed.
func NewFailedDocument(url, title, errMsg string) *ExtractedDocument {
	return &ExtractedDocument{
		URL:     url,
		Title:   title,
		Success: false,
		Error:   errMsg,
	}
}

// ExtractionResult aggregates the outcome of extracting a batch of URLs.
type ExtractionResult struct {
	Documents      []*ExtractedDocument `json:"documents"`
	TotalWordCount int                  `json:"total_word_count"`
	FailedURLs     []string             `json:"failed_urls"`
	Success        bool                 `json:"success"`
}

// SuccessfulDocuments returns only the documents that extracted cleanly.
func (r *ExtractionResult) SuccessfulDocuments() []*ExtractedDocument {
	out := make([]*ExtractedDocument, 0, len(r.Documents))
	for _, d := range r.Documents {
		if d.Success {
			out = append(out, d)
		}
	}
	return out
}
