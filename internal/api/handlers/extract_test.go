package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractAll(ctx context.Context, urls []string) *domain.ExtractionResult {
	args := m.Called(ctx, urls)
	return args.Get(0).(*domain.ExtractionResult)
}

type MockContextWriter struct {
	mock.Mock
}

func (m *MockContextWriter) StoreContext(ctx context.Context, sessionID string, docs []*domain.ExtractedDocument) error {
	args := m.Called(ctx, sessionID, docs)
	return args.Error(0)
}

func postJSON(t *testing.T, body interface{}) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader(payload))
}

func TestExtractHandler_StoresAndReturnsSession(t *testing.T) {
	doc := domain.NewExtractedDocument("https://a.test", "A", "Plenty of extracted article text lives here.")
	result := &domain.ExtractionResult{
		Documents:      []*domain.ExtractedDocument{doc},
		TotalWordCount: doc.WordCount,
		Success:        true,
	}

	extractor := new(MockExtractor)
	extractor.On("ExtractAll", mock.Anything, []string{"https://a.test"}).Return(result)
	writer := new(MockContextWriter)
	writer.On("StoreContext", mock.Anything, "mysess01", result.Documents).Return(nil)

	handler := NewExtractHandler(extractor, writer, 10)
	w := httptest.NewRecorder()

	handler.Extract(w, postJSON(t, ExtractRequest{
		URLs:      []string{"https://a.test"},
		SessionID: "mysess01",
	}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ExtractResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "mysess01", resp.Data.SessionID)
	assert.True(t, resp.Data.Success)
	require.Len(t, resp.Data.Documents, 1)
	assert.Equal(t, "A", resp.Data.Documents[0].Title)
	extractor.AssertExpectations(t)
	writer.AssertExpectations(t)
}

func TestExtractHandler_MintsSessionWhenMissing(t *testing.T) {
	doc := domain.NewExtractedDocument("https://a.test", "A", "content words")
	result := &domain.ExtractionResult{Documents: []*domain.ExtractedDocument{doc}, Success: true}

	extractor := new(MockExtractor)
	extractor.On("ExtractAll", mock.Anything, mock.Anything).Return(result)
	writer := new(MockContextWriter)
	writer.On("StoreContext", mock.Anything, mock.AnythingOfType("string"), result.Documents).Return(nil)

	handler := NewExtractHandler(extractor, writer, 10)
	w := httptest.NewRecorder()

	handler.Extract(w, postJSON(t, ExtractRequest{URLs: []string{"https://a.test"}}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ExtractResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.SessionID, 8)
}

func TestExtractHandler_PartialFailureStoresOnlySuccessfulDocs(t *testing.T) {
	good := domain.NewExtractedDocument("https://a.test", "A", "Readable article body with enough words.")
	bad := domain.NewFailedDocument("https://b.test", "", "HTTP 500: internal server error")
	result := &domain.ExtractionResult{
		Documents:      []*domain.ExtractedDocument{good, bad},
		TotalWordCount: good.WordCount,
		FailedURLs:     []string{"https://b.test"},
		Success:        true,
	}

	extractor := new(MockExtractor)
	extractor.On("ExtractAll", mock.Anything, mock.Anything).Return(result)
	writer := new(MockContextWriter)
	writer.On("StoreContext", mock.Anything, "mysess01", []*domain.ExtractedDocument{good}).Return(nil)

	handler := NewExtractHandler(extractor, writer, 10)
	w := httptest.NewRecorder()

	handler.Extract(w, postJSON(t, ExtractRequest{
		URLs:      []string{"https://a.test", "https://b.test"},
		SessionID: "mysess01",
	}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ExtractResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Documents, 2, "response still reports every URL outcome")
	writer.AssertExpectations(t)
}

func TestExtractHandler_NoURLs(t *testing.T) {
	handler := NewExtractHandler(new(MockExtractor), new(MockContextWriter), 10)
	w := httptest.NewRecorder()

	handler.Extract(w, postJSON(t, ExtractRequest{}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractHandler_TooManyURLs(t *testing.T) {
	handler := NewExtractHandler(new(MockExtractor), new(MockContextWriter), 2)
	w := httptest.NewRecorder()

	handler.Extract(w, postJSON(t, ExtractRequest{
		URLs: []string{"https://a.test", "https://b.test", "https://c.test"},
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractHandler_InvalidBody(t *testing.T) {
	handler := NewExtractHandler(new(MockExtractor), new(MockContextWriter), 10)
	w := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader([]byte("{not json")))
	handler.Extract(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractHandler_AllURLsFailedSkipsStore(t *testing.T) {
	result := &domain.ExtractionResult{
		Documents:  []*domain.ExtractedDocument{domain.NewFailedDocument("https://a.test", "", "HTTP 404: page not found")},
		FailedURLs: []string{"https://a.test"},
		Success:    false,
	}
	extractor := new(MockExtractor)
	extractor.On("ExtractAll", mock.Anything, mock.Anything).Return(result)
	writer := new(MockContextWriter)

	handler := NewExtractHandler(extractor, writer, 10)
	w := httptest.NewRecorder()

	handler.Extract(w, postJSON(t, ExtractRequest{URLs: []string{"https://a.test"}}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ExtractResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Success)
	assert.Equal(t, []string{"https://a.test"}, resp.Data.FailedURLs)
	writer.AssertNotCalled(t, "StoreContext", mock.Anything, mock.Anything, mock.Anything)
}
