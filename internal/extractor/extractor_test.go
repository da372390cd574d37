package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<html>
<head><title>Tower History</title></head>
<body>
<nav>Home About Contact</nav>
<div class="sidebar">Trending now: celebrity news</div>
<article>
<h2>Construction of the tower</h2>
<p>The Eiffel Tower was completed in 1889 as the entrance arch to the World's Fair held in Paris.</p>
<p>It was designed by the engineering firm of Gustave Eiffel and stands on the Champ de Mars.</p>
</article>
<footer>Copyright 2024 Example Media</footer>
<script>trackVisitors();</script>
</body></html>`

const encyclopediaHTML = `<html>
<head><title>Eiffel Tower - Encyclopedia</title></head>
<body>
<div id="mw-content-text"><div class="mw-parser-output">
<p>The Eiffel Tower is a wrought-iron lattice tower on the Champ de Mars in Paris, France.<sup class="reference">[1]</sup></p>
<p>It is named after the engineer Gustave Eiffel, whose company designed and built the tower from 1887 to 1889.<span class="mw-editsection">edit</span></p>
<p>ok</p>
<p>Jump to navigation section of this page for more entries and categories</p>
</div></div>
</body></html>`

func newTestExtractor(timeout time.Duration) *Extractor {
	return New(NewFetcher(FetcherConfig{Timeout: timeout}))
}

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractOne_GenericArticle(t *testing.T) {
	srv := serveHTML(t, articleHTML)
	e := newTestExtractor(time.Second)

	doc := e.ExtractOne(context.Background(), srv.URL)

	require.True(t, doc.Success, "error: %s", doc.Error)
	assert.Equal(t, "Tower History", doc.Title)
	assert.Contains(t, doc.Content, "completed in 1889")
	assert.Contains(t, doc.Content, "Gustave Eiffel")
	assert.NotContains(t, doc.Content, "celebrity news")
	assert.NotContains(t, doc.Content, "trackVisitors")
	assert.NotContains(t, doc.Content, "Copyright 2024")
	assert.Greater(t, doc.WordCount, 10)
}

func TestExtractOne_EncyclopediaLayout(t *testing.T) {
	srv := serveHTML(t, encyclopediaHTML)
	e := newTestExtractor(time.Second)

	doc := e.ExtractOne(context.Background(), srv.URL)

	require.True(t, doc.Success, "error: %s", doc.Error)
	assert.Contains(t, doc.Content, "wrought-iron lattice tower")
	assert.Contains(t, doc.Content, "1887 to 1889")
	assert.NotContains(t, doc.Content, "[1]")
	assert.NotContains(t, doc.Content, "Jump to navigation")
}

func TestExtractOne_TitleFallsBackToH1(t *testing.T) {
	srv := serveHTML(t, `<html><body><h1>Heading Title</h1><article>
<p>The observatory opened its doors to the public for the first time in over a decade.</p>
<p>Astronomers expect the refurbished telescope to double the number of recorded observations.</p>
</article></body></html>`)
	e := newTestExtractor(time.Second)

	doc := e.ExtractOne(context.Background(), srv.URL)
	require.True(t, doc.Success)
	assert.Equal(t, "Heading Title", doc.Title)
}

func TestExtractOne_UntitledWhenNoTitleOrH1(t *testing.T) {
	srv := serveHTML(t, `<html><body><article><p>The committee approved the proposal after a long debate about the regional budget allocations for next year.</p></article></body></html>`)
	e := newTestExtractor(time.Second)

	doc := e.ExtractOne(context.Background(), srv.URL)
	require.True(t, doc.Success)
	assert.Equal(t, "Untitled", doc.Title)
}

func TestExtractOne_ParagraphFallback(t *testing.T) {
	// No article/main containers at all, just loose paragraphs.
	srv := serveHTML(t, `<html><head><title>Loose</title></head><body>
<p>The municipal council voted to expand the tram network towards the harbor district this spring.</p>
<p>Funding comes from a regional infrastructure grant approved late last year.</p>
</body></html>`)
	e := newTestExtractor(time.Second)

	doc := e.ExtractOne(context.Background(), srv.URL)
	require.True(t, doc.Success)
	assert.Contains(t, doc.Content, "tram network")
	assert.Contains(t, doc.Content, "infrastructure grant")
}

func TestExtractOne_InsufficientContent(t *testing.T) {
	srv := serveHTML(t, `<html><head><title>Empty</title></head><body><p>hi</p></body></html>`)
	e := newTestExtractor(time.Second)

	doc := e.ExtractOne(context.Background(), srv.URL)
	assert.False(t, doc.Success)
	assert.Equal(t, "insufficient content extracted", doc.Error)
}

func TestExtractOne_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	e := newTestExtractor(time.Second)

	doc := e.ExtractOne(context.Background(), srv.URL)
	assert.False(t, doc.Success)
	assert.Equal(t, "HTTP 404: page not found", doc.Error)
}

func TestExtractAll_PartialFailure(t *testing.T) {
	good := serveHTML(t, articleHTML)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	e := newTestExtractor(time.Second)
	result := e.ExtractAll(context.Background(), []string{good.URL, bad.URL})

	assert.True(t, result.Success, "one good URL is enough")
	assert.Len(t, result.Documents, 2)
	assert.Equal(t, []string{bad.URL}, result.FailedURLs)
	assert.Greater(t, result.TotalWordCount, 0)
}

func TestExtractAll_AllFail(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer bad.Close()

	e := newTestExtractor(time.Second)
	result := e.ExtractAll(context.Background(), []string{bad.URL, bad.URL + "/other"})

	assert.False(t, result.Success)
	assert.Len(t, result.FailedURLs, 2)
	assert.Zero(t, result.TotalWordCount)
}

func TestExtractAll_Concurrent(t *testing.T) {
	var urls []string
	for i := 0; i < 8; i++ {
		srv := serveHTML(t, fmt.Sprintf(`<html><head><title>Page %d</title></head><body><article><p>Document number %d talks about a unique subject with plenty of detail to pass the size threshold.</p></article></body></html>`, i, i))
		urls = append(urls, srv.URL)
	}

	e := newTestExtractor(2 * time.Second)
	result := e.ExtractAll(context.Background(), urls)

	require.True(t, result.Success)
	require.Len(t, result.Documents, 8)
	for i, doc := range result.Documents {
		assert.True(t, doc.Success)
		assert.Equal(t, urls[i], doc.URL, "results keep request order")
	}
}
