package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
	"github.com/pagetalk-ai/pagetalk/internal/extractor"
)

// navWordRe matches leftover navigation labels that survive extraction when
// a page renders its menu as plain text.
var navWordRe = regexp.MustCompile(`\b(Home|Contact|About|Menu|Navigation|Footer|Header)\b(\s*\|)?`)

const (
	// perSourceChars caps how much text a single source contributes to the
	// provider prompt.
	perSourceChars = 4000

	// historyWindow is how many recent Q&A entries are replayed to providers.
	historyWindow = 6
)

const systemPrompt = `You are a factual question-answering assistant. Answer using ONLY the provided context.

Rules:
- If the answer is not in the context, say "I couldn't find that information in the provided content." Do not guess.
- Perform arithmetic only when every operand is explicitly present in the context.
- When sources disagree, say so and present both.
- Mention which source the answer came from when more than one source is provided.
- Answer in plain conversational prose suitable for being read aloud.`

// BuildContextText assembles the provider-facing context from retrieved
// chunks. Chunks are grouped by source URL in retrieval order, cleaned of
// markup remnants and navigation chrome, and capped per source.
func BuildContextText(chunks []domain.ScoredChunk) string {
	type source struct {
		url   string
		title string
		parts []string
	}
	var sources []*source
	index := make(map[string]*source)
	for _, sc := range chunks {
		src, ok := index[sc.Chunk.URL]
		if !ok {
			src = &source{url: sc.Chunk.URL, title: sc.Chunk.Title}
			index[sc.Chunk.URL] = src
			sources = append(sources, src)
		}
		src.parts = append(src.parts, sc.Chunk.Text)
	}

	var b strings.Builder
	for i, src := range sources {
		text := extractor.CleanText(strings.Join(src.parts, " "))
		text = strings.TrimSpace(navWordRe.ReplaceAllString(text, " "))
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}
		if runes := []rune(text); len(runes) > perSourceChars {
			text = string(runes[:perSourceChars]) + "..."
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		title := src.title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&b, "Source %d (%s) [%s]:\n%s", i+1, title, src.url, text)
	}
	return b.String()
}

// BuildUserPrompt combines the assembled context, the recent conversation
// history and the current question into a single provider prompt.
func BuildUserPrompt(contextText string, history []domain.QAEntry, question string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(contextText)

	if recent := RecentHistory(history, historyWindow); len(recent) > 0 {
		b.WriteString("\n\nPrevious conversation:\n")
		for _, entry := range recent {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", entry.Question, entry.Answer)
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// RecentHistory returns the last n entries of the history, oldest first.
func RecentHistory(history []domain.QAEntry, n int) []domain.QAEntry {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
