package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
	"github.com/pagetalk-ai/pagetalk/internal/extractor"
)

const (
	// extractiveMaxChars bounds the total text considered when assembling
	// an extractive answer.
	extractiveMaxChars = 8000

	// minSectionChars filters out fragments too short to carry an answer.
	minSectionChars = 20

	// sentencesPerParagraph groups selected sentences for readability.
	sentencesPerParagraph = 3

	// maxAnswerSentences bounds the extractive answer length.
	maxAnswerSentences = 6
)

// section is a sentence-level candidate with its provenance.
type section struct {
	text  string
	url   string
	title string
	score int
}

// ExtractiveAnswer composes an answer from the retrieved chunks without any
// model call. It scores sentence-level sections with the same deterministic
// scheme used for retrieval, drops near-duplicates, and stitches the best
// sentences into short paragraphs with a lead-in matched to the question
// type. It always produces some text: when nothing scores, it reports what
// topics the stored sources cover instead.
func ExtractiveAnswer(question string, chunks []domain.ScoredChunk) string {
	terms := TokenizeQuery(question)
	sections := collectSections(chunks)

	scored := make([]section, 0, len(sections))
	for _, sec := range sections {
		sec.score = ScoreText(terms, sec.text)
		if sec.score > 0 {
			scored = append(scored, sec)
		}
	}

	if len(scored) == 0 {
		return noMatchAnswer(chunks)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	selected := selectSentences(scored)
	body := joinParagraphs(selected)

	answer := leadIn(question) + "\n\n" + body
	if sources := domain.DistinctSources(chunks); len(sources) > 1 {
		answer += fmt.Sprintf("\n\n(Information gathered from %d sources.)", len(sources))
	}
	return answer
}

func collectSections(chunks []domain.ScoredChunk) []section {
	var sections []section
	total := 0
	for _, sc := range chunks {
		if total >= extractiveMaxChars {
			break
		}
		text := extractor.CleanText(sc.Chunk.Text)
		for _, sentence := range extractor.SplitSentences(text) {
			sentence = strings.TrimSpace(sentence)
			if len(sentence) < minSectionChars {
				continue
			}
			sections = append(sections, section{
				text:  sentence,
				url:   sc.Chunk.URL,
				title: sc.Chunk.Title,
			})
			total += len(sentence)
			if total >= extractiveMaxChars {
				break
			}
		}
	}
	return sections
}

// selectSentences walks the score-ordered sections and keeps the best ones,
// skipping near-duplicates of sentences already chosen.
func selectSentences(scored []section) []string {
	var (
		selected []string
		sets     []map[string]bool
	)
	for _, sec := range scored {
		if len(selected) >= maxAnswerSentences {
			break
		}
		set := tokenSetOf(sec.text)
		dup := false
		for _, prev := range sets {
			if extractor.TokenOverlap(set, prev) > 0.7 {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		selected = append(selected, strings.TrimRight(sec.text, ".")+".")
		sets = append(sets, set)
	}
	return selected
}

func joinParagraphs(sentences []string) string {
	var paragraphs []string
	for i := 0; i < len(sentences); i += sentencesPerParagraph {
		end := i + sentencesPerParagraph
		if end > len(sentences) {
			end = len(sentences)
		}
		paragraphs = append(paragraphs, strings.Join(sentences[i:end], " "))
	}
	return strings.Join(paragraphs, "\n\n")
}

func tokenSetOf(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,!?;:()\"'")
		if f != "" {
			set[f] = true
		}
	}
	return set
}

// leadIn picks a conversational opener matched to the question type.
func leadIn(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	switch {
	case strings.HasPrefix(q, "who"):
		if subject := questionSubject(q, "who"); subject != "" {
			return fmt.Sprintf("Based on the information provided, here's what I found about %s:", subject)
		}
		return "Based on the information provided, here's what I found:"
	case strings.HasPrefix(q, "when"):
		return "Based on the information provided, here's the timing information I found:"
	case strings.HasPrefix(q, "where"):
		return "Based on the information provided, here's the location information I found:"
	case strings.HasPrefix(q, "why"):
		return "Based on the information provided, here's the reasoning I found:"
	case strings.HasPrefix(q, "how"):
		return "Based on the information provided, here's what I found about how this works:"
	default:
		return "Based on the information provided:"
	}
}

// questionSubject strips the interrogative scaffolding from questions like
// "who is Marie Curie?" to recover the subject.
func questionSubject(q, word string) string {
	rest := strings.TrimPrefix(q, word)
	rest = strings.TrimSpace(rest)
	for _, verb := range []string{"is ", "was ", "are ", "were "} {
		if strings.HasPrefix(rest, verb) {
			rest = strings.TrimPrefix(rest, verb)
			break
		}
	}
	rest = strings.TrimRight(strings.TrimSpace(rest), "?.! ")
	return rest
}

// noMatchAnswer is returned when no section scores against the question. It
// tells the user what the stored sources actually cover.
func noMatchAnswer(chunks []domain.ScoredChunk) string {
	seen := make(map[string]bool)
	var titles []string
	for _, sc := range chunks {
		title := sc.Chunk.Title
		if title == "" || title == "Untitled" {
			title = sc.Chunk.URL
		}
		if !seen[title] {
			seen[title] = true
			titles = append(titles, title)
		}
	}
	if len(titles) == 0 {
		return "I couldn't find specific information about that in the provided content."
	}
	return fmt.Sprintf(
		"I couldn't find specific information about that in the provided content. The available sources cover: %s.",
		strings.Join(titles, ", "))
}
