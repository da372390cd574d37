package service

import (
	"sort"
	"strings"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

// Relevance scoring weights and proximity thresholds.
const (
	keywordWeight = 10
	phraseWeight  = 20

	proximityNear   = 50
	proximityMid    = 100
	proximityFar    = 200
	proximityNearPt = 20
	proximityMidPt  = 10
	proximityFarPt  = 5
)

// smallSessionThreshold: sessions with this many stored items or fewer skip
// scoring entirely and return everything.
const smallSessionThreshold = 5

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "was": true, "were": true, "with": true, "this": true,
	"that": true, "have": true, "has": true, "had": true, "from": true,
	"they": true, "their": true, "what": true, "when": true, "where": true,
	"which": true, "who": true, "whom": true, "why": true, "how": true,
	"does": true, "did": true, "can": true, "could": true, "will": true,
	"would": true, "should": true, "about": true, "into": true, "over": true,
	"after": true, "before": true, "between": true, "you": true, "your": true,
}

// QueryTerms holds the tokenized form of a question used for deterministic
// relevance scoring.
type QueryTerms struct {
	Keywords []string
	Phrases  []string
}

// TokenizeQuery extracts stopword-filtered keywords (length > 2) and
// adjacent-keyword phrases from a question.
func TokenizeQuery(query string) QueryTerms {
	fields := strings.Fields(strings.ToLower(query))
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:()\"'")
		if len(f) > 2 && !stopwords[f] {
			keywords = append(keywords, f)
		}
	}

	phrases := make([]string, 0, len(keywords))
	for i := 0; i+1 < len(keywords); i++ {
		phrases = append(phrases, keywords[i]+" "+keywords[i+1])
	}

	return QueryTerms{Keywords: keywords, Phrases: phrases}
}

// ScoreText computes the deterministic relevance of text against the query
// terms: keyword hits, phrase hits, and a proximity bonus for keyword pairs
// co-occurring close together. Pure and I/O-free.
func ScoreText(terms QueryTerms, text string) int {
	if len(terms.Keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)

	score := 0
	positions := make([]int, 0, len(terms.Keywords))
	for _, kw := range terms.Keywords {
		hits := strings.Count(lower, kw)
		if hits == 0 {
			positions = append(positions, -1)
			continue
		}
		score += hits * keywordWeight
		positions = append(positions, strings.Index(lower, kw))
	}

	for _, ph := range terms.Phrases {
		score += strings.Count(lower, ph) * phraseWeight
	}

	// Pairwise proximity over keywords present in this text.
	for i := 0; i < len(positions); i++ {
		if positions[i] < 0 {
			continue
		}
		for j := i + 1; j < len(positions); j++ {
			if positions[j] < 0 {
				continue
			}
			score += proximityBonus(absInt(positions[i] - positions[j]))
		}
	}

	return score
}

func proximityBonus(distance int) int {
	switch {
	case distance < proximityNear:
		return proximityNearPt
	case distance < proximityMid:
		return proximityMidPt
	case distance < proximityFar:
		return proximityFarPt
	default:
		return 0
	}
}

// RankChunks scores chunks against the query and returns them sorted by
// descending score. All chunks are retained so callers can make best-effort
// selections even when nothing scores above zero.
func RankChunks(terms QueryTerms, chunks []domain.ContentChunk) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, domain.ScoredChunk{
			Chunk: c,
			Score: float64(ScoreText(terms, c.Text)),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// SelectBalanced picks up to maxResults chunks. When the set spans multiple
// sources each source contributes roughly maxResults/sources (minimum one),
// and remaining slots are filled with the highest-scoring leftovers.
// Input must already be sorted by descending score.
func SelectBalanced(scored []domain.ScoredChunk, maxResults int) []domain.ScoredChunk {
	if maxResults <= 0 || len(scored) <= maxResults {
		return scored
	}

	sources := domain.DistinctSources(scored)
	if len(sources) <= 1 {
		return scored[:maxResults]
	}

	perSource := maxResults / len(sources)
	if perSource < 1 {
		perSource = 1
	}

	taken := make(map[int]bool, maxResults)
	counts := make(map[string]int, len(sources))
	selected := make([]domain.ScoredChunk, 0, maxResults)

	for i, sc := range scored {
		if len(selected) >= maxResults {
			break
		}
		if counts[sc.Chunk.URL] >= perSource {
			continue
		}
		counts[sc.Chunk.URL]++
		taken[i] = true
		selected = append(selected, sc)
	}

	for i, sc := range scored {
		if len(selected) >= maxResults {
			break
		}
		if !taken[i] {
			selected = append(selected, sc)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool { return selected[i].Score > selected[j].Score })
	return selected
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
