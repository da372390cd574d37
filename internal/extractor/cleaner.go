package extractor

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	htmlRemnantRe = regexp.MustCompile(`<[^>]+>`)
	punctRunRe    = regexp.MustCompile(`[.,!?;:]{2,}`)
	numericLineRe = regexp.MustCompile(`^[\d\s.,:%/-]+$`)
	sentenceEndRe = regexp.MustCompile(`[.!?]+`)
)

// similarityThreshold is the token-overlap ratio above which two sentences
// are considered near-duplicates.
const similarityThreshold = 0.7

// CleanText normalizes extracted page text: strips HTML remnants, collapses
// whitespace and punctuation runs, collapses doubled word tokens, drops
// short or numeric-only lines, and removes near-duplicate sentences while
// preserving first occurrence order.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < 5 {
			continue
		}
		if numericLineRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}

	out := strings.Join(kept, " ")
	out = htmlRemnantRe.ReplaceAllString(out, " ")
	out = whitespaceRe.ReplaceAllString(out, " ")
	out = collapseDoubledTokens(out)
	out = punctRunRe.ReplaceAllString(out, ".")
	out = DedupSentences(out)

	return strings.TrimSpace(out)
}

// collapseDoubledTokens rewrites tokens that are a word immediately repeated
// with no separator ("NameName" -> "Name"), a common artifact of scraping
// link text nested inside headings.
func collapseDoubledTokens(text string) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = collapseToken(f)
	}
	return strings.Join(fields, " ")
}

func collapseToken(tok string) string {
	trailing := strings.TrimLeftFunc(tok, func(r rune) bool { return !unicode.IsPunct(r) })
	core := strings.TrimSuffix(tok, trailing)
	if core == "" {
		core = tok
		trailing = ""
	}
	if len(core) < 8 || len(core)%2 != 0 {
		return tok
	}
	half := core[:len(core)/2]
	if core == half+half {
		return half + trailing
	}
	return tok
}

// DedupSentences removes sentences whose token overlap with an earlier
// sentence exceeds the similarity threshold. The first occurrence wins.
func DedupSentences(text string) string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return text
	}

	var seen []map[string]bool
	unique := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if len(s) <= 10 {
			unique = append(unique, s)
			continue
		}
		tokens := tokenSet(s)
		dup := false
		for _, prev := range seen {
			if TokenOverlap(tokens, prev) > similarityThreshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen = append(seen, tokens)
		unique = append(unique, s)
	}

	joined := strings.Join(unique, ". ")
	if joined != "" && !strings.HasSuffix(joined, ".") {
		joined += "."
	}
	return joined
}

// SplitSentences splits text on sentence-ending punctuation, returning
// trimmed non-empty sentences.
func SplitSentences(text string) []string {
	parts := sentenceEndRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TokenOverlap computes the Jaccard ratio between two token sets.
func TokenOverlap(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,!?;:()\"'")
		if f != "" {
			set[f] = true
		}
	}
	return set
}
