package extractor

import (
	"bytes"
	"context"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

const (
	// minContentChars is the floor below which an extraction is rejected.
	minContentChars = 50
	// minCleanedChars guards against cleanup destroying a page that did
	// have raw content; below it we fall back to a slice of the raw text.
	minCleanedChars = 20
	// rawRescueCap bounds the raw-text slice used for that fallback.
	rawRescueCap = 5000
	// maxConcurrentFetches bounds the extraction fan-out.
	maxConcurrentFetches = 5
)

// strippedSelectors are removed from every document before extraction.
var strippedSelectors = []string{"script", "style", "nav", "footer", "header", "aside", "form", "noscript", "iframe"}

// clutterRe matches class or id values of boilerplate containers.
var clutterRe = regexp.MustCompile(`(?i)\b(nav|menu|sidebar|ad|ads|advert|social|share|comment|related|breadcrumb|cookie)\b`)

// contentSelectors are tried in priority order on the generic path.
var contentSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	".content",
	".post-content",
	".entry-content",
	".article-content",
	".story-body",
}

// navChromeRe matches paragraph text that is pure navigation chrome.
var navChromeRe = regexp.MustCompile(`(?i)^(jump to|edit|retrieved from|see also|external links|главная|home|menu|navigation|share this|skip to)\b`)

// Extractor fetches pages and produces cleaned, word-counted documents.
type Extractor struct {
	fetcher *Fetcher
}

func New(fetcher *Fetcher) *Extractor {
	return &Extractor{fetcher: fetcher}
}

// ExtractAll fetches every URL concurrently and aggregates the results.
// One URL's failure never cancels or corrupts the others; the batch
// succeeds when at least one URL extracted with a non-zero word count.
func (e *Extractor) ExtractAll(ctx context.Context, urls []string) *domain.ExtractionResult {
	docs := make([]*domain.ExtractedDocument, len(urls))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, u := range urls {
		g.Go(func() error {
			docs[i] = e.ExtractOne(ctx, u)
			return nil
		})
	}
	// Units record their own failures and never return errors.
	_ = g.Wait()

	result := &domain.ExtractionResult{Documents: docs}
	for _, doc := range docs {
		if doc.Success {
			result.TotalWordCount += doc.WordCount
		} else {
			result.FailedURLs = append(result.FailedURLs, doc.URL)
			log.Printf("extraction failed for %s: %s", doc.URL, doc.Error)
		}
	}
	result.Success = len(result.Documents) > 0 && result.TotalWordCount > 0
	return result
}

// ExtractOne fetches and extracts a single URL. Failures are recorded on the
// returned document, never raised.
func (e *Extractor) ExtractOne(ctx context.Context, pageURL string) *domain.ExtractedDocument {
	fetched := e.fetcher.Fetch(ctx, pageURL)
	if fetched.Outcome != FetchOK {
		return domain.NewFailedDocument(pageURL, "", fetched.Err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(fetched.Body))
	if err != nil {
		return domain.NewFailedDocument(pageURL, "", "failed to parse document")
	}

	stripClutter(doc)
	title := extractTitle(doc)

	var raw string
	if isEncyclopediaLayout(doc) {
		raw = extractEncyclopedia(doc)
		if len(strings.TrimSpace(raw)) < minContentChars {
			raw = extractGeneric(doc, fetched.Body, pageURL)
		}
	} else {
		raw = extractGeneric(doc, fetched.Body, pageURL)
	}

	cleaned := CleanText(raw)
	if len(cleaned) < minCleanedChars && len(strings.TrimSpace(raw)) >= minContentChars {
		// Cleanup destroyed the page; a capped slice of the raw text beats
		// failing outright.
		cleaned = capRunes(whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " "), rawRescueCap)
	}
	if len(cleaned) < minContentChars {
		return domain.NewFailedDocument(pageURL, title, "insufficient content extracted")
	}

	return domain.NewExtractedDocument(pageURL, title, cleaned)
}

func stripClutter(doc *goquery.Document) {
	for _, sel := range strippedSelectors {
		doc.Find(sel).Remove()
	}
	doc.Find("[class],[id]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if clutterRe.MatchString(class) || clutterRe.MatchString(id) {
			s.Remove()
		}
	})
}

func extractTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return "Untitled"
}

// isEncyclopediaLayout detects MediaWiki-style markup, which needs a
// specialized path because the article body is buried in parser output
// containers full of reference markers.
func isEncyclopediaLayout(doc *goquery.Document) bool {
	return doc.Find("#mw-content-text, .mw-parser-output, #bodyContent").Length() > 0
}

func extractEncyclopedia(doc *goquery.Document) string {
	container := doc.Find(".mw-parser-output").First()
	if container.Length() == 0 {
		container = doc.Find("#mw-content-text, #bodyContent").First()
	}
	if container.Length() == 0 {
		return ""
	}

	container.Find(".reference, .mw-editsection, .mw-cite-backlink, sup.reference").Remove()

	var blocks []string
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) <= 10 {
			return
		}
		if navChromeRe.MatchString(text) {
			return
		}
		blocks = append(blocks, text)
	})
	return strings.Join(blocks, "\n")
}

func extractGeneric(doc *goquery.Document, rawHTML []byte, pageURL string) string {
	for _, sel := range contentSelectors {
		hit := doc.Find(sel)
		if hit.Length() == 0 {
			continue
		}
		var blocks []string
		hit.Find("p, h1, h2, h3, h4, li").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 {
				blocks = append(blocks, text)
			}
		})
		if len(blocks) > 0 {
			return strings.Join(blocks, "\n")
		}
		// The container matched but holds no block elements; fall through
		// to its flat text before trying the next selector.
		if text := strings.TrimSpace(hit.First().Text()); len(text) > minContentChars {
			return text
		}
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) > 20 {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n")
	}

	return fullBodyText(rawHTML, pageURL, doc)
}

// fullBodyText is the last resort: readability's main-content heuristic over
// the whole page, falling back to the flat body text.
func fullBodyText(rawHTML []byte, pageURL string, doc *goquery.Document) string {
	if parsed, err := url.Parse(pageURL); err == nil {
		article, err := readability.FromReader(bytes.NewReader(rawHTML), parsed)
		if err == nil && strings.TrimSpace(article.TextContent) != "" {
			return article.TextContent
		}
	}
	return doc.Find("body").Text()
}

func capRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
