package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

// browserUserAgent is sent on every fetch so pages serve their regular
// desktop markup instead of bot-gated responses.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxFetchBytes caps page bodies to keep pathological pages from exhausting
// memory during concurrent extraction.
const maxFetchBytes = 8 << 20

// FetchOutcome classifies how a page fetch ended.
type FetchOutcome int

const (
	FetchOK FetchOutcome = iota
	FetchNotFound
	FetchForbidden
	FetchBadStatus
	FetchTimeout
	FetchConnectionError
	FetchError
)

// FetchResult carries the classified outcome of fetching one URL. Err is a
// human-readable message, never a raw transport error dump.
type FetchResult struct {
	URL        string
	StatusCode int
	Body       []byte
	Outcome    FetchOutcome
	Err        string
}

// FetcherConfig controls page fetching.
type FetcherConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// Fetcher downloads pages with a browser user agent and a fixed timeout.
type Fetcher struct {
	client *http.Client
	cfg    FetcherConfig
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = browserUserAgent
	}
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

// Fetch downloads url and classifies the outcome. It never returns an error;
// failures are recorded on the result so one bad URL cannot abort a batch.
func (f *Fetcher) Fetch(ctx context.Context, url string) *FetchResult {
	res := &FetchResult{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		res.Outcome = FetchError
		res.Err = fmt.Sprintf("invalid url: %v", err)
		return res
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		f.classifyTransportError(res, err)
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode == http.StatusOK:
		res.Outcome = FetchOK
	case resp.StatusCode == http.StatusNotFound:
		res.Outcome = FetchNotFound
		res.Err = "HTTP 404: page not found"
		return res
	case resp.StatusCode == http.StatusForbidden:
		res.Outcome = FetchForbidden
		res.Err = "HTTP 403: access forbidden"
		return res
	default:
		res.Outcome = FetchBadStatus
		res.Err = fmt.Sprintf("HTTP %d: unexpected status", resp.StatusCode)
		return res
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		f.classifyTransportError(res, err)
		return res
	}
	res.Body = body
	return res
}

func (f *Fetcher) classifyTransportError(res *FetchResult, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, os.ErrDeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		res.Outcome = FetchTimeout
		res.Err = fmt.Sprintf("request timed out after %s", f.cfg.Timeout)
	case isConnectionError(err):
		res.Outcome = FetchConnectionError
		res.Err = "connection failed: could not reach host"
	default:
		res.Outcome = FetchError
		res.Err = fmt.Sprintf("request failed: %v", err)
	}
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
