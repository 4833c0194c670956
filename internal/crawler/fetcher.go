// Package crawler fetches candidate websites under bounded concurrency
// with per-slot politeness delays.
package crawler

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

// Fetcher retrieves a single URL's HTML. All failure modes surface as
// data on the outcome; Fetch never returns a Go error.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) model.CrawlOutcome
}

// userAgents is a small pool rotated per request to reduce fingerprinting
// uniformity.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	Timeout   time.Duration
	MaxBodyKB int
}

// HTTPFetcher implements Fetcher using net/http.
type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
	maxBody int64
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxBodyKB == 0 {
		opts.MaxBodyKB = 512
	}
	return &HTTPFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: opts.Timeout,
				}).DialContext,
				TLSHandshakeTimeout: opts.Timeout,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		timeout: opts.Timeout,
		maxBody: int64(opts.MaxBodyKB) * 1024,
	}
}

// Fetch retrieves one URL with browser-like headers and a hard deadline.
// No retries: a failed fetch is recorded by the caller, not repeated.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) model.CrawlOutcome {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return failure(targetURL, err.Error())
	}

	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Connection", "keep-alive")

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Debug("crawler: fetch failed",
			zap.String("url", targetURL),
			zap.Error(err),
		)
		return failure(targetURL, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(targetURL, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return failure(targetURL, err.Error())
	}

	return model.CrawlOutcome{
		URL:     targetURL,
		HTML:    string(body),
		Success: true,
	}
}

func failure(targetURL, msg string) model.CrawlOutcome {
	return model.CrawlOutcome{
		URL:     targetURL,
		Success: false,
		Error:   msg,
	}
}
