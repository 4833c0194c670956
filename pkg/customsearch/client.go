// Package customsearch provides a client for the Google Custom Search
// JSON API, used to discover candidate business websites.
package customsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.googleapis.com"

// maxResultsPerQuery is the API's hard cap on the num parameter.
const maxResultsPerQuery = 10

// Result is one search hit.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"link"`
}

// Client performs web searches.
type Client interface {
	Search(ctx context.Context, query string, num int) ([]Result, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the request rate in queries per second.
func WithRateLimit(qps float64) Option {
	return func(c *httpClient) {
		if qps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(qps), 1)
		}
	}
}

type httpClient struct {
	key      string
	engineID string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a Custom Search API client.
func NewClient(key, engineID string, opts ...Option) Client {
	c := &httpClient{
		key:      key,
		engineID: engineID,
		baseURL:  defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(5, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Items []Result `json:"items"`
}

// Search runs one query and returns up to num results (capped at 10 by
// the API). A non-OK status or an empty items array yields zero results
// rather than an error: the pipeline treats both the same way.
func (c *httpClient) Search(ctx context.Context, query string, num int) ([]Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "customsearch: rate limiter wait")
	}

	if num <= 0 || num > maxResultsPerQuery {
		num = maxResultsPerQuery
	}

	params := url.Values{}
	params.Set("key", c.key)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/customsearch/v1?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "customsearch: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "customsearch: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		zap.L().Warn("customsearch: non-OK status, treating as zero results",
			zap.Int("status", resp.StatusCode),
			zap.String("query", query),
		)
		return nil, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "customsearch: read response")
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "customsearch: unmarshal response")
	}

	return result.Items, nil
}
