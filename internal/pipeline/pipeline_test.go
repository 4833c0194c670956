package pipeline

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/crawler"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/score"
	"github.com/sells-group/leadscout/internal/validate"
	"github.com/sells-group/leadscout/pkg/customsearch"
)

type mockSearch struct {
	hits      []customsearch.Result
	err       error
	lastQuery string
	lastNum   int
}

func (m *mockSearch) Search(_ context.Context, query string, num int) ([]customsearch.Result, error) {
	m.lastQuery = query
	m.lastNum = num
	return m.hits, m.err
}

// mockFetcher serves canned pages by URL; anything unlisted fails.
type mockFetcher struct {
	pages map[string]string
}

func (m *mockFetcher) Fetch(_ context.Context, targetURL string) model.CrawlOutcome {
	html, ok := m.pages[targetURL]
	if !ok {
		return model.CrawlOutcome{URL: targetURL, Error: "HTTP 404"}
	}
	return model.CrawlOutcome{URL: targetURL, HTML: html, Success: true}
}

type okResolver struct{}

func (okResolver) LookupMX(_ context.Context, _ string) ([]*net.MX, error) {
	return []*net.MX{{Host: "mx.test", Pref: 10}}, nil
}

func newTestPipeline(search customsearch.Client, fetcher crawler.Fetcher) *Pipeline {
	scheduler := crawler.NewScheduler(fetcher, crawler.SchedulerOptions{
		Delay:         time.Millisecond,
		MaxConcurrent: 2,
	})
	return New(
		search,
		fetcher,
		scheduler,
		extract.NewExtractor([]string{"example.com"}, nil),
		validate.NewValidator(okResolver{}, []string{"mailinator.com"}),
		score.NewScorer([]string{"gmail.com", "yahoo.com"}),
		Options{
			DirectoryHosts:   []string{"yelp.com", "facebook.com"},
			ContactPageLimit: 2,
		},
	)
}

func TestScrapeLeads_HappyPath(t *testing.T) {
	search := &mockSearch{hits: []customsearch.Result{
		{Title: "Acme on Yelp", URL: "https://www.yelp.com/biz/acme"},
		{Title: "Acme Collision", URL: "https://acme.com"},
		{Title: "Bravo Body Works", URL: "https://bravo.com"},
	}}
	fetcher := &mockFetcher{pages: map[string]string{
		"https://acme.com": `<html><head><title>Acme Collision | Austin</title></head>
			<body><a href="mailto:info@acme.com">Email</a><p>(512) 555-0134</p></body></html>`,
		"https://bravo.com": `<html><head><title>Bravo Body Works</title></head>
			<body>sales@bravo.com</body></html>`,
	}}

	result := newTestPipeline(search, fetcher).
		ScrapeLeads(context.Background(), "Find 5 auto body shops in Austin", 5)

	assert.Equal(t, "auto body shops austin contact email", search.lastQuery)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.TotalScraped)

	require.Len(t, result.Leads, 2)
	acme := result.Leads[0]
	assert.Equal(t, "info@acme.com", acme.Email)
	assert.Equal(t, "Acme Collision", acme.Company)
	assert.Equal(t, "(512) 555-0134", acme.Phone)
	assert.Equal(t, "austin", acme.Location)
	assert.Equal(t, "https://acme.com", acme.Website)
	assert.Equal(t, "https://acme.com", acme.Source)
	assert.True(t, acme.Verified)
	assert.Greater(t, acme.LeadScore, 0)

	assert.Equal(t, "sales@bravo.com", result.Leads[1].Email)
}

func TestScrapeLeads_ContactPageFallback(t *testing.T) {
	search := &mockSearch{hits: []customsearch.Result{
		{Title: "Acme", URL: "https://acme.com"},
	}}
	fetcher := &mockFetcher{pages: map[string]string{
		// Primary page has a phone but no email.
		"https://acme.com": `<html><head><title>Acme Collision</title></head>
			<body><p>(512) 555-0134</p></body></html>`,
		// First fallback candidate has the email; /contact-us stays 404.
		"https://acme.com/contact": `<html><body>office@acme.com</body></html>`,
	}}

	result := newTestPipeline(search, fetcher).
		ScrapeLeads(context.Background(), "find auto body shops in Austin", 5)

	// Primary page plus the one contact page that resolved.
	assert.Equal(t, 2, result.TotalScraped)

	require.Len(t, result.Leads, 1)
	lead := result.Leads[0]
	assert.Equal(t, "office@acme.com", lead.Email)
	assert.Equal(t, "https://acme.com/contact", lead.Source)
	assert.Equal(t, "https://acme.com", lead.Website)
	assert.Equal(t, "(512) 555-0134", lead.Phone)
}

func TestScrapeLeads_NoSearchResults(t *testing.T) {
	search := &mockSearch{}
	result := newTestPipeline(search, &mockFetcher{}).
		ScrapeLeads(context.Background(), "find plumbers in Nowhere", 5)

	assert.Empty(t, result.Leads)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "No search results found for")
}

func TestScrapeLeads_SearchError(t *testing.T) {
	search := &mockSearch{err: errors.New("context deadline exceeded")}
	result := newTestPipeline(search, &mockFetcher{}).
		ScrapeLeads(context.Background(), "find plumbers in Denver", 5)

	assert.Empty(t, result.Leads)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "search failed")
}

func TestScrapeLeads_UnparseablePrompt(t *testing.T) {
	search := &mockSearch{hits: []customsearch.Result{{URL: "https://acme.com"}}}
	result := newTestPipeline(search, &mockFetcher{}).
		ScrapeLeads(context.Background(), "find me", 5)

	assert.Empty(t, result.Leads)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "could not determine a business type")
	// Never reached the search provider.
	assert.Empty(t, search.lastQuery)
}

func TestScrapeLeads_CrawlFailureRecordedAndSkipped(t *testing.T) {
	search := &mockSearch{hits: []customsearch.Result{
		{URL: "https://down.com"},
		{URL: "https://up.com"},
	}}
	fetcher := &mockFetcher{pages: map[string]string{
		"https://up.com": `<html><body>hello@up.com</body></html>`,
	}}

	result := newTestPipeline(search, fetcher).
		ScrapeLeads(context.Background(), "find roofers in Tulsa", 5)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "failed to crawl https://down.com")
	assert.Contains(t, result.Errors[0], "HTTP 404")

	assert.Equal(t, 1, result.TotalScraped)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "hello@up.com", result.Leads[0].Email)
}

func TestScrapeLeads_InvalidEmailsSkippedSilently(t *testing.T) {
	search := &mockSearch{hits: []customsearch.Result{
		{URL: "https://acme.com"},
	}}
	fetcher := &mockFetcher{pages: map[string]string{
		"https://acme.com": `<html><body>burner@mailinator.com real@acme.com</body></html>`,
	}}

	result := newTestPipeline(search, fetcher).
		ScrapeLeads(context.Background(), "find shops in Austin", 5)

	// The disposable address is dropped without an error entry.
	assert.Empty(t, result.Errors)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "real@acme.com", result.Leads[0].Email)
}

func TestScrapeLeads_DedupeAcrossSites(t *testing.T) {
	search := &mockSearch{hits: []customsearch.Result{
		{URL: "https://acme.com"},
		{URL: "https://acme-austin.com"},
	}}
	fetcher := &mockFetcher{pages: map[string]string{
		"https://acme.com":        `<html><body>Info@Acme.com</body></html>`,
		"https://acme-austin.com": `<html><body>info@acme.com</body></html>`,
	}}

	result := newTestPipeline(search, fetcher).
		ScrapeLeads(context.Background(), "find shops in Austin", 5)

	require.Len(t, result.Leads, 1)
	assert.Equal(t, "info@acme.com", result.Leads[0].Email)
}

func TestScrapeLeads_CapHonored(t *testing.T) {
	search := &mockSearch{hits: []customsearch.Result{
		{URL: "https://a.com"},
		{URL: "https://b.com"},
		{URL: "https://c.com"},
	}}
	fetcher := &mockFetcher{pages: map[string]string{
		"https://a.com": `<html><body>one@a.com</body></html>`,
		"https://b.com": `<html><body>two@b.com</body></html>`,
		"https://c.com": `<html><body>three@c.com</body></html>`,
	}}

	result := newTestPipeline(search, fetcher).
		ScrapeLeads(context.Background(), "find shops in Austin", 2)

	assert.Len(t, result.Leads, 2)
}

func TestScrapeLeads_CapZero(t *testing.T) {
	search := &mockSearch{hits: []customsearch.Result{
		{URL: "https://a.com"},
	}}
	fetcher := &mockFetcher{pages: map[string]string{
		"https://a.com": `<html><body>one@a.com</body></html>`,
	}}

	result := newTestPipeline(search, fetcher).
		ScrapeLeads(context.Background(), "find shops in Austin", 0)

	assert.Empty(t, result.Leads)
	assert.Zero(t, result.TotalScraped)
	assert.Empty(t, result.Errors)
}

func TestScrapeLeads_DirectoryHostsSkipped(t *testing.T) {
	search := &mockSearch{hits: []customsearch.Result{
		{URL: "https://www.yelp.com/biz/acme"},
		{URL: "https://m.facebook.com/acme"},
		{URL: "https://acme.com"},
	}}
	fetcher := &mockFetcher{pages: map[string]string{
		"https://acme.com": `<html><body>info@acme.com</body></html>`,
	}}

	result := newTestPipeline(search, fetcher).
		ScrapeLeads(context.Background(), "find shops in Austin", 5)

	// Directory hits are dropped without error entries or fetches.
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.TotalScraped)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "https://acme.com", result.Leads[0].Website)
}

func TestScrapeLeads_BlacklistedEmailsNeverSurface(t *testing.T) {
	search := &mockSearch{hits: []customsearch.Result{
		{URL: "https://acme.com"},
	}}
	fetcher := &mockFetcher{pages: map[string]string{
		"https://acme.com": `<html><body>test@example.com</body></html>`,
	}}

	p := newTestPipeline(search, fetcher)
	result := p.ScrapeLeads(context.Background(), "find shops in Austin", 5)

	// The only email is blacklisted, and the contact-page fallback finds
	// nothing, so the site contributes no leads.
	assert.Empty(t, result.Leads)
}
