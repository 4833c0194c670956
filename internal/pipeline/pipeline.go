// Package pipeline orchestrates the lead discovery flow: parse the
// prompt, search the web, crawl candidate sites, extract and validate
// contacts, score, dedupe, and cap.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/crawler"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/query"
	"github.com/sells-group/leadscout/internal/score"
	"github.com/sells-group/leadscout/internal/validate"
	"github.com/sells-group/leadscout/pkg/customsearch"
)

// Options configures the orchestrator.
type Options struct {
	// DirectoryHosts are aggregator/social hosts never treated as a
	// business's own website.
	DirectoryHosts []string
	// ContactPageLimit caps how many contact-page candidates are fetched
	// when the primary page yields no emails.
	ContactPageLimit int
}

// Pipeline wires the search client, fetcher, extractor, validator, and
// scorer into the end-to-end flow.
type Pipeline struct {
	search    customsearch.Client
	fetcher   crawler.Fetcher
	scheduler *crawler.Scheduler
	extractor *extract.Extractor
	validator *validate.Validator
	scorer    *score.Scorer
	opts      Options
}

// New creates a Pipeline.
func New(
	search customsearch.Client,
	fetcher crawler.Fetcher,
	scheduler *crawler.Scheduler,
	extractor *extract.Extractor,
	validator *validate.Validator,
	scorer *score.Scorer,
	opts Options,
) *Pipeline {
	if opts.ContactPageLimit == 0 {
		opts.ContactPageLimit = 2
	}
	return &Pipeline{
		search:    search,
		fetcher:   fetcher,
		scheduler: scheduler,
		extractor: extractor,
		validator: validator,
		scorer:    scorer,
		opts:      opts,
	}
}

// candidateEmail pairs an extracted email with the page it came from.
type candidateEmail struct {
	email  string
	source string
}

// ScrapeLeads runs the full pipeline for one prompt. It never returns an
// error: terminal conditions and per-site failures are reported through
// the result's Errors list so callers always get a best-effort result.
func (p *Pipeline) ScrapeLeads(ctx context.Context, prompt string, maxResults int) model.ScrapeResult {
	log := zap.L().With(zap.String("prompt", prompt))
	result := model.ScrapeResult{Leads: []model.Lead{}}

	if maxResults < 0 {
		maxResults = 0
	}

	parsed := query.Parse(prompt)
	if parsed.BusinessType == "" {
		result.Errors = append(result.Errors,
			"could not determine a business type from the prompt")
		return result
	}

	searchQuery := strings.TrimSpace(
		parsed.BusinessType + " " + parsed.Location + " contact email")

	// Always request a full page: directory filtering below can discard
	// several hits, and the API caps num at 10 anyway.
	hits, err := p.search.Search(ctx, searchQuery, 10)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("search failed: %s", err.Error()))
		return result
	}
	if len(hits) == 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("No search results found for %q", searchQuery))
		return result
	}

	log.Info("pipeline: search complete",
		zap.String("query", searchQuery),
		zap.Int("results", len(hits)),
	)

	seen := make(map[string]bool)

	for _, hit := range hits {
		if len(result.Leads) >= maxResults {
			break
		}

		if p.isDirectoryHost(hit.URL) {
			log.Debug("pipeline: skipping directory site", zap.String("url", hit.URL))
			continue
		}

		outcome := p.fetcher.Fetch(ctx, hit.URL)
		if !outcome.Success {
			result.Errors = append(result.Errors,
				fmt.Sprintf("failed to crawl %s: %s", hit.URL, outcome.Error))
			continue
		}
		result.TotalScraped++

		contact := p.extractor.Contact(outcome.HTML, hit.URL)

		candidates := make([]candidateEmail, 0, len(contact.Emails))
		for _, email := range contact.Emails {
			candidates = append(candidates, candidateEmail{email: email, source: hit.URL})
		}

		// Contact-page fallback: only when the primary page had no emails.
		if len(candidates) == 0 {
			fallback, fetched := p.crawlContactPages(ctx, hit.URL)
			result.TotalScraped += fetched
			candidates = fallback
		}

		p.emitLeads(ctx, &result, seen, candidates, contact, hit.URL, parsed.Location, maxResults)
	}

	log.Info("pipeline: run complete",
		zap.Int("leads", len(result.Leads)),
		zap.Int("pages", result.TotalScraped),
		zap.Int("errors", len(result.Errors)),
	)

	return result
}

// crawlContactPages fetches up to ContactPageLimit contact-page
// candidates through the scheduler and returns any emails found plus the
// number of pages successfully fetched.
func (p *Pipeline) crawlContactPages(ctx context.Context, siteURL string) ([]candidateEmail, int) {
	pages := p.extractor.ContactPageURLs(siteURL)
	if len(pages) > p.opts.ContactPageLimit {
		pages = pages[:p.opts.ContactPageLimit]
	}
	if len(pages) == 0 {
		return nil, 0
	}

	var (
		candidates []candidateEmail
		fetched    int
	)
	for _, outcome := range p.scheduler.CrawlMany(ctx, pages) {
		if !outcome.Success {
			continue
		}
		fetched++
		for _, email := range p.extractor.Emails(outcome.HTML) {
			candidates = append(candidates, candidateEmail{email: email, source: outcome.URL})
		}
	}
	return candidates, fetched
}

// emitLeads validates unseen candidate emails in extraction order and
// appends a lead per valid email, stopping at the cap. Invalid emails
// are expected and skipped silently.
func (p *Pipeline) emitLeads(
	ctx context.Context,
	result *model.ScrapeResult,
	seen map[string]bool,
	candidates []candidateEmail,
	contact model.RawContact,
	siteURL string,
	location string,
	maxResults int,
) {
	phone := ""
	if len(contact.Phones) > 0 {
		phone = extract.FormatPhone(contact.Phones[0])
	}

	for _, candidate := range candidates {
		if len(result.Leads) >= maxResults {
			return
		}

		key := strings.ToLower(candidate.email)
		if seen[key] {
			continue
		}

		verdict := p.validator.Validate(ctx, candidate.email)
		if !verdict.Valid {
			continue
		}
		seen[key] = true

		leadScore := p.scorer.Score(score.Contact{
			Email:   candidate.email,
			Phone:   phone,
			Company: contact.BusinessName,
			Website: siteURL,
			Address: contact.Address,
		})

		result.Leads = append(result.Leads, model.Lead{
			Email:     candidate.email,
			Company:   contact.BusinessName,
			Phone:     phone,
			Location:  location,
			Website:   siteURL,
			Address:   contact.Address,
			LeadScore: leadScore,
			Verified:  true,
			Source:    candidate.source,
		})
	}
}

// isDirectoryHost reports whether the URL's host is (or is a subdomain
// of) a known directory/social platform.
func (p *Pipeline) isDirectoryHost(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))

	for _, dir := range p.opts.DirectoryHosts {
		if host == dir || strings.HasSuffix(host, "."+dir) {
			return true
		}
	}
	return false
}
