// Package extract pulls contact signals out of raw page HTML.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/leadscout/internal/model"
)

// emailPattern is deliberately permissive: it catches addresses outside
// anchor tags, including lightly obfuscated ones.
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// phonePatterns cover the three US phone shapes that appear on business
// sites: parenthesized area code, separator-delimited, and +1-prefixed.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\d{3}[-.]\d{3}[-.]\d{4}`),
	regexp.MustCompile(`\+1[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
}

var nonDigitPattern = regexp.MustCompile(`\D`)

// nameSeparatorPattern splits site titles like "Joe's Body Shop | Austin"
// or "Acme Collision - Home" down to the name itself.
var nameSeparatorPattern = regexp.MustCompile(`\s*\|\s*|\s+[-–—]\s+`)

// streetAddressPatterns match US street addresses: number, street-type
// keyword, two-letter state, ZIP.
var streetAddressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,6}\s+[A-Za-z0-9.' ]+\s+(?i:street|st|avenue|ave|boulevard|blvd|drive|dr|road|rd|lane|ln|way|court|ct|place|pl|parkway|pkwy)\.?(?:,?\s+(?i:suite|ste|unit|#)\.?\s*[A-Za-z0-9]+)?,?\s+[A-Za-z.' ]+,?\s+[A-Z]{2}\s+\d{5}(?:-\d{4})?`),
	regexp.MustCompile(`\d{1,6}\s+[A-Za-z0-9.' ]+,\s*[A-Za-z.' ]+,\s*[A-Z]{2}\s+\d{5}(?:-\d{4})?`),
}

var defaultContactPaths = []string{
	"/contact", "/contact-us", "/about", "/about-us", "/team", "/staff",
}

var titleCaser = cases.Title(language.English)

// Extractor extracts contact signals from HTML. The email blacklist and
// contact-page path list are injected so tests can substitute fixtures.
type Extractor struct {
	blacklist    []string
	contactPaths []string
}

// NewExtractor creates an Extractor. Nil slices fall back to defaults.
func NewExtractor(blacklist, contactPaths []string) *Extractor {
	if len(contactPaths) == 0 {
		contactPaths = defaultContactPaths
	}
	return &Extractor{
		blacklist:    blacklist,
		contactPaths: contactPaths,
	}
}

// Contact runs all extractors over one page.
func (e *Extractor) Contact(html, pageURL string) model.RawContact {
	return model.RawContact{
		Emails:       e.Emails(html),
		Phones:       e.Phones(html),
		BusinessName: e.BusinessName(html, pageURL),
		Address:      e.Address(html),
	}
}

// Emails returns the union of regex-scanned addresses and mailto: link
// targets, lowercased, deduplicated, and filtered against the blacklist.
func (e *Extractor) Emails(html string) []string {
	seen := make(map[string]bool)
	var emails []string

	add := func(email string) {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || seen[email] {
			return
		}
		seen[email] = true
		emails = append(emails, email)
	}

	for _, m := range emailPattern.FindAllString(html, -1) {
		add(m)
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			addr := strings.TrimPrefix(href, "mailto:")
			// Strip ?subject= and friends.
			if idx := strings.Index(addr, "?"); idx >= 0 {
				addr = addr[:idx]
			}
			if emailPattern.MatchString(addr) {
				add(addr)
			}
		})
	}

	return e.filterBlacklisted(emails)
}

// filterBlacklisted drops any email containing a blacklist substring.
func (e *Extractor) filterBlacklisted(emails []string) []string {
	if len(e.blacklist) == 0 {
		return emails
	}
	kept := emails[:0]
	for _, email := range emails {
		blocked := false
		for _, pattern := range e.blacklist {
			if strings.Contains(email, pattern) {
				blocked = true
				break
			}
		}
		if !blocked {
			kept = append(kept, email)
		}
	}
	return kept
}

// Phones scans for phone-shaped strings and normalizes them to 10
// digits. 11-digit candidates keep the trailing 10; everything else is
// discarded.
func (e *Extractor) Phones(html string) []string {
	seen := make(map[string]bool)
	var phones []string

	for _, pattern := range phonePatterns {
		for _, m := range pattern.FindAllString(html, -1) {
			digits := nonDigitPattern.ReplaceAllString(m, "")
			if len(digits) != 10 && len(digits) != 11 {
				continue
			}
			digits = digits[len(digits)-10:]
			if seen[digits] {
				continue
			}
			seen[digits] = true
			phones = append(phones, digits)
		}
	}

	return phones
}

// FormatPhone renders 10 normalized digits as (XXX) XXX-XXXX. Anything
// else passes through unchanged.
func FormatPhone(digits string) string {
	if len(digits) != 10 {
		return digits
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}

// BusinessName picks the best available site name: og:site_name,
// application-name, og:title, <title>, then the first <h1>. The first
// non-empty candidate under 100 characters wins, trimmed of anything
// after a dash or pipe separator. Falls back to a title-cased hostname
// label when the page offers nothing.
func (e *Extractor) BusinessName(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		candidates := []string{
			doc.Find(`meta[property="og:site_name"]`).First().AttrOr("content", ""),
			doc.Find(`meta[name="application-name"]`).First().AttrOr("content", ""),
			doc.Find(`meta[property="og:title"]`).First().AttrOr("content", ""),
			doc.Find("title").First().Text(),
			doc.Find("h1").First().Text(),
		}

		for _, candidate := range candidates {
			candidate = strings.TrimSpace(candidate)
			if candidate == "" || len(candidate) >= 100 {
				continue
			}
			if name := cleanName(candidate); name != "" {
				return name
			}
		}
	}

	return nameFromHostname(pageURL)
}

// cleanName keeps only the text before the first dash/pipe separator.
func cleanName(name string) string {
	parts := nameSeparatorPattern.Split(name, 2)
	return strings.TrimSpace(parts[0])
}

// nameFromHostname derives a display name from the URL's first hostname
// label, e.g. "https://joes-body-shop.com" -> "Joes Body Shop".
func nameFromHostname(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return ""
	}
	label = strings.ReplaceAll(label, "-", " ")
	return titleCaser.String(label)
}

// Address finds a US postal address: street-address regexes over the raw
// HTML first, then schema.org microdata. Microdata needs at least a
// street address and a locality to count.
func (e *Extractor) Address(html string) string {
	for _, pattern := range streetAddressPatterns {
		if m := pattern.FindString(html); m != "" {
			return strings.Join(strings.Fields(m), " ")
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	street := strings.TrimSpace(doc.Find(`[itemprop="streetAddress"]`).First().Text())
	locality := strings.TrimSpace(doc.Find(`[itemprop="addressLocality"]`).First().Text())
	if street == "" || locality == "" {
		return ""
	}

	parts := []string{street, locality}
	if region := strings.TrimSpace(doc.Find(`[itemprop="addressRegion"]`).First().Text()); region != "" {
		parts = append(parts, region)
	}
	if postal := strings.TrimSpace(doc.Find(`[itemprop="postalCode"]`).First().Text()); postal != "" {
		parts = append(parts, postal)
	}
	return strings.Join(parts, ", ")
}

// ContactPageURLs derives likely contact-page URLs from a base URL's
// origin. An unparsable base yields an empty list.
func (e *Extractor) ContactPageURLs(baseURL string) []string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil
	}
	origin := parsed.Scheme + "://" + parsed.Host

	urls := make([]string, 0, len(e.contactPaths))
	for _, p := range e.contactPaths {
		urls = append(urls, origin+p)
	}
	return urls
}
