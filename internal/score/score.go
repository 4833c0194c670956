// Package score computes the 0-100 lead-quality score.
package score

import "strings"

// Signal weights. The full sum is exactly 100; the clamp in Score is a
// defensive invariant, not a reachable correction.
const (
	pointsEmail      = 30
	pointsNonWebmail = 15
	pointsPhone      = 20
	pointsCompany    = 15
	pointsWebsite    = 10
	pointsAddress    = 10
)

// Contact holds the fields that contribute to a lead's score.
type Contact struct {
	Email   string
	Phone   string
	Company string
	Website string
	Address string
}

// Scorer scores contacts by data completeness. The webmail domain set is
// injected configuration.
type Scorer struct {
	webmail map[string]bool
}

// NewScorer creates a Scorer with the given consumer webmail domains.
func NewScorer(webmailDomains []string) *Scorer {
	webmail := make(map[string]bool, len(webmailDomains))
	for _, d := range webmailDomains {
		webmail[strings.ToLower(d)] = true
	}
	return &Scorer{webmail: webmail}
}

// Score returns an additive quality score clamped to [0, 100].
func (s *Scorer) Score(c Contact) int {
	total := 0

	if c.Email != "" {
		total += pointsEmail
		if !s.isWebmail(c.Email) {
			total += pointsNonWebmail
		}
	}
	if c.Phone != "" {
		total += pointsPhone
	}
	if len(c.Company) > 2 {
		total += pointsCompany
	}
	if c.Website != "" {
		total += pointsWebsite
	}
	if c.Address != "" {
		total += pointsAddress
	}

	if total > 100 {
		total = 100
	}
	return total
}

func (s *Scorer) isWebmail(email string) bool {
	idx := strings.LastIndex(email, "@")
	if idx < 0 {
		return false
	}
	return s.webmail[strings.ToLower(email[idx+1:])]
}
