// Package query splits a free-text prompt into a business-type phrase
// and an optional location.
package query

import (
	"regexp"
	"strings"
)

// Parsed is the outcome of parsing one prompt.
type Parsed struct {
	BusinessType string
	Location     string
}

// locationPattern captures "in <place>" up to a comma, with an optional
// trailing region code ("in Austin", "in Austin, TX").
var locationPattern = regexp.MustCompile(`(?i)\bin\s+([a-z .'\-]+?(?:,\s*[a-z]{2,})?)\s*$|\bin\s+([a-z .'\-]+?(?:,\s*[a-z]{2,})?)(?:\s+(?:with|that|who|and)\b)`)

// simpleLocationPattern is the permissive fallback: everything after the
// last " in ".
var simpleLocationPattern = regexp.MustCompile(`(?i)\bin\s+([a-z0-9 .'\-]+(?:,\s*[a-z]{2,})?)`)

// fillerPrefixes are lead-in phrases stripped before the business type.
// Ordered longest-first so "find me" wins over "find".
var fillerPrefixes = []string{
	"find me", "search for", "get me", "look for", "find", "search", "get",
}

var quantifierPattern = regexp.MustCompile(`\b\d+\b`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Parse extracts a business type and location from a prompt. This is
// heuristic, not a grammar: unusual phrasing degrades to a partial or
// empty business type, which the pipeline treats as a terminal input
// error.
func Parse(prompt string) Parsed {
	location := parseLocation(prompt)

	business := strings.ToLower(strings.TrimSpace(prompt))

	for _, prefix := range fillerPrefixes {
		if business == prefix {
			business = ""
			break
		}
		if strings.HasPrefix(business, prefix+" ") {
			business = strings.TrimPrefix(business, prefix+" ")
			break
		}
	}

	// Drop the trailing "in <location>..." clause.
	if idx := lastClauseIndex(business); idx >= 0 {
		business = business[:idx]
	}

	business = quantifierPattern.ReplaceAllString(business, " ")
	business = whitespacePattern.ReplaceAllString(business, " ")
	business = strings.TrimSpace(business)

	return Parsed{
		BusinessType: business,
		Location:     location,
	}
}

func parseLocation(prompt string) string {
	m := locationPattern.FindStringSubmatch(prompt)
	if m != nil {
		for _, group := range m[1:] {
			if group != "" {
				return strings.ToLower(strings.TrimSpace(group))
			}
		}
	}
	if m := simpleLocationPattern.FindStringSubmatch(prompt); m != nil {
		return strings.ToLower(strings.TrimSpace(m[1]))
	}
	return ""
}

// lastClauseIndex finds where a trailing " in <location>" clause starts.
func lastClauseIndex(business string) int {
	idx := strings.LastIndex(business, " in ")
	if idx < 0 {
		return -1
	}
	// Only treat it as a location clause if something follows it.
	if strings.TrimSpace(business[idx+4:]) == "" {
		return -1
	}
	return idx
}
