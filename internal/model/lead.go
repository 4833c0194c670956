// Package model defines the data types shared across the lead pipeline.
package model

import "time"

// Lead is a validated, scored contact record produced by the pipeline.
// Email is the unique key within a run (case-insensitive).
type Lead struct {
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Location  string `json:"location,omitempty"`
	Website   string `json:"website"`
	Address   string `json:"address,omitempty"`
	LeadScore int    `json:"lead_score"`
	Verified  bool   `json:"verified"`
	Source    string `json:"source"`
}

// ScrapeResult is the final output of one pipeline run.
type ScrapeResult struct {
	Leads        []Lead   `json:"leads"`
	TotalScraped int      `json:"total_scraped"`
	Errors       []string `json:"errors,omitempty"`
}

// CrawlOutcome is the result of a single fetch attempt. Failures surface
// here as data; the fetcher never returns a Go error.
type CrawlOutcome struct {
	URL     string `json:"url"`
	HTML    string `json:"html,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RawContact holds the transient extraction output for one page.
type RawContact struct {
	Emails       []string `json:"emails"`
	Phones       []string `json:"phones"`
	BusinessName string   `json:"business_name,omitempty"`
	Address      string   `json:"address,omitempty"`
}

// Batch is a persisted pipeline run.
type Batch struct {
	ID           string    `json:"id"`
	Prompt       string    `json:"prompt"`
	LeadCount    int       `json:"lead_count"`
	TotalScraped int       `json:"total_scraped"`
	CreatedAt    time.Time `json:"created_at"`
}
