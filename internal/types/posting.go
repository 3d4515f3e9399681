// Package types provides type definitions for structured data used throughout the job-radar system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// EnrichStatus describes the outcome of the external extraction layer for one posting.
type EnrichStatus string

const (
	// EnrichEnriched means full description text was extracted.
	EnrichEnriched EnrichStatus = "enriched"
	// EnrichUnavailable means the source returned no usable description text.
	EnrichUnavailable EnrichStatus = "unavailable"
	// EnrichFailed means extraction was attempted and failed.
	EnrichFailed EnrichStatus = "failed"
)

// Posting represents one external job listing at a point in time, as handed
// over by the extraction layer. The core never mutates a Posting; each stage
// produces a new decorated record.
type Posting struct {
	JobID        string       `json:"job_id"`
	Title        string       `json:"title"`
	Location     string       `json:"location"`
	Team         string       `json:"team,omitempty"`
	Department   string       `json:"department,omitempty"`
	ApplyURL     string       `json:"apply_url,omitempty"`
	JDText       string       `json:"jd_text,omitempty"`
	EnrichStatus EnrichStatus `json:"enrich_status"`
	EnrichReason string       `json:"enrich_reason,omitempty"`
	ScrapedAt    string       `json:"scraped_at,omitempty"` // informational only, never part of identity or fingerprint
}

// HasText reports whether the posting carries usable description text for
// full-text scoring. Postings without text are scored in title-only mode.
func (p *Posting) HasText() bool {
	return p.EnrichStatus == EnrichEnriched && p.JDText != ""
}
