// Package ingest loads the postings snapshot handed over by the extraction
// layer and prepares it for scoring: description HTML is stripped, whitespace
// is normalized and duplicate identities are collapsed. Input problems are
// usage errors, distinct from runtime failures.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-radar/internal/identity"
	"github.com/jonathan/job-radar/internal/types"
)

// ErrInvalidInput marks input problems the operator must fix: a missing or
// unparsable postings file, or postings with no identifiable fields.
var ErrInvalidInput = errors.New("invalid input")

const cleanWorkers = 4

var whitespaceRe = regexp.MustCompile(`[ \t]+`)

// Load reads the postings JSON at path and returns cleaned, deduplicated
// postings in input order. Postings sharing an identity keep the first
// occurrence, so a snapshot that lists the same job twice cannot double-count
// in the diff.
func Load(ctx context.Context, path string) ([]types.Posting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading postings file: %v", ErrInvalidInput, err)
	}

	var postings []types.Posting
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, fmt.Errorf("%w: parsing postings JSON: %v", ErrInvalidInput, err)
	}

	for i := range postings {
		if err := validate(&postings[i]); err != nil {
			return nil, fmt.Errorf("%w: posting %d: %v", ErrInvalidInput, i, err)
		}
	}

	if err := cleanAll(ctx, postings); err != nil {
		return nil, err
	}
	return dedupe(postings), nil
}

func validate(p *types.Posting) error {
	if p.Title == "" && p.ApplyURL == "" {
		return errors.New("no title or apply_url, posting is unidentifiable")
	}
	switch p.EnrichStatus {
	case types.EnrichEnriched, types.EnrichUnavailable, types.EnrichFailed, "":
		return nil
	default:
		return fmt.Errorf("unknown enrich_status %q", p.EnrichStatus)
	}
}

// cleanAll normalizes description text concurrently. Workers write only
// their own index, so the slice order never changes.
func cleanAll(ctx context.Context, postings []types.Posting) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cleanWorkers)

	for i := range postings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			postings[i].JDText = CleanText(postings[i].JDText)
			return nil
		})
	}
	return g.Wait()
}

func dedupe(postings []types.Posting) []types.Posting {
	seen := make(map[string]bool, len(postings))
	out := postings[:0]
	for _, p := range postings {
		key := identity.Key(&p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// CleanText strips HTML markup from description text and normalizes
// whitespace. Plain text passes through with whitespace normalization only.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	if looksLikeHTML(text) {
		if stripped, err := stripHTML(text); err == nil {
			text = stripped
		}
	}
	return normalizeWhitespace(text)
}

func looksLikeHTML(text string) bool {
	return strings.Contains(text, "</") || strings.Contains(text, "/>") ||
		strings.Contains(text, "<p>") || strings.Contains(text, "<br")
}

func stripHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	// Block-level tags become line breaks so words from adjacent
	// paragraphs do not run together.
	doc.Find("p, br, li, div, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return doc.Find("body").Text(), nil
}

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRe.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
