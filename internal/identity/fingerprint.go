package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jonathan/job-radar/internal/types"
)

// Fingerprint hashes the fields that count as a material change: title,
// location, team, normalized apply URL, and the score bucket. Unrelated
// fields (scrape timestamps, enrich reasons) never move the fingerprint, so
// an unchanged fingerprint means no diff entry.
func Fingerprint(p *types.Posting, scoreBucket int) string {
	normalizedURL := ""
	if p.ApplyURL != "" {
		if u, ok := normalizeURL(p.ApplyURL); ok {
			normalizedURL = u
		}
	}

	// Field-separator framing keeps adjacent fields from colliding.
	blob := strings.Join([]string{
		strings.TrimSpace(p.Title),
		strings.TrimSpace(p.Location),
		strings.TrimSpace(p.Team),
		normalizedURL,
		fmt.Sprintf("bucket:%d", scoreBucket),
	}, "\x1f")

	sum := sha256.Sum256([]byte(blob))
	return hex.EncodeToString(sum[:])
}
