// Package identity derives stable keys and content fingerprints for postings
// so they can be matched and compared across runs.
package identity

import (
	"net/url"
	"sort"
	"strings"

	"github.com/jonathan/job-radar/internal/types"
)

// trackingPrefixes are query parameter prefixes stripped during URL
// normalization. Exact-name parameters live in trackingParams.
var trackingPrefixes = []string{"utm_", "gh_", "lever_"}

var trackingParams = map[string]bool{
	"ref":    true,
	"source": true,
}

// Key returns the stable identity key for a posting. It is a pure, total
// function: two postings with the same key in consecutive runs are the same
// logical job regardless of incidental text changes.
//
// With an apply URL present the key is the normalized URL: lowercased
// scheme and host, tracking parameters and fragment stripped, remaining
// query parameters sorted, trailing slash removed. Without a URL the key
// falls back to "title|location" (trimmed, case preserved). An empty
// title/location pair degrades to the empty key rather than an error.
func Key(p *types.Posting) string {
	if p.ApplyURL != "" {
		if key, ok := normalizeURL(p.ApplyURL); ok {
			return key
		}
	}
	return strings.TrimSpace(p.Title) + "|" + strings.TrimSpace(p.Location)
}

// normalizeURL returns the canonical form of an apply URL. Returns ok=false
// for unparseable URLs so the caller can use the title|location fallback.
func normalizeURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	kept := url.Values{}
	for name, vals := range q {
		if isTrackingParam(name) {
			continue
		}
		kept[name] = vals
	}
	u.RawQuery = encodeSorted(kept)

	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String(), true
}

func isTrackingParam(name string) bool {
	lower := strings.ToLower(name)
	if trackingParams[lower] {
		return true
	}
	for _, prefix := range trackingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// encodeSorted encodes query values with keys in sorted order so that
// parameter reordering never changes the identity key.
func encodeSorted(v url.Values) string {
	if len(v) == 0 {
		return ""
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		vals := append([]string(nil), v[k]...)
		sort.Strings(vals)
		for _, val := range vals {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(val))
		}
	}
	return sb.String()
}
