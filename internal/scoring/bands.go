// Package scoring applies a declarative, profile-parameterized rule set to
// postings, producing a deterministic integer score and an explanation trail.
package scoring

import (
	"strings"

	"github.com/jonathan/job-radar/internal/types"
)

// bandGroup pairs a role band with the substrings that classify into it.
type bandGroup struct {
	band     types.RoleBand
	keywords []string
}

// bandGroups is evaluated in order; the first group with any matching keyword
// wins. This is a first-match policy, not best-match: a posting matching both
// CORE and ADJACENT-SOLUTIONS keyword sets is always CORE. Golden-output
// tests depend on this exact precedence.
var bandGroups = []bandGroup{
	{types.BandCore, []string{
		"customer success manager",
		"customer success engineer",
		"customer success architect",
		"head of customer success",
		"director of customer success",
		"csm",
	}},
	{types.BandAdjacent, []string{
		"technical account manager",
		"implementation specialist",
		"implementation manager",
		"onboarding specialist",
		"customer experience",
		"support engineer",
		"account manager",
	}},
	{types.BandAdjacentSolutions, []string{
		"solutions architect",
		"solutions engineer",
		"solutions consultant",
		"sales engineer",
		"pre-sales",
		"presales",
	}},
}

// ClassifyBand classifies a posting into a role band by testing the ordered
// substring groups against a combined lowercased blob of title, description,
// team and department. Postings matching no group fall through to OTHER.
func ClassifyBand(p *types.Posting) types.RoleBand {
	blob := strings.ToLower(strings.Join([]string{
		p.Title, p.JDText, p.Team, p.Department,
	}, " "))

	for _, group := range bandGroups {
		for _, kw := range group.keywords {
			if strings.Contains(blob, kw) {
				return group.band
			}
		}
	}
	return types.BandOther
}
