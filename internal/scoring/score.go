package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/job-radar/internal/identity"
	"github.com/jonathan/job-radar/internal/types"
)

// ScoringModelVersion identifies the rule set and algorithm for the run
// report. Bump when defaultRules or the band groups change.
const (
	ScoringModelVersion = "3"
	AlgorithmID         = "weighted-rules-v3"
)

// Score applies the fixed rule list and the profile config to one posting.
// Given identical posting text and profile config the output is bit-for-bit
// identical across runs: no wall clock, randomness, or external state enters
// the scoring path.
func Score(p *types.Posting, profile *ProfileConfig) types.ScoredPosting {
	titleLower := strings.ToLower(p.Title)
	textLower := ""
	titleOnly := !p.HasText()
	if !titleOnly {
		textLower = strings.ToLower(p.JDText)
	}

	base := 0
	hits := make([]types.RuleHit, 0, 4)
	for _, rule := range defaultRules {
		count := matchCount(rule, titleLower, textLower, titleOnly)
		if count == 0 {
			continue
		}
		if count > maxRuleMatches {
			count = maxRuleMatches
		}
		delta := rule.Weight * count
		base += delta
		hits = append(hits, types.RuleHit{
			Rule:       rule.Pattern,
			Scope:      string(rule.Scope),
			MatchCount: count,
			Delta:      delta,
		})
	}

	band := ClassifyBand(p)
	delta := profile.BandWeight(band)

	blob := titleLower + " " + textLower
	for _, penalty := range profile.Penalties {
		if strings.Contains(blob, strings.ToLower(penalty.Pattern)) {
			delta += penalty.Weight
			hits = append(hits, types.RuleHit{
				Rule:       penalty.Pattern,
				Scope:      string(ScopeEither),
				MatchCount: 1,
				Delta:      penalty.Weight,
			})
		}
	}

	pre := int(math.Round(float64(base+delta) * profile.Multiplier(band)))
	final := clampScore(pre)

	scored := types.ScoredPosting{
		Posting:      *p,
		Identity:     identity.Key(p),
		RoleBand:     band,
		BaseScore:    base,
		ProfileDelta: delta,
		RuleHits:     hits,
		TitleOnly:    titleOnly,
		FinalScore:   final,
	}
	scored.Fingerprint = identity.Fingerprint(p, scored.ScoreBucket())
	return scored
}

// matchCount counts non-overlapping occurrences of the rule pattern in its
// scope. Text-scoped rules contribute zero in title-only mode; that is a
// degradation, not an error.
func matchCount(rule Rule, titleLower, textLower string, titleOnly bool) int {
	pattern := strings.ToLower(rule.Pattern)
	switch rule.Scope {
	case ScopeTitle:
		return strings.Count(titleLower, pattern)
	case ScopeText:
		if titleOnly {
			return 0
		}
		return strings.Count(textLower, pattern)
	default: // ScopeEither
		n := strings.Count(titleLower, pattern)
		if !titleOnly {
			n += strings.Count(textLower, pattern)
		}
		return n
	}
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// Rank orders scored postings by final score descending with identity
// ascending as the deterministic tiebreaker. Sorting is stable with respect
// to nothing else: two postings sharing a score and an identity are the same
// posting.
func Rank(scored []types.ScoredPosting) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		return scored[i].Identity < scored[j].Identity
	})
}
