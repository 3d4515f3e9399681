package scoring

import (
	"strings"
	"testing"

	"github.com/jonathan/job-radar/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csProfile(t *testing.T) *ProfileConfig {
	t.Helper()
	cfg, err := ParseProfile([]byte(`{
		"name": "cs",
		"band_multipliers": {
			"CORE": 1.5,
			"ADJACENT": 1.2,
			"ADJACENT-SOLUTIONS": 1.2,
			"OTHER": 0.6
		},
		"band_weights": {
			"CORE": 10,
			"ADJACENT-SOLUTIONS": 5
		},
		"penalties": [
			{"pattern": "phd required", "weight": -20, "reason": "research-track signal"},
			{"pattern": "novel algorithm research", "weight": -15, "reason": "deep-systems-only signal"}
		]
	}`))
	require.NoError(t, err)
	return cfg
}

func TestScore_SolutionsBeatsResearchPosting(t *testing.T) {
	profile := csProfile(t)

	solutions := &types.Posting{
		Title:        "Solutions Architect",
		Location:     "Remote - US",
		JDText:       "Drive customer success through deployment and adoption programs.",
		EnrichStatus: types.EnrichEnriched,
	}
	research := &types.Posting{
		Title:        "Solutions Architect",
		Location:     "Remote - US",
		JDText:       "PhD required, novel algorithm research.",
		EnrichStatus: types.EnrichEnriched,
	}

	a := Score(solutions, profile)
	b := Score(research, profile)

	assert.Equal(t, types.BandAdjacentSolutions, a.RoleBand)
	assert.Greater(t, a.FinalScore, b.FinalScore)
}

func TestScore_MatchCountCapped(t *testing.T) {
	profile := csProfile(t)
	p := &types.Posting{
		Title:        "Customer Success Manager",
		JDText:       strings.Repeat("onboarding ", 40),
		EnrichStatus: types.EnrichEnriched,
	}

	scored := Score(p, profile)

	for _, hit := range scored.RuleHits {
		assert.LessOrEqual(t, hit.MatchCount, maxRuleMatches, "rule %s", hit.Rule)
	}
}

func TestScore_TitleOnlyMode(t *testing.T) {
	profile := csProfile(t)
	p := &types.Posting{
		Title:        "Solutions Architect",
		JDText:       "", // unavailable
		EnrichStatus: types.EnrichUnavailable,
	}

	scored := Score(p, profile)

	assert.True(t, scored.TitleOnly)
	for _, hit := range scored.RuleHits {
		assert.NotEqual(t, string(ScopeText), hit.Scope,
			"text-scoped rules must contribute zero in title-only mode")
	}
}

func TestScore_TitleOnlyIsNotAnError(t *testing.T) {
	profile := csProfile(t)
	p := &types.Posting{Title: "Solutions Engineer", EnrichStatus: types.EnrichFailed}

	scored := Score(p, profile)

	assert.Positive(t, scored.FinalScore)
}

func TestScore_Bounded(t *testing.T) {
	profile := csProfile(t)

	postings := []*types.Posting{
		{Title: strings.Repeat("customer success ", 30), JDText: strings.Repeat("customer success onboarding deployment ", 50), EnrichStatus: types.EnrichEnriched},
		{Title: "Intern Intern Intern", JDText: "phd required novel algorithm research staffing agency", EnrichStatus: types.EnrichEnriched},
		{},
	}

	for _, p := range postings {
		scored := Score(p, profile)
		assert.GreaterOrEqual(t, scored.FinalScore, 0)
		assert.LessOrEqual(t, scored.FinalScore, 100)
	}
}

func TestScore_Deterministic(t *testing.T) {
	profile := csProfile(t)
	p := &types.Posting{
		Title:        "Technical Account Manager",
		Location:     "Berlin",
		JDText:       "Enterprise SaaS onboarding, stakeholder management, renewals.",
		EnrichStatus: types.EnrichEnriched,
	}

	first := Score(p, profile)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(p, profile))
	}
}

func TestScore_PenaltyRecordedInExplanation(t *testing.T) {
	profile := csProfile(t)
	p := &types.Posting{
		Title:        "Solutions Architect",
		JDText:       "PhD required for this role.",
		EnrichStatus: types.EnrichEnriched,
	}

	scored := Score(p, profile)

	found := false
	for _, hit := range scored.RuleHits {
		if hit.Rule == "phd required" {
			found = true
			assert.Equal(t, -20, hit.Delta)
		}
	}
	assert.True(t, found, "penalty hit missing from explanation trail")
}

func TestRank_ScoreDescIdentityAsc(t *testing.T) {
	scored := []types.ScoredPosting{
		{Identity: "b", FinalScore: 50},
		{Identity: "a", FinalScore: 50},
		{Identity: "c", FinalScore: 80},
	}

	Rank(scored)

	assert.Equal(t, "c", scored[0].Identity)
	assert.Equal(t, "a", scored[1].Identity)
	assert.Equal(t, "b", scored[2].Identity)
}
