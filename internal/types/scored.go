package types

// RoleBand is the coarse classification bucket driving the scoring multiplier.
type RoleBand string

const (
	BandCore              RoleBand = "CORE"
	BandAdjacent          RoleBand = "ADJACENT"
	BandAdjacentSolutions RoleBand = "ADJACENT-SOLUTIONS"
	BandOther             RoleBand = "OTHER"
)

// RuleHit records one scoring rule that matched a posting, in rule order.
type RuleHit struct {
	Rule       string `json:"rule"`
	Scope      string `json:"scope"`
	MatchCount int    `json:"match_count"`
	Delta      int    `json:"delta"`
}

// ScoredPosting is a Posting decorated with the scoring engine's output.
// Created fresh each run; only ever written to the run's output artifact.
type ScoredPosting struct {
	Posting       Posting   `json:"posting"`
	Identity      string    `json:"identity"`
	Fingerprint   string    `json:"fingerprint"`
	RoleBand      RoleBand  `json:"role_band"`
	BaseScore     int       `json:"base_score"`
	ProfileDelta  int       `json:"profile_delta"`
	RuleHits      []RuleHit `json:"rule_hits"`
	TitleOnly     bool      `json:"title_only,omitempty"`
	SemanticBoost int       `json:"semantic_boost"`
	FinalScore    int       `json:"final_score"`
}

// ScoreBucket returns the decile bucket of the final score. The bucket, not
// the raw score, feeds the content fingerprint so that one-point jitter does
// not register as a material change.
func (s *ScoredPosting) ScoreBucket() int {
	return s.FinalScore / 10
}
