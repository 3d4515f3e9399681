package types

// SemanticMode selects how semantic similarity affects the ranked output.
type SemanticMode string

const (
	// ModeSidecar records similarity evidence only; scores are never mutated.
	ModeSidecar SemanticMode = "sidecar"
	// ModeBoost applies a capped, floor-gated boost to the score.
	ModeBoost SemanticMode = "boost"
)

// SemanticPolicy bounds the semantic safety net for one run.
type SemanticPolicy struct {
	Enabled       bool         `json:"enabled" mapstructure:"enabled"`
	Mode          SemanticMode `json:"mode" mapstructure:"mode" validate:"omitempty,oneof=sidecar boost"`
	ModelID       string       `json:"model_id" mapstructure:"model-id"`
	MaxJobs       int          `json:"max_jobs" mapstructure:"max-jobs" validate:"gte=0"`
	TopK          int          `json:"top_k" mapstructure:"top-k" validate:"gte=0"`
	MaxBoost      int          `json:"max_boost" mapstructure:"max-boost" validate:"gte=0,lte=100"`
	MinSimilarity float64      `json:"min_similarity" mapstructure:"min-similarity" validate:"gte=0,lte=1"`
}

// SemanticScore is the per-posting evidence record. No raw description text
// is ever persisted here (privacy boundary).
type SemanticScore struct {
	JobID      string   `json:"job_id"`
	Identity   string   `json:"identity"`
	BaseScore  int      `json:"base_score"`
	Similarity *float64 `json:"similarity,omitempty"`
	Boost      int      `json:"semantic_boost"`
	FinalScore int      `json:"final_score"`
	Reasons    []string `json:"reasons,omitempty"`
}

// SemanticSummary aggregates one run of the semantic stage.
type SemanticSummary struct {
	Policy               SemanticPolicy `json:"policy"`
	NormalizationVersion string         `json:"normalization_version"`
	ProfileHash          string         `json:"profile_hash,omitempty"`
	Considered           int            `json:"considered"`
	Embedded             int            `json:"embedded"`
	CacheHits            int            `json:"cache_hits"`
	Boosted              int            `json:"boosted"`
	SkippedReason        string         `json:"skipped_reason,omitempty"`
}
