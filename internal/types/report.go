package types

// RunStatus is the terminal state of a pipeline run.
type RunStatus string

const (
	StatusStarted      RunStatus = "started"
	StatusSuccess      RunStatus = "success"
	StatusShortCircuit RunStatus = "short_circuit"
	StatusError        RunStatus = "error"
)

// ReportSchemaVersion is bumped whenever the RunReport JSON shape changes.
const ReportSchemaVersion = 2

// ArtifactRef records one input or output file by path, modification time and
// content hash. The replay verifier re-hashes the path and compares.
type ArtifactRef struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	MTime  string `json:"mtime"`
	SHA256 string `json:"sha256"`
}

// ScoringModel pins the scoring configuration used for a run.
type ScoringModel struct {
	Version      string `json:"version"`
	AlgorithmID  string `json:"algorithm_id"`
	ConfigSHA256 string `json:"config_sha256"`
}

// SemanticSnapshot records the semantic policy in effect for a run.
type SemanticSnapshot struct {
	Enabled       bool    `json:"enabled"`
	Mode          string  `json:"mode,omitempty"`
	ModelID       string  `json:"model_id,omitempty"`
	Threshold     float64 `json:"threshold,omitempty"`
	MaxBoost      int     `json:"max_boost,omitempty"`
	SkippedReason string  `json:"skipped_reason,omitempty"`
}

// RunReport is the root provenance object for one execution. It is created at
// run start, appended to through the run, and written exactly once at the end
// (or partially, with FailedStage set, on fatal failure).
type RunReport struct {
	SchemaVersion  int              `json:"schema_version"`
	RunID          string           `json:"run_id"`
	Profile        string           `json:"profile"`
	Status         RunStatus        `json:"status"`
	StartedAt      string           `json:"started_at"`
	FinishedAt     string           `json:"finished_at,omitempty"`
	Inputs         []ArtifactRef    `json:"inputs"`
	Outputs        []ArtifactRef    `json:"outputs"`
	InputRationale string           `json:"input_rationale,omitempty"`
	ScoringModel   ScoringModel     `json:"scoring_model"`
	Semantic       SemanticSnapshot `json:"semantic"`
	DiffCounts     *DiffCounts      `json:"diff_counts,omitempty"`
	PreviousRun    string           `json:"previous_run,omitempty"`
	PreviousSource string           `json:"previous_source,omitempty"`
	ShortCircuit   string           `json:"short_circuit_reason,omitempty"`
	FailedStage    string           `json:"failed_stage,omitempty"`
	Error          string           `json:"error,omitempty"`
}
