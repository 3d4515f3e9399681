package types

// DiffBucket classifies a posting's run-over-run transition.
type DiffBucket string

const (
	DiffNew     DiffBucket = "new"
	DiffChanged DiffBucket = "changed"
	DiffRemoved DiffBucket = "removed"
)

// DiffEntry records one posting's transition between consecutive runs.
type DiffEntry struct {
	Identity      string     `json:"identity"`
	Bucket        DiffBucket `json:"bucket"`
	Title         string     `json:"title,omitempty"`
	FinalScore    int        `json:"final_score,omitempty"`
	ChangedFields []string   `json:"changed_fields,omitempty"`
}

// DiffArtifact is the per-run diff output. Each list is ordered by score
// descending with identity as tiebreaker; SummaryHash covers all three lists
// for quick run-to-run comparison.
type DiffArtifact struct {
	Added       []DiffEntry `json:"added"`
	Changed     []DiffEntry `json:"changed"`
	Removed     []DiffEntry `json:"removed"`
	SummaryHash string      `json:"summary_hash"`
}

// Counts returns the bucket sizes for the run report.
func (d *DiffArtifact) Counts() DiffCounts {
	return DiffCounts{
		Added:   len(d.Added),
		Changed: len(d.Changed),
		Removed: len(d.Removed),
	}
}

// DiffCounts summarizes a diff for the run report.
type DiffCounts struct {
	Added   int `json:"added"`
	Changed int `json:"changed"`
	Removed int `json:"removed"`
}

// IdentityRecord is one entry of a run's persisted identity map.
type IdentityRecord struct {
	Identity    string `json:"identity"`
	Fingerprint string `json:"fingerprint"`
	Title       string `json:"title"`
	FinalScore  int    `json:"final_score"`
}

// IdentityMap is the per-run persisted mapping used by the diff engine on the
// next run. Records are kept sorted by identity for stable serialization.
type IdentityMap struct {
	RunID   string           `json:"run_id"`
	Profile string           `json:"profile"`
	Records []IdentityRecord `json:"records"`
}
