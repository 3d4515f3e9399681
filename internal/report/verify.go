package report

import (
	"os"

	"github.com/jonathan/job-radar/internal/artifacts"
	"github.com/jonathan/job-radar/internal/types"
)

// Mismatch is one verification failure for a referenced artifact.
type Mismatch struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Reason string `json:"reason"` // "missing" or "hash_mismatch"
	Want   string `json:"want,omitempty"`
	Got    string `json:"got,omitempty"`
}

// VerifyResult is the outcome of replaying a run report.
type VerifyResult struct {
	OK         bool       `json:"ok"`
	Checked    int        `json:"checked"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// Verify re-hashes every artifact referenced by the run report at path and
// compares against the recorded hashes. No business logic is recomputed and
// nothing is auto-repaired. Strict mode fails closed: a missing referenced
// artifact is a verification failure; in non-strict mode missing files are
// skipped (artifacts may have been pruned) while hash mismatches always
// fail. Verification is read-only and idempotent.
func Verify(reportPath string, strict bool) (*VerifyResult, error) {
	var rpt types.RunReport
	if err := artifacts.ReadJSON(reportPath, &rpt); err != nil {
		return nil, err
	}

	result := &VerifyResult{OK: true}
	refs := append(append([]types.ArtifactRef{}, rpt.Inputs...), rpt.Outputs...)
	for _, ref := range refs {
		if _, err := os.Stat(ref.Path); err != nil {
			if strict {
				result.Mismatches = append(result.Mismatches, Mismatch{
					Name:   ref.Name,
					Path:   ref.Path,
					Reason: "missing",
					Want:   ref.SHA256,
				})
			}
			continue
		}

		sum, err := artifacts.SHA256File(ref.Path)
		if err != nil {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Name:   ref.Name,
				Path:   ref.Path,
				Reason: "missing",
				Want:   ref.SHA256,
			})
			continue
		}
		result.Checked++
		if sum != ref.SHA256 {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Name:   ref.Name,
				Path:   ref.Path,
				Reason: "hash_mismatch",
				Want:   ref.SHA256,
				Got:    sum,
			})
		}
	}

	result.OK = len(result.Mismatches) == 0
	return result, nil
}
