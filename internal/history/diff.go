package history

import (
	"encoding/json"
	"sort"

	"github.com/jonathan/job-radar/internal/artifacts"
	"github.com/jonathan/job-radar/internal/types"
)

// Diff compares the current run's scored postings against the previous run's
// identity map. Every identity lands in at most one bucket: absent before is
// new, present with a differing fingerprint is changed, present now-absent is
// removed; unchanged fingerprints produce no entry. previous may be nil
// (first run), in which case every posting is new.
//
// Current postings are assumed identity-unique (the ingest stage
// de-duplicates).
func Diff(current []types.ScoredPosting, previous *types.IdentityMap) types.DiffArtifact {
	prev := map[string]types.IdentityRecord{}
	if previous != nil {
		for _, rec := range previous.Records {
			prev[rec.Identity] = rec
		}
	}

	var artifact types.DiffArtifact
	seen := make(map[string]bool, len(current))
	for _, sp := range current {
		seen[sp.Identity] = true
		old, ok := prev[sp.Identity]
		if !ok {
			artifact.Added = append(artifact.Added, types.DiffEntry{
				Identity:   sp.Identity,
				Bucket:     types.DiffNew,
				Title:      sp.Posting.Title,
				FinalScore: sp.FinalScore,
			})
			continue
		}
		if old.Fingerprint != sp.Fingerprint {
			artifact.Changed = append(artifact.Changed, types.DiffEntry{
				Identity:      sp.Identity,
				Bucket:        types.DiffChanged,
				Title:         sp.Posting.Title,
				FinalScore:    sp.FinalScore,
				ChangedFields: changedFields(old, &sp),
			})
		}
	}

	for _, rec := range prev {
		if !seen[rec.Identity] {
			artifact.Removed = append(artifact.Removed, types.DiffEntry{
				Identity:   rec.Identity,
				Bucket:     types.DiffRemoved,
				Title:      rec.Title,
				FinalScore: rec.FinalScore,
			})
		}
	}

	sortEntries(artifact.Added)
	sortEntries(artifact.Changed)
	sortEntries(artifact.Removed)
	artifact.SummaryHash = summaryHash(&artifact)
	return artifact
}

// changedFields names what moved the fingerprint where the identity map
// carries enough to tell; anything else is reported as "content".
func changedFields(old types.IdentityRecord, sp *types.ScoredPosting) []string {
	var fields []string
	if old.Title != sp.Posting.Title {
		fields = append(fields, "title")
	}
	if old.FinalScore/10 != sp.ScoreBucket() {
		fields = append(fields, "score_bucket")
	}
	if len(fields) == 0 {
		fields = append(fields, "content")
	}
	return fields
}

// sortEntries orders a bucket by score descending, identity ascending.
func sortEntries(entries []types.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FinalScore != entries[j].FinalScore {
			return entries[i].FinalScore > entries[j].FinalScore
		}
		return entries[i].Identity < entries[j].Identity
	})
}

// summaryHash covers the three ordered lists for quick run-to-run
// comparison.
func summaryHash(d *types.DiffArtifact) string {
	lists := struct {
		Added   []types.DiffEntry `json:"added"`
		Changed []types.DiffEntry `json:"changed"`
		Removed []types.DiffEntry `json:"removed"`
	}{d.Added, d.Changed, d.Removed}

	data, err := json.Marshal(lists)
	if err != nil {
		// Marshaling plain structs cannot fail; keep the signature simple.
		return ""
	}
	return artifacts.SHA256Bytes(data)
}

// BuildIdentityMap converts a run's scored postings into the identity map
// persisted for the next run's diff.
func BuildIdentityMap(runID, profile string, scored []types.ScoredPosting) *types.IdentityMap {
	m := &types.IdentityMap{RunID: runID, Profile: profile}
	for _, sp := range scored {
		m.Records = append(m.Records, types.IdentityRecord{
			Identity:    sp.Identity,
			Fingerprint: sp.Fingerprint,
			Title:       sp.Posting.Title,
			FinalScore:  sp.FinalScore,
		})
	}
	sort.Slice(m.Records, func(i, j int) bool {
		return m.Records[i].Identity < m.Records[j].Identity
	})
	return m
}
