package history

import (
	"testing"

	"github.com/jonathan/job-radar/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(identity, fingerprint, title string, score int) types.ScoredPosting {
	return types.ScoredPosting{
		Posting:     types.Posting{Title: title},
		Identity:    identity,
		Fingerprint: fingerprint,
		FinalScore:  score,
	}
}

func prevMap(records ...types.IdentityRecord) *types.IdentityMap {
	return &types.IdentityMap{RunID: "prev", Records: records}
}

func TestDiff_FirstRunEverythingIsNew(t *testing.T) {
	current := []types.ScoredPosting{
		scored("a", "f1", "A", 80),
		scored("b", "f2", "B", 60),
	}

	d := Diff(current, nil)

	assert.Len(t, d.Added, 2)
	assert.Empty(t, d.Changed)
	assert.Empty(t, d.Removed)
}

func TestDiff_Completeness(t *testing.T) {
	previous := prevMap(
		types.IdentityRecord{Identity: "kept", Fingerprint: "same", Title: "Kept", FinalScore: 50},
		types.IdentityRecord{Identity: "edited", Fingerprint: "old", Title: "Edited", FinalScore: 40},
		types.IdentityRecord{Identity: "gone", Fingerprint: "x", Title: "Gone", FinalScore: 30},
	)
	current := []types.ScoredPosting{
		scored("kept", "same", "Kept", 50),
		scored("edited", "new", "Edited v2", 45),
		scored("fresh", "f", "Fresh", 70),
	}

	d := Diff(current, previous)

	require.Len(t, d.Added, 1)
	assert.Equal(t, "fresh", d.Added[0].Identity)
	require.Len(t, d.Changed, 1)
	assert.Equal(t, "edited", d.Changed[0].Identity)
	require.Len(t, d.Removed, 1)
	assert.Equal(t, "gone", d.Removed[0].Identity)
}

func TestDiff_NoIdentityInTwoBuckets(t *testing.T) {
	previous := prevMap(
		types.IdentityRecord{Identity: "a", Fingerprint: "old", FinalScore: 10},
	)
	current := []types.ScoredPosting{scored("a", "new", "A", 20)}

	d := Diff(current, previous)

	total := len(d.Added) + len(d.Changed) + len(d.Removed)
	assert.Equal(t, 1, total)
}

func TestDiff_UnchangedFingerprintOmitted(t *testing.T) {
	previous := prevMap(
		types.IdentityRecord{Identity: "a", Fingerprint: "same", Title: "A", FinalScore: 50},
	)
	current := []types.ScoredPosting{scored("a", "same", "A", 50)}

	d := Diff(current, previous)

	assert.Empty(t, d.Added)
	assert.Empty(t, d.Changed)
	assert.Empty(t, d.Removed)
}

func TestDiff_OrderingScoreDescIdentityAsc(t *testing.T) {
	current := []types.ScoredPosting{
		scored("b", "f", "B", 50),
		scored("a", "f", "A", 50),
		scored("c", "f", "C", 90),
	}

	d := Diff(current, nil)

	require.Len(t, d.Added, 3)
	assert.Equal(t, "c", d.Added[0].Identity)
	assert.Equal(t, "a", d.Added[1].Identity)
	assert.Equal(t, "b", d.Added[2].Identity)
}

func TestDiff_ChangedFieldsNamed(t *testing.T) {
	previous := prevMap(
		types.IdentityRecord{Identity: "a", Fingerprint: "old", Title: "Old Title", FinalScore: 50},
	)
	current := []types.ScoredPosting{scored("a", "new", "New Title", 50)}

	d := Diff(current, previous)

	require.Len(t, d.Changed, 1)
	assert.Contains(t, d.Changed[0].ChangedFields, "title")
}

func TestDiff_SummaryHashStable(t *testing.T) {
	current := []types.ScoredPosting{scored("a", "f", "A", 50)}

	first := Diff(current, nil)
	second := Diff(current, nil)

	assert.NotEmpty(t, first.SummaryHash)
	assert.Equal(t, first.SummaryHash, second.SummaryHash)
}

func TestDiff_SummaryHashChangesWithContent(t *testing.T) {
	a := Diff([]types.ScoredPosting{scored("a", "f", "A", 50)}, nil)
	b := Diff([]types.ScoredPosting{scored("b", "f", "B", 50)}, nil)

	assert.NotEqual(t, a.SummaryHash, b.SummaryHash)
}

func TestBuildIdentityMap_SortedByIdentity(t *testing.T) {
	m := BuildIdentityMap("run-1", "cs", []types.ScoredPosting{
		scored("z", "f1", "Z", 90),
		scored("a", "f2", "A", 10),
	})

	require.Len(t, m.Records, 2)
	assert.Equal(t, "a", m.Records[0].Identity)
	assert.Equal(t, "z", m.Records[1].Identity)
}
