// Package report builds the run's provenance record and replays it: every
// input and output artifact is pinned by path, mtime and sha256, and can be
// re-verified later without recomputing any business logic.
package report

import (
	"fmt"
	"os"
	"time"

	"github.com/jonathan/job-radar/internal/artifacts"
	"github.com/jonathan/job-radar/internal/types"
)

// Builder accumulates a RunReport through the run and writes it exactly
// once. On fatal failure the partially built report is still flushed, with
// FailedStage set.
type Builder struct {
	report  types.RunReport
	written bool
}

// NewBuilder starts a report for one run.
func NewBuilder(runID, profile string, startedAt time.Time) *Builder {
	return &Builder{
		report: types.RunReport{
			SchemaVersion: types.ReportSchemaVersion,
			RunID:         runID,
			Profile:       profile,
			Status:        types.StatusStarted,
			StartedAt:     startedAt.UTC().Format(time.RFC3339),
			Inputs:        []types.ArtifactRef{},
			Outputs:       []types.ArtifactRef{},
		},
	}
}

// AddInput records an input artifact by path, mtime and content hash.
func (b *Builder) AddInput(name, path string) error {
	ref, err := makeRef(name, path)
	if err != nil {
		return err
	}
	b.report.Inputs = append(b.report.Inputs, ref)
	return nil
}

// AddOutput records an output artifact by path, mtime and content hash.
func (b *Builder) AddOutput(name, path string) error {
	ref, err := makeRef(name, path)
	if err != nil {
		return err
	}
	b.report.Outputs = append(b.report.Outputs, ref)
	return nil
}

func makeRef(name, path string) (types.ArtifactRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.ArtifactRef{}, fmt.Errorf("recording artifact %s: %w", name, err)
	}
	sum, err := artifacts.SHA256File(path)
	if err != nil {
		return types.ArtifactRef{}, fmt.Errorf("hashing artifact %s: %w", name, err)
	}
	return types.ArtifactRef{
		Name:   name,
		Path:   path,
		MTime:  info.ModTime().UTC().Format(time.RFC3339),
		SHA256: sum,
	}, nil
}

// SetInputRationale records why the orchestration layer selected this input.
func (b *Builder) SetInputRationale(rationale string) {
	b.report.InputRationale = rationale
}

// SetScoringModel pins the scoring configuration.
func (b *Builder) SetScoringModel(m types.ScoringModel) {
	b.report.ScoringModel = m
}

// SetSemantic records the semantic policy snapshot.
func (b *Builder) SetSemantic(s types.SemanticSnapshot) {
	b.report.Semantic = s
}

// SetDiffCounts records the diff bucket sizes.
func (b *Builder) SetDiffCounts(c types.DiffCounts) {
	b.report.DiffCounts = &c
}

// SetPrevious records which previous run was compared against and how it was
// selected.
func (b *Builder) SetPrevious(runName, source string) {
	b.report.PreviousRun = runName
	b.report.PreviousSource = source
}

// ShortCircuit marks the run as short-circuited with its justification. The
// skip decision is recorded, never silently assumed.
func (b *Builder) ShortCircuit(reason string) {
	b.report.Status = types.StatusShortCircuit
	b.report.ShortCircuit = reason
}

// Fail marks the run as failed in the named stage. The failed stage is
// always set on error status.
func (b *Builder) Fail(stage string, err error) {
	b.report.Status = types.StatusError
	b.report.FailedStage = stage
	if err != nil {
		b.report.Error = err.Error()
	}
}

// Succeed marks the run as successful unless a terminal status was already
// set (short-circuit stays short-circuit).
func (b *Builder) Succeed() {
	if b.report.Status == types.StatusStarted {
		b.report.Status = types.StatusSuccess
	}
}

// Report returns a copy of the report built so far.
func (b *Builder) Report() types.RunReport {
	return b.report
}

// Write finalizes the report and writes it to path. It is write-once: a
// second call is a programming error, reported rather than silently
// overwriting the finalized record.
func (b *Builder) Write(path string, finishedAt time.Time) error {
	if b.written {
		return fmt.Errorf("run report already written")
	}
	b.report.FinishedAt = finishedAt.UTC().Format(time.RFC3339)
	if err := artifacts.WriteJSON(path, &b.report); err != nil {
		return err
	}
	b.written = true
	return nil
}
