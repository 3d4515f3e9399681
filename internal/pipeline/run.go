// Package pipeline provides the high-level orchestration for one scoring
// run: load -> score -> semantic -> diff -> report, executed sequentially
// under a state-root lock. Each stage reads the previous stage's output and
// writes its own artifact, so a failing stage cannot corrupt what earlier
// stages already wrote.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-radar/internal/artifacts"
	"github.com/jonathan/job-radar/internal/config"
	"github.com/jonathan/job-radar/internal/history"
	"github.com/jonathan/job-radar/internal/ingest"
	"github.com/jonathan/job-radar/internal/report"
	"github.com/jonathan/job-radar/internal/scoring"
	"github.com/jonathan/job-radar/internal/semantic"
	"github.com/jonathan/job-radar/internal/types"
)

// Artifact file names inside a run directory.
const (
	rankedFile         = "ranked.json"
	diffFile           = "diff.json"
	semanticSummary    = "semantic_summary.json"
	semanticScoresFile = "semantic_scores.json"
	reportFile         = "run_report.json"
)

// Result summarizes a completed (or short-circuited) run.
type Result struct {
	RunName string
	Status  types.RunStatus
	Report  types.RunReport
}

// Runner executes pipeline runs against one state root.
type Runner struct {
	cfg       *config.Config
	log       *zap.Logger
	remote    history.RemotePointer
	rationale string
	now       func() time.Time
	newRunID  func() string
}

// New builds a Runner. Remote history resolution is off until SetRemote.
func New(cfg *config.Config, log *zap.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// SetRemote enables the read-only remote fallback for previous-run
// resolution.
func (r *Runner) SetRemote(remote history.RemotePointer) {
	r.remote = remote
}

// SetInputRationale records why the caller selected this input file. The
// pipeline trusts the selection but pins the rationale in the run report.
func (r *Runner) SetInputRationale(rationale string) {
	r.rationale = rationale
}

// Run executes the full pipeline once. Input and profile problems wrap
// ingest.ErrInvalidInput or scoring.ErrInvalidProfile so the CLI can map
// them to the validation exit code; everything else is a runtime failure.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.cfg

	lock, err := AcquireLock(cfg.StateRoot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.log.Warn("releasing state lock", zap.Error(err))
		}
	}()

	store, err := history.NewStore(cfg.StateRoot)
	if err != nil {
		return nil, err
	}

	profile := scoring.DefaultProfile()
	if cfg.ProfilePath != "" {
		profile, err = scoring.LoadProfile(cfg.ProfilePath)
		if err != nil {
			return nil, err
		}
	}

	startedAt := r.now().UTC()
	runID := r.newRunID()
	runName := history.RunName(startedAt, runID)
	runDir, err := store.RunDir(runName)
	if err != nil {
		return nil, err
	}
	log := r.log.With(zap.String("run", runName), zap.String("profile", profile.Name))

	b := report.NewBuilder(runID, profile.Name, startedAt)
	b.SetScoringModel(types.ScoringModel{
		Version:      scoring.ScoringModelVersion,
		AlgorithmID:  scoring.AlgorithmID,
		ConfigSHA256: profile.ConfigSHA256(),
	})
	if r.rationale != "" {
		b.SetInputRationale(r.rationale)
	}
	reportPath := filepath.Join(runDir, reportFile)

	// fail flushes the partial report with the failed stage before returning.
	fail := func(stage string, err error) (*Result, error) {
		log.Error("stage failed", zap.String("stage", stage), zap.Error(err))
		b.Fail(stage, err)
		if werr := b.Write(reportPath, r.now()); werr != nil {
			log.Error("flushing partial run report", zap.Error(werr))
		}
		return nil, fmt.Errorf("%s stage: %w", stage, err)
	}

	// Stage: load.
	postings, err := ingest.Load(ctx, cfg.Input)
	if err != nil {
		return fail("load", err)
	}
	if err := b.AddInput("postings", cfg.Input); err != nil {
		return fail("load", err)
	}
	if cfg.ProfilePath != "" {
		if err := b.AddInput("profile", cfg.ProfilePath); err != nil {
			return fail("load", err)
		}
	}
	log.Info("loaded postings", zap.Int("count", len(postings)))

	prev := store.ResolvePrevious(ctx, profile.Name, r.remote)
	if prev != nil {
		b.SetPrevious(prev.RunName, prev.Source)
		log.Info("previous run resolved",
			zap.String("previous", prev.RunName), zap.String("source", prev.Source))
	}

	if reason, ok := r.shortCircuit(store, prev, b.Report().Inputs); ok {
		log.Info("short-circuiting", zap.String("reason", reason))
		b.ShortCircuit(reason)
		if err := b.Write(reportPath, r.now()); err != nil {
			return nil, err
		}
		return &Result{RunName: runName, Status: types.StatusShortCircuit, Report: b.Report()}, nil
	}

	// Stage: score.
	scored := make([]types.ScoredPosting, 0, len(postings))
	for i := range postings {
		p := postings[i]
		if cfg.TitleOnly {
			p.JDText = ""
			p.EnrichStatus = types.EnrichUnavailable
		}
		scored = append(scored, scoring.Score(&p, profile))
	}
	scoring.Rank(scored)

	// Stage: semantic. Never fatal; cache trouble degrades to a recorded
	// skip or a cache-less pass.
	semRes := r.applySemantic(ctx, scored, log)
	scored = semRes.Postings
	b.SetSemantic(semanticSnapshot(semRes.Summary))

	// Stage: diff.
	var prevMap *types.IdentityMap
	if prev != nil {
		prevMap = prev.Map
	}
	diff := history.Diff(scored, prevMap)
	counts := diff.Counts()
	b.SetDiffCounts(counts)
	log.Info("diff computed",
		zap.Int("new", counts.Added), zap.Int("changed", counts.Changed), zap.Int("removed", counts.Removed))

	// Stage: report. Artifacts first, then the report referencing them.
	semScores := semRes.Scores
	if semScores == nil {
		semScores = []types.SemanticScore{}
	}
	outputs := []struct {
		name string
		file string
		v    any
	}{
		{"ranked", rankedFile, scored},
		{"diff", diffFile, diff},
		{"semantic_summary", semanticSummary, semRes.Summary},
		{"semantic_scores", semanticScoresFile, semScores},
	}
	for _, out := range outputs {
		path := filepath.Join(runDir, out.file)
		if err := artifacts.WriteJSON(path, out.v); err != nil {
			return fail("report", err)
		}
		if err := b.AddOutput(out.name, path); err != nil {
			return fail("report", err)
		}
	}

	idMap := history.BuildIdentityMap(runID, profile.Name, scored)
	if err := store.SaveIdentityMap(runName, idMap); err != nil {
		return fail("report", err)
	}
	if err := b.AddOutput("identity_map", filepath.Join(runDir, "identity_map.json")); err != nil {
		return fail("report", err)
	}

	b.Succeed()
	if err := b.Write(reportPath, r.now()); err != nil {
		return fail("report", err)
	}

	// Pointers move only after the run fully succeeded.
	if err := store.MarkSuccess(profile.Name, runName); err != nil {
		return nil, err
	}
	if cfg.Retention > 0 {
		if err := store.Prune(cfg.Retention); err != nil {
			log.Warn("pruning run history", zap.Error(err))
		}
	}

	log.Info("run complete", zap.Int("postings", len(scored)))
	return &Result{RunName: runName, Status: types.StatusSuccess, Report: b.Report()}, nil
}

// shortCircuit reports whether the run can be skipped: the previous
// successful run saw a byte-identical postings input and its outputs are
// still on disk. Remote previous runs have no local outputs and never
// short-circuit.
func (r *Runner) shortCircuit(store *history.Store, prev *history.Previous, inputs []types.ArtifactRef) (string, bool) {
	if prev == nil || prev.Source == history.SourceRemotePointer {
		return "", false
	}

	var prevReport types.RunReport
	prevDir := store.RunPath(prev.RunName)
	if err := artifacts.ReadJSON(filepath.Join(prevDir, reportFile), &prevReport); err != nil {
		return "", false
	}
	if prevReport.Status != types.StatusSuccess {
		return "", false
	}

	currentHash := refHash(inputs, "postings")
	previousHash := refHash(prevReport.Inputs, "postings")
	if currentHash == "" || currentHash != previousHash {
		return "", false
	}
	if refHash(inputs, "profile") != refHash(prevReport.Inputs, "profile") {
		return "", false
	}
	for _, out := range prevReport.Outputs {
		if _, err := os.Stat(out.Path); err != nil {
			return "", false
		}
	}

	return fmt.Sprintf("input hash %s matches previous successful run %s and its outputs are intact",
		currentHash[:12], prev.RunName), true
}

func refHash(refs []types.ArtifactRef, name string) string {
	for _, ref := range refs {
		if ref.Name == name {
			return ref.SHA256
		}
	}
	return ""
}

func (r *Runner) applySemantic(ctx context.Context, scored []types.ScoredPosting, log *zap.Logger) semantic.Result {
	policy := r.cfg.Semantic

	candidateProfile := ""
	if policy.Enabled && r.cfg.CandidateProfilePath != "" {
		data, err := os.ReadFile(r.cfg.CandidateProfilePath)
		if err != nil {
			log.Warn("reading candidate profile", zap.Error(err))
			return semantic.Result{
				Postings: scored,
				Summary: types.SemanticSummary{
					Policy:               policy,
					NormalizationVersion: semantic.NormalizationVersion,
					SkippedReason:        fmt.Sprintf("candidate profile unreadable: %v", err),
				},
			}
		}
		candidateProfile = string(data)
	}

	var cache *semantic.Cache
	if policy.Enabled {
		c, err := semantic.OpenCache(filepath.Join(r.cfg.StateRoot, "cache"))
		if err != nil {
			log.Warn("opening embedding cache, proceeding uncached", zap.Error(err))
		} else {
			cache = c
			defer func() {
				if err := cache.Close(); err != nil {
					log.Warn("closing embedding cache", zap.Error(err))
				}
			}()
		}
	}

	return semantic.Apply(ctx, scored, candidateProfile, policy, cache, log)
}

func semanticSnapshot(s types.SemanticSummary) types.SemanticSnapshot {
	return types.SemanticSnapshot{
		Enabled:       s.Policy.Enabled,
		Mode:          string(s.Policy.Mode),
		ModelID:       s.Policy.ModelID,
		Threshold:     s.Policy.MinSimilarity,
		MaxBoost:      s.Policy.MaxBoost,
		SkippedReason: s.SkippedReason,
	}
}
