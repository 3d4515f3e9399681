package semantic

import (
	"context"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-radar/internal/artifacts"
	"github.com/jonathan/job-radar/internal/identity"
	"github.com/jonathan/job-radar/internal/scoring"
	"github.com/jonathan/job-radar/internal/types"
)

// embedWorkers bounds the concurrent embedding + cache-lookup workers.
const embedWorkers = 4

// Result bundles the semantic stage's outputs: the (possibly rescored)
// ranked postings plus the summary and per-posting evidence artifacts.
type Result struct {
	Postings []types.ScoredPosting
	Summary  types.SemanticSummary
	Scores   []types.SemanticScore
}

// Apply runs the semantic safety net over the ranked postings. It never
// fails the run: disabled policies, unsupported model ids, and an absent
// cache all degrade to a recorded skip or a cache-less pass.
//
// In sidecar mode the returned postings are the input, untouched, so the
// ranked artifact stays byte-identical to a run without semantic. In boost
// mode at most top_k postings (bounded by max_jobs) receive a capped,
// floor-gated boost and the set is re-ranked deterministically.
func Apply(ctx context.Context, ranked []types.ScoredPosting, candidateProfile string, policy types.SemanticPolicy, cache *Cache, log *zap.Logger) Result {
	res := Result{
		Postings: ranked,
		Summary: types.SemanticSummary{
			Policy:               policy,
			NormalizationVersion: NormalizationVersion,
		},
	}

	if !policy.Enabled {
		res.Summary.SkippedReason = "semantic disabled by policy"
		return res
	}

	embedder, err := NewEmbedder(policy.ModelID)
	if err != nil {
		res.Summary.SkippedReason = err.Error()
		log.Warn("semantic stage skipped", zap.Error(err))
		return res
	}

	normProfile := NormalizeText(candidateProfile)
	if normProfile == "" {
		res.Summary.SkippedReason = "empty candidate profile"
		return res
	}
	profileHash := artifacts.SHA256Bytes([]byte(normProfile))
	profileVec := embedder.Embed(normProfile)
	res.Summary.ProfileHash = profileHash

	limit := len(ranked)
	if policy.TopK > 0 && policy.TopK < limit {
		limit = policy.TopK
	}
	if policy.MaxJobs > 0 && policy.MaxJobs < limit {
		limit = policy.MaxJobs
	}
	res.Summary.Considered = limit

	// Per-candidate slots; workers write disjoint indexes so the final
	// similarity values are independent of completion order.
	type slot struct {
		vec      []float32
		cacheHit bool
	}
	slots := make([]slot, limit)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(embedWorkers)
	for i := 0; i < limit; i++ {
		i := i
		g.Go(func() error {
			p := &res.Postings[i]
			normText := NormalizeText(p.Posting.Title + " " + p.Posting.JDText)
			key := CacheKey{
				JobID:       p.Posting.JobID,
				ContentHash: artifacts.SHA256Bytes([]byte(normText)),
				ProfileHash: profileHash,
				NormVersion: NormalizationVersion,
			}

			if cache != nil {
				if vec, ok, err := cache.Get(key); err != nil {
					log.Warn("semantic cache read failed, embedding instead",
						zap.String("job_id", p.Posting.JobID), zap.Error(err))
				} else if ok {
					slots[i] = slot{vec: vec, cacheHit: true}
					return nil
				}
			}

			vec := embedder.Embed(normText)
			slots[i] = slot{vec: vec}
			if cache != nil {
				if err := cache.Put(key, embedder.ModelID(), vec); err != nil {
					log.Warn("semantic cache write failed",
						zap.String("job_id", p.Posting.JobID), zap.Error(err))
				}
			}
			return nil
		})
	}
	// Workers only return nil; Wait is for completion, not errors.
	_ = g.Wait()

	scores := make(map[string]types.SemanticScore, limit)
	for i := 0; i < limit; i++ {
		p := &res.Postings[i]
		sim := Cosine(slots[i].vec, profileVec)
		if slots[i].cacheHit {
			res.Summary.CacheHits++
		} else {
			res.Summary.Embedded++
		}

		score := types.SemanticScore{
			JobID:      p.Posting.JobID,
			Identity:   p.Identity,
			BaseScore:  p.BaseScore,
			Similarity: &sim,
			FinalScore: p.FinalScore,
		}
		if slots[i].cacheHit {
			score.Reasons = append(score.Reasons, "cache_hit")
		}

		switch {
		case policy.Mode == types.ModeSidecar:
			score.Reasons = append(score.Reasons, "sidecar")
		case sim < policy.MinSimilarity:
			score.Reasons = append(score.Reasons, "below_min_similarity")
		default:
			boost := int(math.Round(sim * float64(policy.MaxBoost)))
			if boost > policy.MaxBoost {
				boost = policy.MaxBoost
				score.Reasons = append(score.Reasons, "boost_capped")
			}
			p.SemanticBoost = boost
			p.FinalScore = clampScore(p.FinalScore + boost)
			p.Fingerprint = identity.Fingerprint(&p.Posting, p.ScoreBucket())
			score.Boost = boost
			score.FinalScore = p.FinalScore
			if boost > 0 {
				res.Summary.Boosted++
			}
		}
		scores[p.Identity] = score
	}

	if policy.Mode == types.ModeBoost {
		scoring.Rank(res.Postings)
	}

	// Evidence follows the final ranked order for deterministic output.
	for i := range res.Postings {
		if s, ok := scores[res.Postings[i].Identity]; ok {
			res.Scores = append(res.Scores, s)
		}
	}

	return res
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
