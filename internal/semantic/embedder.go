package semantic

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// ModelHashV1 is the only supported model id: a fixed, offline, hash-based
// vectorizer. It is not a trained model; it exists to give a deterministic,
// replayable notion of text similarity.
const ModelHashV1 = "hash-v1"

// embeddingDim is the fixed vector dimensionality of the hash vectorizer.
const embeddingDim = 256

// ErrUnsupportedModel is returned for model ids the embedder does not know.
// The pipeline records it as a skip reason, never a fatal error.
var ErrUnsupportedModel = fmt.Errorf("unsupported semantic model id")

// Embedder computes deterministic embeddings for normalized text.
type Embedder struct {
	modelID string
}

// NewEmbedder validates the model id and returns an Embedder.
func NewEmbedder(modelID string) (*Embedder, error) {
	if modelID != ModelHashV1 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, modelID)
	}
	return &Embedder{modelID: modelID}, nil
}

// ModelID returns the embedder's model id.
func (e *Embedder) ModelID() string { return e.modelID }

// Embed maps normalized text to a fixed-dimension, L2-normalized vector.
// Each token is FNV-1a hashed into a bucket; a second hash bit decides the
// sign (signed feature hashing keeps unrelated token collisions from only
// accumulating positively). Pure function of the input text.
func (e *Embedder) Embed(normalized string) []float32 {
	acc := make([]float64, embeddingDim)
	for _, token := range strings.Fields(normalized) {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		bucket := int(sum % embeddingDim)
		if (sum>>32)&1 == 1 {
			acc[bucket]--
		} else {
			acc[bucket]++
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, embeddingDim)
	if norm == 0 {
		return vec
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

// Cosine returns the cosine similarity of two vectors, rounded to 6 decimal
// places. Rounding happens before any threshold comparison so floating-point
// environment differences can never flip a boost decision.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return round6(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}
