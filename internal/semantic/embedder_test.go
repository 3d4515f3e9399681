package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedder_SupportedModel(t *testing.T) {
	e, err := NewEmbedder(ModelHashV1)
	require.NoError(t, err)
	assert.Equal(t, ModelHashV1, e.ModelID())
}

func TestNewEmbedder_UnsupportedModel(t *testing.T) {
	_, err := NewEmbedder("text-embedding-3-small")
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestEmbed_Deterministic(t *testing.T) {
	e, err := NewEmbedder(ModelHashV1)
	require.NoError(t, err)

	text := NormalizeText("customer success deployment programs")
	first := e.Embed(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Embed(text))
	}
}

func TestEmbed_FixedDimension(t *testing.T) {
	e, _ := NewEmbedder(ModelHashV1)

	assert.Len(t, e.Embed("one token"), embeddingDim)
	assert.Len(t, e.Embed(""), embeddingDim)
}

func TestEmbed_UnitNorm(t *testing.T) {
	e, _ := NewEmbedder(ModelHashV1)
	vec := e.Embed(NormalizeText("solutions architect enterprise saas onboarding"))

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestCosine_SelfSimilarityIsOne(t *testing.T) {
	e, _ := NewEmbedder(ModelHashV1)
	vec := e.Embed(NormalizeText("customer success manager"))

	assert.InDelta(t, 1.0, Cosine(vec, vec), 1e-6)
}

func TestCosine_SharedVocabularyScoresHigher(t *testing.T) {
	e, _ := NewEmbedder(ModelHashV1)
	profile := e.Embed(NormalizeText("customer success deployment onboarding enterprise"))
	near := e.Embed(NormalizeText("customer success deployment programs"))
	far := e.Embed(NormalizeText("phd novel algorithm research kernel"))

	assert.Greater(t, Cosine(near, profile), Cosine(far, profile))
}

func TestCosine_RoundedToSixDecimals(t *testing.T) {
	e, _ := NewEmbedder(ModelHashV1)
	a := e.Embed(NormalizeText("alpha beta gamma delta"))
	b := e.Embed(NormalizeText("alpha beta epsilon zeta"))

	sim := Cosine(a, b)
	assert.Equal(t, round6(sim), sim)
}

func TestCosine_ZeroAndMismatchedVectors(t *testing.T) {
	e, _ := NewEmbedder(ModelHashV1)
	zero := e.Embed("")
	vec := e.Embed("token")

	assert.Equal(t, 0.0, Cosine(zero, vec))
	assert.Equal(t, 0.0, Cosine(vec, vec[:10]))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}
