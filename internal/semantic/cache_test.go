package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func testKey() CacheKey {
	return CacheKey{
		JobID:       "job-1",
		ContentHash: "abc123",
		ProfileHash: "def456",
		NormVersion: NormalizationVersion,
	}
}

func TestCache_MissThenHit(t *testing.T) {
	c := testCache(t)
	key := testKey()

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	vec := []float32{0.1, -0.5, 0.25}
	require.NoError(t, c.Put(key, ModelHashV1, vec))

	got, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vec, got)
}

func TestCache_ImmutableOnceWritten(t *testing.T) {
	c := testCache(t)
	key := testKey()

	require.NoError(t, c.Put(key, ModelHashV1, []float32{1, 2, 3}))
	require.NoError(t, c.Put(key, ModelHashV1, []float32{9, 9, 9}))

	got, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, got, "second Put must not overwrite")
}

func TestCache_KeyComponentsAreDiscriminating(t *testing.T) {
	c := testCache(t)
	base := testKey()
	require.NoError(t, c.Put(base, ModelHashV1, []float32{1}))

	variants := []CacheKey{
		{JobID: "other", ContentHash: base.ContentHash, ProfileHash: base.ProfileHash, NormVersion: base.NormVersion},
		{JobID: base.JobID, ContentHash: "other", ProfileHash: base.ProfileHash, NormVersion: base.NormVersion},
		{JobID: base.JobID, ContentHash: base.ContentHash, ProfileHash: "other", NormVersion: base.NormVersion},
		{JobID: base.JobID, ContentHash: base.ContentHash, ProfileHash: base.ProfileHash, NormVersion: "v2"},
	}
	for _, key := range variants {
		_, ok, err := c.Get(key)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestCache_Count(t *testing.T) {
	c := testCache(t)
	require.NoError(t, c.Put(testKey(), ModelHashV1, []float32{1}))

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCache_OnDisk(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenCache(dir)
	require.NoError(t, err)
	require.NoError(t, c.Put(testKey(), ModelHashV1, []float32{0.5}))
	require.NoError(t, c.Close())

	// Reopen and confirm the entry survived.
	c2, err := OpenCache(dir)
	require.NoError(t, err)
	defer c2.Close()

	got, ok, err := c2.Get(testKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{0.5}, got)
}

func TestVectorEncoding_RoundTrip(t *testing.T) {
	vec := []float32{0, -1.5, 3.25, 1e-7}
	got, err := decodeVector(encodeVector(vec), len(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, got)
}

func TestVectorDecoding_BadLength(t *testing.T) {
	_, err := decodeVector([]byte{1, 2, 3}, 2)
	assert.Error(t, err)
}
