package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestWriteJSON_ByteStable(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")

	v := sample{Name: "cs", Score: 42}
	require.NoError(t, WriteJSON(a, v))
	require.NoError(t, WriteJSON(b, v))

	dataA, err := os.ReadFile(a)
	require.NoError(t, err)
	dataB, err := os.ReadFile(b)
	require.NoError(t, err)

	assert.Equal(t, dataA, dataB)
}

func TestWriteJSON_TrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, sample{Name: "x"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])
}

func TestWriteJSON_MapKeysSorted(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")

	require.NoError(t, WriteJSON(a, map[string]int{"zeta": 1, "alpha": 2, "mid": 3}))
	require.NoError(t, WriteJSON(b, map[string]int{"mid": 3, "alpha": 2, "zeta": 1}))

	dataA, _ := os.ReadFile(a)
	dataB, _ := os.ReadFile(b)
	assert.Equal(t, dataA, dataB)
}

func TestWriteJSON_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteJSON(filepath.Join(dir, "out.json"), sample{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, sample{Name: "cs", Score: 7}))

	var got sample
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, sample{Name: "cs", Score: 7}, got)
}

func TestSHA256File_MatchesBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	content := []byte("ranked output")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	fileHash, err := SHA256File(path)
	require.NoError(t, err)
	assert.Equal(t, SHA256Bytes(content), fileHash)
}

func TestSHA256File_Missing(t *testing.T) {
	_, err := SHA256File(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
