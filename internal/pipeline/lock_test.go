package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock_SecondAcquirerFails(t *testing.T) {
	root := t.TempDir()

	lock, err := AcquireLock(root)
	require.NoError(t, err)
	defer lock.Release()

	_, err = AcquireLock(root)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestAcquireLock_ReleaseAllowsReacquire(t *testing.T) {
	root := t.TempDir()

	lock, err := AcquireLock(root)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	lock2, err := AcquireLock(root)
	require.NoError(t, err)
	assert.NoError(t, lock2.Release())
}

func TestAcquireLock_ReclaimsStaleLock(t *testing.T) {
	root := t.TempDir()
	// A pid far above any real process stands in for a crashed holder.
	require.NoError(t, os.WriteFile(filepath.Join(root, lockFileName), []byte("999999999\n"), 0o644))

	lock, err := AcquireLock(root)
	require.NoError(t, err)
	assert.NoError(t, lock.Release())
}

func TestAcquireLock_ReclaimsGarbageLockFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, lockFileName), []byte("not a pid"), 0o644))

	lock, err := AcquireLock(root)
	require.NoError(t, err)
	assert.NoError(t, lock.Release())
}

func TestAcquireLock_CreatesStateRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "state")

	lock, err := AcquireLock(root)
	require.NoError(t, err)
	defer lock.Release()

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
