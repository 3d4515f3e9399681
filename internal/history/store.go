// Package history persists per-run identity maps under a state root, tracks
// success pointers, and computes the run-over-run diff.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/job-radar/internal/artifacts"
	"github.com/jonathan/job-radar/internal/types"
)

const (
	runsDirName     = "runs"
	identityMapFile = "identity_map.json"
	globalPointer   = "LATEST_SUCCESS"
	pointerPrefix   = "LATEST_SUCCESS_"
)

// Store manages the on-disk run history under a single state root:
//
//	<root>/runs/<run_name>/...        per-run artifacts + identity map
//	<root>/LATEST_SUCCESS             global success pointer
//	<root>/LATEST_SUCCESS_<profile>   namespaced success pointer
//
// Pointer files are written only after a run fully succeeds; there are no
// partial pointer updates.
type Store struct {
	root string
}

// NewStore returns a Store rooted at dir, creating the runs directory.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, runsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("creating state root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the state root directory.
func (s *Store) Root() string { return s.root }

// RunName builds the sortable directory name for a run: a UTC timestamp
// prefix keeps lexical order equal to chronological order, the run id suffix
// keeps names unique.
func RunName(startedAt time.Time, runID string) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return startedAt.UTC().Format("20060102T150405Z") + "_" + short
}

// RunPath returns the directory a named run would occupy, without creating
// it. Use for read-side lookups against runs that may have been pruned.
func (s *Store) RunPath(runName string) string {
	return filepath.Join(s.root, runsDirName, runName)
}

// RunDir returns (and creates) the directory for a named run.
func (s *Store) RunDir(runName string) (string, error) {
	dir := filepath.Join(s.root, runsDirName, runName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating run directory: %w", err)
	}
	return dir, nil
}

// SaveIdentityMap persists the run's identity map. Records are sorted by
// identity before writing so serialization is stable.
func (s *Store) SaveIdentityMap(runName string, m *types.IdentityMap) error {
	dir, err := s.RunDir(runName)
	if err != nil {
		return err
	}
	sort.Slice(m.Records, func(i, j int) bool {
		return m.Records[i].Identity < m.Records[j].Identity
	})
	return artifacts.WriteJSON(filepath.Join(dir, identityMapFile), m)
}

// LoadIdentityMap reads a run's persisted identity map.
func (s *Store) LoadIdentityMap(runName string) (*types.IdentityMap, error) {
	var m types.IdentityMap
	path := filepath.Join(s.root, runsDirName, runName, identityMapFile)
	if err := artifacts.ReadJSON(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkSuccess records runName in both the namespaced and global success
// pointers. Both writes are atomic (temp + rename).
func (s *Store) MarkSuccess(profile, runName string) error {
	if profile != "" {
		if err := s.writePointer(pointerPrefix+profile, runName); err != nil {
			return err
		}
	}
	return s.writePointer(globalPointer, runName)
}

func (s *Store) writePointer(name, runName string) error {
	path := filepath.Join(s.root, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(runName+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing pointer %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming pointer %s: %w", name, err)
	}
	return nil
}

func (s *Store) readPointer(name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		return "", false
	}
	runName := strings.TrimSpace(string(data))
	if runName == "" {
		return "", false
	}
	// A pointer to a pruned or missing run does not resolve.
	if _, err := os.Stat(filepath.Join(s.root, runsDirName, runName, identityMapFile)); err != nil {
		return "", false
	}
	return runName, true
}

// ListRuns returns run names in descending (newest-first) lexical order.
func (s *Store) ListRuns() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, runsDirName))
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Prune removes the oldest run directories beyond keep. Pointer files are
// left alone; a pointer to a pruned run simply stops resolving.
func (s *Store) Prune(keep int) error {
	if keep <= 0 {
		return nil
	}
	names, err := s.ListRuns()
	if err != nil {
		return err
	}
	for _, name := range names[min(keep, len(names)):] {
		if err := os.RemoveAll(filepath.Join(s.root, runsDirName, name)); err != nil {
			return fmt.Errorf("pruning run %s: %w", name, err)
		}
	}
	return nil
}
