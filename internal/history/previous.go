package history

import (
	"context"

	"github.com/jonathan/job-radar/internal/types"
)

// Previous-run source labels, recorded in the run report for auditability.
const (
	SourceNamespacedPointer = "namespaced_pointer"
	SourceGlobalPointer     = "global_pointer"
	SourceNewestLocal       = "newest_local_run"
	SourceRemotePointer     = "remote_pointer"
)

// RemotePointer resolves the latest successful run, and its identity map,
// from remote storage. Implementations must be read-only; the chain treats
// any error as "does not resolve" and moves on.
type RemotePointer interface {
	LatestSuccess(ctx context.Context, profile string) (string, *types.IdentityMap, error)
}

// Previous identifies the run the diff engine compares against.
type Previous struct {
	RunName string
	Source  string
	Map     *types.IdentityMap
}

// ResolvePrevious walks the ordered fallback chain and returns the first
// resolvable previous run: namespaced success pointer, global success
// pointer, newest local run with an identity map, then the remote pointer
// when remote storage is enabled. The order is fixed, so the selection is
// deterministic for a given state root. Returns nil when nothing resolves
// (first run: every posting diffs as new).
func (s *Store) ResolvePrevious(ctx context.Context, profile string, remote RemotePointer) *Previous {
	if profile != "" {
		if runName, ok := s.readPointer(pointerPrefix + profile); ok {
			if m, err := s.LoadIdentityMap(runName); err == nil {
				return &Previous{RunName: runName, Source: SourceNamespacedPointer, Map: m}
			}
		}
	}

	if runName, ok := s.readPointer(globalPointer); ok {
		if m, err := s.LoadIdentityMap(runName); err == nil {
			return &Previous{RunName: runName, Source: SourceGlobalPointer, Map: m}
		}
	}

	if names, err := s.ListRuns(); err == nil {
		for _, name := range names {
			if m, err := s.LoadIdentityMap(name); err == nil {
				return &Previous{RunName: name, Source: SourceNewestLocal, Map: m}
			}
		}
	}

	if remote != nil {
		if runName, m, err := remote.LatestSuccess(ctx, profile); err == nil && m != nil {
			return &Previous{RunName: runName, Source: SourceRemotePointer, Map: m}
		}
	}

	return nil
}
