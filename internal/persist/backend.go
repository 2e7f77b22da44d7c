// Package persist provides the durable-storage backends for the catalog.
// A backend is only touched at startup (Load) and by the flush scheduler
// (Persist); the request path never waits on one.
package persist

import (
	"log/slog"

	"songvault/internal/catalog"
)

// Backend is the contract every storage variant implements. Persist replaces
// whatever was previously stored with the given snapshot — idempotent
// overwrite, not append — so calling it repeatedly with growing snapshots is
// safe. Load reconstructs the last persisted snapshot, or the empty catalog
// (next id 1) when no durable state exists.
type Backend interface {
	Load() (catalog.Snapshot, error)
	Persist(snap catalog.Snapshot) error
	Close() error
}

// LoadOrEmpty loads the persisted catalog from b, treating unreadable or
// corrupt state as absent: the failure is logged and an empty snapshot is
// returned. Startup never aborts because of bad durable state.
func LoadOrEmpty(b Backend, logger *slog.Logger) catalog.Snapshot {
	snap, err := b.Load()
	if err != nil {
		logger.Warn("could not load persisted catalog, starting empty", "error", err)
		return catalog.Snapshot{NextID: 1}
	}
	return snap
}
