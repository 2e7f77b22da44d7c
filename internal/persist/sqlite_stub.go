//go:build !cgo

package persist

import (
	"errors"

	"songvault/internal/catalog"
)

type SQLiteBackend struct{}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	return nil, errors.New("the sqlite backend is not available in non-CGO builds; use -backend file, bolt or bleve, or rebuild with CGO_ENABLED=1")
}

func (s *SQLiteBackend) Load() (catalog.Snapshot, error) { return catalog.Snapshot{NextID: 1}, nil }

func (s *SQLiteBackend) Persist(snap catalog.Snapshot) error { return nil }

func (s *SQLiteBackend) Close() error { return nil }
