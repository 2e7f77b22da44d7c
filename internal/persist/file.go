package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"songvault/internal/catalog"
)

// FileBackend persists the whole catalog as a single JSON document. Each
// persist writes a temp file in the target directory and renames it over the
// old one, so a crash mid-write never leaves a partial document behind.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend storing the catalog at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Load() (catalog.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return catalog.Snapshot{NextID: 1}, nil
	}
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("read %s: %w", f.path, err)
	}

	var snap catalog.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return catalog.Snapshot{}, fmt.Errorf("parse %s: %w", f.path, err)
	}
	if snap.NextID == 0 {
		snap.NextID = 1
	}
	return snap, nil
}

func (f *FileBackend) Persist(snap catalog.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".songvault-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileBackend) Close() error { return nil }
