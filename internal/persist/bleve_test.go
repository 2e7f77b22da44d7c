package persist_test

import (
	"path/filepath"
	"testing"

	"songvault/internal/catalog"
	"songvault/internal/persist"
)

func TestBleveBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.bleve")

	backend, err := persist.NewBleveBackend(path)
	if err != nil {
		t.Fatalf("NewBleveBackend() error = %v", err)
	}

	want := sampleSnapshot()
	if err := backend.Persist(want); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	backend, err = persist.NewBleveBackend(path)
	if err != nil {
		t.Fatalf("NewBleveBackend() reopen error = %v", err)
	}
	defer backend.Close()

	got, err := backend.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSnapshotEqual(t, got, want)
}

func TestBleveBackend_RoundTripEmpty(t *testing.T) {
	backend, err := persist.NewBleveBackend(filepath.Join(t.TempDir(), "catalog.bleve"))
	if err != nil {
		t.Fatalf("NewBleveBackend() error = %v", err)
	}
	defer backend.Close()

	if err := backend.Persist(catalog.Snapshot{NextID: 1}); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	got, err := backend.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSnapshotEqual(t, got, catalog.Snapshot{NextID: 1})
}

func TestBleveBackend_OverwriteIsIdempotent(t *testing.T) {
	backend, err := persist.NewBleveBackend(filepath.Join(t.TempDir(), "catalog.bleve"))
	if err != nil {
		t.Fatalf("NewBleveBackend() error = %v", err)
	}
	defer backend.Close()

	if err := backend.Persist(sampleSnapshot()); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	second := sampleSnapshot()
	second.Records[2].PlayCount = 13
	second.Records = append(second.Records, catalog.Record{ID: 4, Title: "Blue in Green", Artist: "Miles Davis", Genre: "Jazz"})
	second.NextID = 5
	if err := backend.Persist(second); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	got, err := backend.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSnapshotEqual(t, got, second)
}
