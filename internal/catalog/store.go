// Package catalog holds the in-memory song catalog: the single source of
// truth for reads and writes while the process is running. Durability is
// deferred; mutations flip a dirty flag and a background scheduler persists
// a snapshot later.
package catalog

import (
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("song not found")

// Store is the concurrent catalog. A single RWMutex guards the record map,
// the id counter and the dirty flag: reads share the lock, writes and the
// snapshot copy take it exclusively or shared respectively, and no I/O ever
// happens while it is held.
type Store struct {
	mu      sync.RWMutex
	records map[uint64]Record
	nextID  uint64
	dirty   bool
}

// NewStore returns an empty catalog with id assignment starting at 1.
func NewStore() *Store {
	return &Store{records: make(map[uint64]Record), nextID: 1}
}

// FromSnapshot rebuilds a catalog from a persisted snapshot. The id counter
// is taken from the snapshot but never allowed below max(id)+1, so ids stay
// unique even against a stale counter. The restored store starts clean.
func FromSnapshot(snap Snapshot) *Store {
	s := NewStore()
	for _, r := range snap.Records {
		s.records[r.ID] = r
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	if snap.NextID > s.nextID {
		s.nextID = snap.NextID
	}
	return s
}

// Insert stores a new record with the next free id and a zero play count,
// and marks the catalog dirty. Concurrent inserts never share an id.
func (s *Store) Insert(title, artist, album, genre string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Record{
		ID:     s.nextID,
		Title:  title,
		Artist: artist,
		Album:  album,
		Genre:  genre,
	}
	s.records[r.ID] = r
	s.nextID++
	s.dirty = true
	return r
}

// Get returns the record with the given id, or ErrNotFound.
func (s *Store) Get(id uint64) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

// IncrementPlay bumps the play count of the record with the given id by one
// and returns the updated record. Increments on the same id serialize under
// the write lock, so none are lost.
func (s *Store) IncrementPlay(id uint64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	r.PlayCount++
	s.records[id] = r
	s.dirty = true
	return r, nil
}

// Len returns the number of records in the catalog.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Dirty reports whether unflushed mutations exist since the last flush.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// ClearDirty resets the dirty flag. Only the flush scheduler calls this,
// immediately before it takes the snapshot it is about to persist.
func (s *Store) ClearDirty() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// MarkDirty re-raises the dirty flag. The flush scheduler calls this when a
// persist fails, returning the catalog to the unflushed state.
func (s *Store) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// Snapshot copies the catalog under the read lock and returns it sorted by
// id. The copy is independent of the live store, so persisting it does not
// block foreground mutations.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	records := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	next := s.nextID
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return Snapshot{NextID: next, Records: records}
}
