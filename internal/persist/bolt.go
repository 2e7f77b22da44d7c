package persist

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"songvault/internal/catalog"
)

var (
	songsBucket = []byte("songs")
	metaBucket  = []byte("meta")
	nextIDKey   = []byte("next_id")
)

// BoltBackend stores one entry per record in an embedded bbolt database,
// keyed by big-endian id so cursor order matches id order.
type BoltBackend struct {
	db *bolt.DB
}

// NewBoltBackend opens (or creates) the database file at path.
func NewBoltBackend(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Load() (catalog.Snapshot, error) {
	snap := catalog.Snapshot{NextID: 1}

	err := b.db.View(func(tx *bolt.Tx) error {
		if songs := tx.Bucket(songsBucket); songs != nil {
			err := songs.ForEach(func(k, v []byte) error {
				var r catalog.Record
				if err := json.Unmarshal(v, &r); err != nil {
					return fmt.Errorf("record %d: %w", binary.BigEndian.Uint64(k), err)
				}
				snap.Records = append(snap.Records, r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		if meta := tx.Bucket(metaBucket); meta != nil {
			if v := meta.Get(nextIDKey); len(v) == 8 {
				snap.NextID = binary.BigEndian.Uint64(v)
			}
		}
		return nil
	})
	if err != nil {
		return catalog.Snapshot{}, err
	}
	return snap, nil
}

// Persist drops and rebuilds the songs bucket in a single update
// transaction, so the stored state is always exactly one snapshot.
func (b *BoltBackend) Persist(snap catalog.Snapshot) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(songsBucket) != nil {
			if err := tx.DeleteBucket(songsBucket); err != nil {
				return err
			}
		}
		songs, err := tx.CreateBucket(songsBucket)
		if err != nil {
			return err
		}

		key := make([]byte, 8)
		for _, r := range snap.Records {
			binary.BigEndian.PutUint64(key, r.ID)
			val, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := songs.Put(key, val); err != nil {
				return err
			}
		}

		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		next := make([]byte, 8)
		binary.BigEndian.PutUint64(next, snap.NextID)
		return meta.Put(nextIDKey, next)
	})
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
