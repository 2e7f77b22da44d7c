package persist

import (
	"os"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve/v2"

	"songvault/internal/catalog"
)

// loadBatchSize caps how many documents a single load request asks for.
const loadBatchSize = 1000000

// BleveBackend stores one document per record in a bleve index, keyed by the
// decimal record id. The id counter is not stored separately: records are
// insert-only with dense ids, so next id is always max id + 1.
type BleveBackend struct {
	index bleve.Index
}

// NewBleveBackend opens the index directory at path, creating it with the
// default mapping when absent.
func NewBleveBackend(path string) (*BleveBackend, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		index, err := bleve.New(path, bleve.NewIndexMapping())
		if err != nil {
			return nil, err
		}
		return &BleveBackend{index: index}, nil
	}

	index, err := bleve.Open(path)
	if err != nil {
		return nil, err
	}
	return &BleveBackend{index: index}, nil
}

func (b *BleveBackend) Load() (catalog.Snapshot, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = loadBatchSize
	req.Fields = []string{"*"}

	res, err := b.index.Search(req)
	if err != nil {
		return catalog.Snapshot{}, err
	}

	snap := catalog.Snapshot{NextID: 1}
	for _, hit := range res.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}

		getStr := func(f string) string {
			if v, ok := hit.Fields[f].(string); ok {
				return v
			}
			return ""
		}
		getUint := func(f string) uint64 {
			if v, ok := hit.Fields[f].(float64); ok {
				return uint64(v)
			}
			return 0
		}

		snap.Records = append(snap.Records, catalog.Record{
			ID:        id,
			Title:     getStr("title"),
			Artist:    getStr("artist"),
			Album:     getStr("album"),
			Genre:     getStr("genre"),
			PlayCount: getUint("play_count"),
		})
		if id >= snap.NextID {
			snap.NextID = id + 1
		}
	}

	sort.Slice(snap.Records, func(i, j int) bool { return snap.Records[i].ID < snap.Records[j].ID })
	return snap, nil
}

// Persist upserts every record as a document and deletes documents that are
// no longer in the snapshot, leaving the index holding exactly the snapshot.
func (b *BleveBackend) Persist(snap catalog.Snapshot) error {
	keep := make(map[string]bool, len(snap.Records))
	batch := b.index.NewBatch()

	for _, r := range snap.Records {
		docID := strconv.FormatUint(r.ID, 10)
		keep[docID] = true

		// Index an explicit field map rather than the struct so the stored
		// field names stay stable regardless of mapping behavior.
		doc := map[string]interface{}{
			"title":      r.Title,
			"artist":     r.Artist,
			"album":      r.Album,
			"genre":      r.Genre,
			"play_count": float64(r.PlayCount),
		}
		if err := batch.Index(docID, doc); err != nil {
			return err
		}
	}

	stale, err := b.allDocIDs()
	if err != nil {
		return err
	}
	for _, docID := range stale {
		if !keep[docID] {
			batch.Delete(docID)
		}
	}

	return b.index.Batch(batch)
}

func (b *BleveBackend) allDocIDs() ([]string, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = loadBatchSize
	req.Fields = []string{}

	res, err := b.index.Search(req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func (b *BleveBackend) Close() error {
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}
