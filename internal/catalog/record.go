package catalog

// Record is one catalog entry: song metadata plus its play count.
// The id is assigned on insert and never changes; the play count only
// ever goes up.
type Record struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Album     string `json:"album,omitempty"`
	Genre     string `json:"genre"`
	PlayCount uint64 `json:"play_count"`
}

// Snapshot is an immutable point-in-time copy of the catalog, handed to
// persistence backends. Records are sorted by id. It is never mutated
// after creation.
type Snapshot struct {
	NextID  uint64   `json:"next_id"`
	Records []Record `json:"records"`
}
