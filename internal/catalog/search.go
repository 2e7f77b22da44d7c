package catalog

import (
	"sort"
	"strings"
)

// Query holds the optional search filters. An empty field always matches;
// a set field matches records whose corresponding field contains it,
// case-insensitively.
type Query struct {
	Title  string
	Artist string
	Album  string
	Genre  string
}

func (q Query) matches(r Record) bool {
	return containsFold(r.Title, q.Title) &&
		containsFold(r.Artist, q.Artist) &&
		containsFold(r.Album, q.Album) &&
		containsFold(r.Genre, q.Genre)
}

func containsFold(field, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(filter))
}

// Search returns the records matched by every supplied filter, sorted by id.
// With no filters it returns the whole catalog. The scan runs under the read
// lock, so a record is never observed half-updated.
func (s *Store) Search(q Query) []Record {
	s.mu.RLock()
	var out []Record
	for _, r := range s.records {
		if q.matches(r) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
