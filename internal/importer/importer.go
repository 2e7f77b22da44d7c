// Package importer bulk-loads a music directory into the catalog by reading
// metadata tags out of the audio files themselves.
package importer

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/dhowden/tag"

	"songvault/internal/catalog"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".oga":  true,
	".flac": true,
}

// Song is the metadata pulled from one audio file.
type Song struct {
	Title  string
	Artist string
	Album  string
	Genre  string
}

// Import walks root, parses every audio file it finds across NumCPU workers,
// and inserts the results into the store. Files whose tags cannot be read
// are skipped. Returns the number of records created.
func Import(store *catalog.Store, root string, logger *slog.Logger) (int, error) {
	if _, err := os.Stat(root); err != nil {
		return 0, err
	}

	paths := make(chan string, 100)
	songs := make(chan Song, 100)

	go func() {
		defer close(paths)
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if audioExts[strings.ToLower(filepath.Ext(path))] {
				paths <- path
			}
			return nil
		})
	}()

	var wg sync.WaitGroup
	for i := 0; i < runtime.NumCPU(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				song, err := parseFile(path)
				if err != nil {
					logger.Debug("skipping unparseable file", "path", path, "error", err)
					continue
				}
				songs <- song
			}
		}()
	}
	go func() {
		wg.Wait()
		close(songs)
	}()

	count := 0
	for song := range songs {
		store.Insert(song.Title, song.Artist, song.Album, song.Genre)
		count++
	}
	return count, nil
}

func parseFile(path string) (Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return Song{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Song{}, err
	}
	return normalize(m.Title(), m.Artist(), m.AlbumArtist(), m.Album(), m.Genre(), path), nil
}

// normalize applies the tag fallbacks: the album artist wins over the track
// artist, a missing title falls back to the file name, and the remaining
// blanks get "unknown" placeholders.
func normalize(title, artist, albumArtist, album, genre, path string) Song {
	if albumArtist != "" {
		artist = albumArtist
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if artist == "" {
		artist = "unknown artist"
	}
	if album == "" {
		album = "unknown album"
	}
	if genre == "" {
		genre = "unknown genre"
	}
	return Song{Title: title, Artist: artist, Album: album, Genre: genre}
}
