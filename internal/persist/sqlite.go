//go:build cgo

package persist

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"songvault/internal/catalog"
)

// SQLiteBackend keeps one row per record in a songs table, with the id
// counter in a separate catalog_meta table so it round-trips exactly.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	sqlStmt := `CREATE TABLE IF NOT EXISTS songs(
		id INTEGER PRIMARY KEY,
		title TEXT,
		artist TEXT,
		album TEXT,
		genre TEXT,
		play_count INTEGER
	);
	CREATE TABLE IF NOT EXISTS catalog_meta(
		key TEXT PRIMARY KEY,
		value INTEGER
	);`
	if _, err := db.Exec(sqlStmt); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) Load() (catalog.Snapshot, error) {
	snap := catalog.Snapshot{NextID: 1}

	rows, err := s.db.Query("SELECT id, title, artist, album, genre, play_count FROM songs ORDER BY id")
	if err != nil {
		return catalog.Snapshot{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var r catalog.Record
		if err := rows.Scan(&r.ID, &r.Title, &r.Artist, &r.Album, &r.Genre, &r.PlayCount); err != nil {
			return catalog.Snapshot{}, err
		}
		snap.Records = append(snap.Records, r)
	}
	if err := rows.Err(); err != nil {
		return catalog.Snapshot{}, err
	}

	var next uint64
	err = s.db.QueryRow("SELECT value FROM catalog_meta WHERE key = 'next_id'").Scan(&next)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return catalog.Snapshot{}, err
	}
	if next > snap.NextID {
		snap.NextID = next
	}
	return snap, nil
}

// Persist replaces the whole table in one transaction: readers of the
// database file either see the previous snapshot or this one, never a mix.
func (s *SQLiteBackend) Persist(snap catalog.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM songs"); err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO songs (id, title, artist, album, genre, play_count) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range snap.Records {
		if _, err := stmt.Exec(r.ID, r.Title, r.Artist, r.Album, r.Genre, r.PlayCount); err != nil {
			tx.Rollback()
			return err
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO catalog_meta (key, value) VALUES ('next_id', ?)", snap.NextID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLiteBackend) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
