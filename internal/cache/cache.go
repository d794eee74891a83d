// Copyright Szymon Zygula, 2026. All rights reserved.

// Package cache keeps fetched source payloads in a local SQLite database so
// repeated conversions of a work do not hit the network. Each payload is
// stored with its BLAKE3 hash and verified on every read.
//
// See docs/ARCHITECTURE.md § Source Cache.
package cache

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/blake3"
)

const dbFile = "sources.db"

// ErrCorrupt is returned by Get when a stored payload no longer matches its
// hash. The entry is removed before returning.
var ErrCorrupt = errors.New("cached payload is corrupt")

// Entry describes one cached payload.
type Entry struct {
	Identifier string
	Hash       string
	Size       int
	FetchedAt  time.Time
}

// Store is the SQLite-backed source cache.
type Store struct {
	db  *sql.DB
	dir string
}

// Open opens or creates the cache database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sources (
		identifier TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		size INTEGER NOT NULL,
		fetched_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Hash returns the hex-encoded BLAKE3-256 digest of data.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the payload cached for id. The boolean is false on a miss.
func (s *Store) Get(id string) ([]byte, bool, error) {
	var hash string
	var payload []byte
	err := s.db.QueryRow(`SELECT hash, payload FROM sources WHERE identifier = ?`, id).Scan(&hash, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", id, err)
	}

	if Hash(payload) != hash {
		if _, err := s.db.Exec(`DELETE FROM sources WHERE identifier = ?`, id); err != nil {
			return nil, false, fmt.Errorf("removing corrupt entry %s: %w", id, err)
		}
		return nil, false, fmt.Errorf("%s: %w", id, ErrCorrupt)
	}
	return payload, true, nil
}

// Put stores data for id, replacing any previous payload.
func (s *Store) Put(id string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO sources (identifier, hash, size, fetched_at, payload) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(identifier) DO UPDATE SET
			hash = excluded.hash, size = excluded.size,
			fetched_at = excluded.fetched_at, payload = excluded.payload`,
		id, Hash(data), len(data), time.Now().UTC().Format(time.RFC3339), data,
	)
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", id, err)
	}
	return nil
}

// List returns all entries ordered by identifier.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT identifier, hash, size, fetched_at FROM sources ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var fetched string
		if err := rows.Scan(&e.Identifier, &e.Hash, &e.Size, &fetched); err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		e.FetchedAt, _ = time.Parse(time.RFC3339, fetched)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Purge removes the given entries, or every entry when ids is empty, and
// returns the number removed.
func (s *Store) Purge(ids ...string) (int, error) {
	var res sql.Result
	var err error
	if len(ids) == 0 {
		res, err = s.db.Exec(`DELETE FROM sources`)
	} else {
		args := make([]any, len(ids))
		for i, id := range ids {
			args[i] = id
		}
		marks := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
		res, err = s.db.Exec(`DELETE FROM sources WHERE identifier IN (`+marks+`)`, args...)
	}
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged entries: %w", err)
	}
	return int(n), nil
}
