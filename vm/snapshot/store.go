package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/kut/vm"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested snapshot doesn't exist.
var ErrNotFound = errors.New("snapshot not found")

// Entry describes a stored snapshot without its body.
type Entry struct {
	ID      string
	Name    string
	Created time.Time
	Size    int
}

// Store keeps encoded snapshots in a SQLite database.
type Store struct {
	db       *sql.DB
	maxDepth int
}

// Open opens (creating if needed) the snapshot database at path.
func Open(path string, maxDepth int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created INTEGER NOT NULL,
		body BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, maxDepth: maxDepth}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put encodes v under name and returns the new snapshot's ID.
func (s *Store) Put(name string, v vm.Value) (string, error) {
	body, err := Encode(v, s.maxDepth)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.db.Exec(
		"INSERT INTO snapshots (id, name, created, body) VALUES (?, ?, ?, ?)",
		id, name, time.Now().UnixNano(), body,
	)
	if err != nil {
		return "", fmt.Errorf("saving snapshot: %w", err)
	}
	return id, nil
}

// Get decodes the snapshot with the given ID. The caller owns the result.
func (s *Store) Get(id string) (vm.Value, error) {
	var body []byte
	err := s.db.QueryRow("SELECT body FROM snapshots WHERE id = ?", id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vm.Undefined, ErrNotFound
		}
		return vm.Undefined, fmt.Errorf("querying snapshot: %w", err)
	}
	return Decode(body, s.maxDepth)
}

// List returns every snapshot, oldest first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query("SELECT id, name, created, length(body) FROM snapshots ORDER BY created, id")
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Name, &created, &e.Size); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		e.Created = time.Unix(0, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the snapshot with the given ID.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
