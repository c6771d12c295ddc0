// Package kvstore provides key-value store implementations backing
// playback progress persistence.
package kvstore

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

// SQLite is a key-value store backed by a local SQLite database.
// Entries have no expiry and survive restarts.
type SQLite struct {
	db *sqlx.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the
// kv table exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database at %s", path)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create kv table")
	}

	return &SQLite{db: db}, nil
}

// Get returns the value for key. The second return value is false when
// no entry exists.
func (s *SQLite) Get(key string) (string, bool, error) {
	var value string
	err := s.db.Get(&value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to read key %s", key)
	}
	return value, true, nil
}

// Set stores value under key, replacing any existing entry.
func (s *SQLite) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return errors.Wrapf(err, "failed to write key %s", key)
	}
	return nil
}

// Remove deletes the entry for key. Removing a missing key is not an error.
func (s *SQLite) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "failed to remove key %s", key)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
