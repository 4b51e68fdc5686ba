// Package store persists scry's analysis results in SQLite: the discovered
// module set with its imports, classes, and base relations, and tracker
// snapshots. A saved index can be read back as a Reflector, so analysis
// commands run off the database without re-scanning sources.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound reports that the database holds no saved index or snapshot.
var ErrNotFound = errors.New("store: not found")

// Store is the SQLite data access layer.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
-- Index tables

CREATE TABLE IF NOT EXISTS meta (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS modules (
  id              INTEGER PRIMARY KEY,
  name            TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS imports (
  id              INTEGER PRIMARY KEY,
  module          TEXT NOT NULL,
  target          TEXT NOT NULL,
  ordinal         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS classes (
  id              INTEGER PRIMARY KEY,
  module          TEXT NOT NULL,
  name            TEXT NOT NULL,
  UNIQUE(module, name)
);

CREATE TABLE IF NOT EXISTS bases (
  id              INTEGER PRIMARY KEY,
  class_module    TEXT NOT NULL,
  class_name      TEXT NOT NULL,
  ordinal         INTEGER NOT NULL,
  base_module     TEXT NOT NULL DEFAULT '',
  base_name       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS warnings (
  id              INTEGER PRIMARY KEY,
  message         TEXT NOT NULL
);

-- Snapshot tables

CREATE TABLE IF NOT EXISTS attributes (
  id              INTEGER PRIMARY KEY,
  class           TEXT NOT NULL,
  attribute       TEXT NOT NULL,
  descriptor      TEXT NOT NULL,
  observations    INTEGER NOT NULL DEFAULT 0,
  UNIQUE(class, attribute)
);

-- Indexes

CREATE INDEX IF NOT EXISTS idx_imports_module ON imports(module);
CREATE INDEX IF NOT EXISTS idx_classes_module ON classes(module);
CREATE INDEX IF NOT EXISTS idx_bases_class ON bases(class_module, class_name);
CREATE INDEX IF NOT EXISTS idx_attributes_class ON attributes(class);
`
