package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to :memory: would otherwise get its own
	// empty database.
	if dataSourceName == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// WAL keeps the expiry sweep from blocking concurrent readers.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the current schema. A single schema version exists;
// there is no migration path.
func (db *DB) RunMigrations() error {
	migration := `
-- Clips table: one row per archived recording, payload stored inline
CREATE TABLE IF NOT EXISTS clips (
    id TEXT PRIMARY KEY,
    story_id TEXT NOT NULL,
    story_title TEXT NOT NULL DEFAULT '',
    level TEXT NOT NULL DEFAULT '',
    attempt_number INTEGER NOT NULL DEFAULT 1,
    format TEXT NOT NULL,
    payload BLOB NOT NULL,
    size_bytes INTEGER NOT NULL,
    duration_seconds REAL NOT NULL DEFAULT 0,
    words_per_minute REAL NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_clips_story ON clips(story_id);
CREATE INDEX IF NOT EXISTS idx_clips_created ON clips(created_at);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
