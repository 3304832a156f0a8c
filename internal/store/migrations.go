package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "memories: core memory records",
		SQL: `
CREATE TABLE memories (
    id            TEXT PRIMARY KEY,
    content       TEXT NOT NULL,
    mem_type      TEXT NOT NULL CHECK (mem_type IN ('decision', 'pattern', 'learning', 'context', 'preference', 'todo', 'reference', 'summary', 'foundational', 'shadow')),
    tags          TEXT NOT NULL DEFAULT '[]',
    importance    INTEGER NOT NULL DEFAULT 3 CHECK (importance BETWEEN 1 AND 5),

    -- Temporal validity
    created_at    INTEGER NOT NULL,
    valid_from    INTEGER,
    valid_until   INTEGER,
    supersedes    TEXT,
    superseded_by TEXT,

    -- Relation graph
    related       TEXT NOT NULL DEFAULT '[]',

    -- Access stats for decay resistance
    access_count  INTEGER NOT NULL DEFAULT 0,
    last_accessed INTEGER,

    -- Provenance
    project       TEXT,
    session       TEXT,
    source        TEXT,
    confidence    REAL NOT NULL DEFAULT 1.0,
    layer         TEXT NOT NULL DEFAULT 'longterm' CHECK (layer IN ('foundational', 'longterm', 'working'))
);

CREATE INDEX idx_memories_project    ON memories(project);
CREATE INDEX idx_memories_type       ON memories(mem_type);
CREATE INDEX idx_memories_created_at ON memories(created_at DESC);
CREATE INDEX idx_memories_importance ON memories(importance DESC);
`,
	},
	{
		Version:     2,
		Description: "mem_vectors: embedding vectors for semantic search",
		SQL: `
CREATE TABLE mem_vectors (
    memory_id  TEXT PRIMARY KEY,
    embedding  BLOB NOT NULL,
    model      TEXT NOT NULL,
    dimensions INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);
`,
	},
	{
		Version:     3,
		Description: "sessions: session tracking",
		SQL: `
CREATE TABLE sessions (
    id            INTEGER PRIMARY KEY,
    session_id    TEXT NOT NULL UNIQUE,
    project       TEXT,
    started_at    INTEGER NOT NULL,
    ended_at      INTEGER,
    status        TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed', 'failed')),
    memory_count  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_sessions_status     ON sessions(status);
CREATE INDEX idx_sessions_started_at ON sessions(started_at DESC);
CREATE INDEX idx_sessions_project    ON sessions(project);
`,
	},
	{
		Version:     4,
		Description: "maintenance_runs: maintenance cycle history",
		SQL: `
CREATE TABLE maintenance_runs (
    id          INTEGER PRIMARY KEY,
    started_at  INTEGER NOT NULL,
    finished_at INTEGER NOT NULL,
    state       TEXT NOT NULL CHECK (state IN ('dry_run_complete', 'applied', 'failed')),
    report      TEXT NOT NULL
);

CREATE INDEX idx_runs_started_at ON maintenance_runs(started_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
