// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// modernc.org/sqlite is a pure-Go translation of SQLite — no C compiler
// needed, works everywhere Go works, and ":memory:" databases make tests
// self-contained. One table per resource kind; every identifier is an xid
// string generated here and treated as an opaque handle everywhere else.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/safari-community/internal/apperror"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. The per-resource stores (UserStore,
// CategoryStore, ...) share it; the server owns its lifecycle.
type DB struct {
	conn *sql.DB
}

// New opens a SQLite database and runs migrations.
//
// dbPath examples:
//   - "data/safari.db"  → file-based database (persistent)
//   - ":memory:"        → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time; funnel everything through a
	// single pooled connection so concurrent request handlers queue on the
	// pool instead of failing with SQLITE_BUSY. Reads stay fast under WAL.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite; the comment cascade
	// (comments → posts ON DELETE CASCADE) depends on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL DEFAULT '',
			auth_provider TEXT NOT NULL DEFAULT 'local',
			password_hash TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS categories (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			created_by TEXT NOT NULL
		);
		-- One fallback category per owner. Partial index: ordinary category
		-- names stay free to collide, only "uncategorized" is constrained.
		CREATE UNIQUE INDEX IF NOT EXISTS uq_categories_default
			ON categories(created_by) WHERE name = 'uncategorized';

		CREATE TABLE IF NOT EXISTS programs (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			category_id TEXT NOT NULL DEFAULT '',
			created_by  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_programs_category_id ON programs(category_id);

		CREATE TABLE IF NOT EXISTS presets (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			category_ids TEXT NOT NULL DEFAULT '[]',
			programs     TEXT NOT NULL DEFAULT '[]',
			created_by   TEXT NOT NULL,
			is_public    INTEGER NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS uq_presets_owner_name
			ON presets(created_by, name);

		CREATE TABLE IF NOT EXISTS posts (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL,
			content       TEXT NOT NULL DEFAULT '',
			preset_id     TEXT NOT NULL DEFAULT '',
			created_by    TEXT NOT NULL,
			is_public     INTEGER NOT NULL DEFAULT 1,
			image_url     TEXT NOT NULL DEFAULT '',
			like_count    INTEGER NOT NULL DEFAULT 0,
			dislike_count INTEGER NOT NULL DEFAULT 0,
			comment_count INTEGER NOT NULL DEFAULT 0,
			scrap_count   INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);

		CREATE TABLE IF NOT EXISTS comments (
			id            TEXT PRIMARY KEY,
			post_id       TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			created_by    TEXT NOT NULL,
			content       TEXT NOT NULL,
			like_count    INTEGER NOT NULL DEFAULT 0,
			dislike_count INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// clampLimit applies the page defaults: 20 by default, hard cap 100.
func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// joinSets assembles the SET clause of a partial update from the patch
// fields that were present. Column fragments only — values ride as
// parameters.
func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}

// parseID rejects identifiers that could never match a record. All ids in
// this store are xids, so a string that doesn't parse as one is malformed —
// apperror.ErrInvalidID, not ErrNotFound.
func parseID(resource, id string) error {
	if _, err := xid.FromString(id); err != nil {
		return apperror.InvalidID(resource, id)
	}
	return nil
}
