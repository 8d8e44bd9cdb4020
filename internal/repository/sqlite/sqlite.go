// Package sqlite implements the repository interfaces on SQLite.
//
// The driver is modernc.org/sqlite, a pure Go translation of SQLite, so the
// binary builds without cgo and cross-compiles cleanly. Timestamps are stored
// as local-time "2006-01-02 15:04:05" strings; the format is fixed-width, so
// SQL range comparisons on created_at behave like time comparisons.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// timeFormat is the canonical stored timestamp layout, interpreted in
// server-local time.
const timeFormat = "2006-01-02 15:04:05"

// DB wraps a sql.DB connection pool and implements both
// repository.AccountRepository and repository.ThreadRepository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer this right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
//
// Uniqueness is enforced here, not only in application code: accounts.username
// carries a UNIQUE constraint, and reactions are unique per
// (comment_id, user_id, reaction_type) so the toggle cannot produce duplicate
// rows even under concurrent requests.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			display_name  TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating accounts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS threads (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			title      TEXT NOT NULL,
			category   TEXT NOT NULL DEFAULT '',
			created_by INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_threads_created_at ON threads(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating threads table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			thread_id         INTEGER NOT NULL,
			user_id           INTEGER NOT NULL,
			content           TEXT NOT NULL,
			parent_comment_id INTEGER,
			created_at        TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_thread_id ON comments(thread_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS reactions (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			comment_id    INTEGER NOT NULL,
			user_id       INTEGER NOT NULL,
			reaction_type TEXT NOT NULL,
			created_at    TEXT NOT NULL,
			UNIQUE(comment_id, user_id, reaction_type)
		);
		CREATE INDEX IF NOT EXISTS idx_reactions_comment_id ON reactions(comment_id);
	`)
	if err != nil {
		return fmt.Errorf("creating reactions table: %w", err)
	}

	return nil
}

// formatTime renders t for storage, truncated to whole seconds in local time.
func formatTime(t time.Time) string {
	return t.Local().Format(timeFormat)
}

// parseTime reads a stored timestamp back into a local time.Time.
func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeFormat, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
