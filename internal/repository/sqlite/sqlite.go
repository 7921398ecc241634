// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for:
// - Single-server deployments (which is most apps, honestly)
// - Development and testing (use ":memory:" for in-memory DB)
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// SCHEMA OVERVIEW:
// Five tables form the schedule aggregate:
//
//	users          ← identity (one row per GitHub account)
//	schedules      ← created_by → users.id
//	candidates     ← schedule_id → schedules.id  (INTEGER PRIMARY KEY = column order)
//	availabilities ← one row per touched (schedule, user, candidate) cell
//	comments       ← one row per (schedule, user)
//
// availabilities and comments carry UNIQUE constraints on their natural keys.
// Those constraints are what make concurrent writes to the same cell resolve
// to last-write-wins instead of duplicate rows — no in-process locking needed.
package sqlite

import (
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// The underscore import `_ "modernc.org/sqlite"` is a "side-effect only" import.
	// The sqlite package's init() function registers itself with database/sql as a
	// driver named "sqlite". After this import, sql.Open("sqlite", ...) works.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and hands out the per-table stores that
// implement the repository interfaces. All stores share this one pool, so the
// tables of the aggregate live in the same database file and can participate
// in the same transactions.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/schedule-arranger.db" → file-based database (persistent)
//   - ":memory:"                  → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	// sql.Open does NOT actually open a connection — it creates a pool
	// manager. Ping forces an immediate connection so a bad path or
	// permissions problem surfaces here, not on the first query.
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) mode:
	// Default SQLite locks the entire database during writes. WAL allows
	// concurrent reads WHILE a write is happening — important for a web
	// server where grid reads race availability writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	// With them ON, a bug that tried to orphan candidates or availabilities
	// would fail loudly instead of corrupting the aggregate silently.
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

// Close closes the database connection pool. Wherever you call New(),
// immediately defer Close() — it flushes the WAL and releases the file lock.
func (db *DB) Close() error {
	return db.conn.Close()
}

// PER-TABLE STORES:
// Each accessor returns a thin view over the same *sql.DB pool, one per
// repository interface. Splitting the implementations across types (instead
// of piling every method onto DB) keeps method sets small and lets each file
// own one table. The stores are cheap value wrappers — create them freely.

// Users returns the user store.
func (db *DB) Users() *UserDB { return &UserDB{conn: db.conn} }

// Schedules returns the schedule store.
func (db *DB) Schedules() *ScheduleDB { return &ScheduleDB{conn: db.conn} }

// Candidates returns the candidate store.
func (db *DB) Candidates() *CandidateDB { return &CandidateDB{conn: db.conn} }

// Availabilities returns the availability store.
func (db *DB) Availabilities() *AvailabilityDB { return &AvailabilityDB{conn: db.conn} }

// Comments returns the comment store.
func (db *DB) Comments() *CommentDB { return &CommentDB{conn: db.conn} }

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent —
// safe to run on every startup against an existing database.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			github_id  INTEGER NOT NULL UNIQUE,
			username   TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schedules (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			memo       TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_schedules_created_by ON schedules(created_by);
	`)
	if err != nil {
		return fmt.Errorf("creating schedules table: %w", err)
	}

	// INTEGER PRIMARY KEY in SQLite is the rowid: monotonically assigned at
	// insertion, never reused while rows exist. That property IS the grid's
	// column ordering, so candidates needs no separate position column.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS candidates (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			schedule_id TEXT NOT NULL REFERENCES schedules(id)
		);
		CREATE INDEX IF NOT EXISTS idx_candidates_schedule_id ON candidates(schedule_id);
	`)
	if err != nil {
		return fmt.Errorf("creating candidates table: %w", err)
	}

	// The UNIQUE constraint is the upsert anchor: INSERT ... ON CONFLICT
	// targets it, and it guarantees at most one row per cell no matter how
	// many concurrent writers race.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS availabilities (
			schedule_id  TEXT NOT NULL REFERENCES schedules(id),
			user_id      TEXT NOT NULL REFERENCES users(id),
			candidate_id INTEGER NOT NULL REFERENCES candidates(id),
			state        INTEGER NOT NULL DEFAULT 0,
			UNIQUE (schedule_id, user_id, candidate_id)
		);
		CREATE INDEX IF NOT EXISTS idx_availabilities_schedule_id ON availabilities(schedule_id);
	`)
	if err != nil {
		return fmt.Errorf("creating availabilities table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			schedule_id TEXT NOT NULL REFERENCES schedules(id),
			user_id     TEXT NOT NULL REFERENCES users(id),
			comment     TEXT NOT NULL,
			UNIQUE (schedule_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}
