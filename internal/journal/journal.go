// Package journal provides SQLite-backed durable storage for rewrite runs.
//
// The journal implements an append-only log of pass applications. Every
// run of a rewrite pass over a program records:
//   - the driver-minted run token (UUIDv7, idempotency key)
//   - the pass name and logical step number
//   - program fingerprints and full textual dumps before and after
//   - the IR and tool versions that produced the record
//
// Key properties:
//
//   - Token-level idempotency: INSERT ... ON CONFLICT(token) DO NOTHING,
//     so replaying a recorded pipeline never duplicates history.
//   - Logical time only: all ordering uses step INTEGER, never wall
//     clocks, which keeps listings reproducible across machines.
//   - Deterministic reads: every list query orders by
//     step ASC, token ASC COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package journal

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added (program, pass) index on runs
const currentSchemaVersion = 1

// Entry is one recorded pass application.
//
// DumpBefore and DumpAfter hold the full textual program dumps so a run
// can be inspected (and diffed) long after the program itself changed.
type Entry struct {
	Token             string `json:"token"`
	Program           string `json:"program"`
	Pass              string `json:"pass"`
	Step              int64  `json:"step"`
	FingerprintBefore string `json:"fingerprint_before"`
	FingerprintAfter  string `json:"fingerprint_after"`
	DumpBefore        string `json:"dump_before"`
	DumpAfter         string `json:"dump_after"`
	IRVersion         string `json:"ir_version"`
	ToolVersion       string `json:"tool_version"`
}

// Changed reports whether the pass altered the program.
func (e Entry) Changed() bool {
	return e.FingerprintBefore != e.FingerprintAfter
}

// Journal provides durable storage for rewrite run records.
// Uses SQLite with WAL mode for concurrent read access.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a SQLite journal at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Journal, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
	db.SetMaxIdleConns(1) // Keep one connection ready

	// Apply required pragmas
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	// Apply schema migrations
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
// Should be called when the journal is no longer needed.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Journal methods when available.
func (j *Journal) DB() *sql.DB {
	return j.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	// Apply migrations sequentially
	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
		version = 1
	}

	// Set version after all migrations
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the (program, pass) index for existing databases.
// New databases get this from schema.sql, but databases created before
// v1 need the index added explicitly.
func migrateToV1(db *sql.DB) error {
	// CREATE INDEX IF NOT EXISTS is safe - no-op if index exists
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_runs_program_pass
		ON runs(program, pass)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (j *Journal) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := j.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
