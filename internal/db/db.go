package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultPath is the default database location
const DefaultPath = "/var/lib/ocfs2tool/history.db"

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	path string
}

// New opens or creates the SQLite database at the given path
func New(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	db := &DB{conn: conn, path: path}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

// migrate runs the database schema migrations
func (d *DB) migrate() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	var version int
	err = d.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return err
	}

	migrations := []string{
		migrationV1,
	}

	for i, migration := range migrations {
		v := i + 1
		if v <= version {
			continue
		}

		tx, err := d.conn.Begin()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(migration); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration v%d failed: %w", v, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", v); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

// migrationV1 creates the initial schema
const migrationV1 = `
-- One row per mkfs.ocfs2 invocation that actually ran
CREATE TABLE IF NOT EXISTS format_runs (
    id TEXT PRIMARY KEY,
    device TEXT NOT NULL,
    label TEXT,
    cluster_size INTEGER DEFAULT 0,
    block_size INTEGER DEFAULT 0,
    nodes INTEGER DEFAULT 0,
    command_json TEXT NOT NULL,
    success INTEGER NOT NULL,
    exit_code INTEGER DEFAULT 0,
    output TEXT,
    started_at TIMESTAMP NOT NULL,
    duration_ms INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_device ON format_runs(device);
CREATE INDEX IF NOT EXISTS idx_runs_time ON format_runs(started_at);
`

// FormatRun represents one recorded mkfs.ocfs2 invocation
type FormatRun struct {
	ID          string        `json:"id"`
	Device      string        `json:"device"`
	Label       string        `json:"label,omitempty"`
	ClusterSize uint64        `json:"cluster_size,omitempty"`
	BlockSize   uint64        `json:"block_size,omitempty"`
	Nodes       int           `json:"nodes,omitempty"`
	Command     []string      `json:"command"`
	Success     bool          `json:"success"`
	ExitCode    int           `json:"exit_code"`
	Output      string        `json:"output,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}
