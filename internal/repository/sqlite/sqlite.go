package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection with thread-safe access.
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// New creates and initializes a new SQLite database connection. dbPath may
// be a file path or a "file:" URI such as an in-memory database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", withPragmas(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func withPragmas(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	if strings.Contains(dbPath, "mode=memory") {
		return dbPath + sep + "_busy_timeout=5000"
	}
	return dbPath + sep + "_journal_mode=WAL&_busy_timeout=5000"
}

// migrate creates the necessary tables if they don't exist.
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		mode TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		object TEXT NOT NULL,
		outcome TEXT NOT NULL,
		tier TEXT DEFAULT '',
		verdict TEXT DEFAULT '',
		elapsed_seconds REAL DEFAULT 0,
		limit_seconds INTEGER DEFAULT 0,
		score INTEGER DEFAULT 0,
		target INTEGER DEFAULT 0,
		message TEXT DEFAULT '',
		ended_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_results_mode ON results(mode);
	CREATE INDEX IF NOT EXISTS idx_results_outcome ON results(outcome);
	CREATE INDEX IF NOT EXISTS idx_results_ended_at ON results(ended_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection for use by repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Lock acquires a write lock.
func (db *DB) Lock() {
	db.mu.Lock()
}

// Unlock releases the write lock.
func (db *DB) Unlock() {
	db.mu.Unlock()
}

// RLock acquires a read lock.
func (db *DB) RLock() {
	db.mu.RLock()
}

// RUnlock releases the read lock.
func (db *DB) RUnlock() {
	db.mu.RUnlock()
}
