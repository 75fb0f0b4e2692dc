// Package sqlite persists login sessions in an embedded SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB holds separate writer and reader pools over one WAL-mode database file.
// The writer pool is capped at one connection so writes never contend for the lock.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// sessionPragmas tune the database for many small point reads and writes.
const sessionPragmas = "_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=cache_size(-16000)"

// NewDB opens dbPath with WAL journaling. Migrations are not applied; call
// MigrateSessions.
func NewDB(dbPath string) (*DB, error) {
	return openDB(fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&%s", dbPath, sessionPragmas), dbPath)
}

func openDB(dsn, path string) (*DB, error) {
	writer, err := openPool(dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}

	reader, err := openPool(dsn, 4)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}

	return &DB{Writer: writer, Reader: reader, path: path}, nil
}

func openPool(dsn string, maxOpen int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxOpen)

	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// Close closes both pools. Returns the first error encountered.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}
