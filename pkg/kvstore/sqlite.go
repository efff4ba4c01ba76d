package kvstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/mattn/go-sqlite3"
)

// SQLiteSchemaVersion is stored in PRAGMA user_version.
const SQLiteSchemaVersion = 1

// SQLiteEngine stores entries in an SQLite database. Staged writes are applied
// in a single transaction on Commit.
type SQLiteEngine struct {
	mu   sync.Mutex
	path string
	db   *sql.DB

	namespace string
	pending   staging
}

// NewSQLiteEngine creates an engine for the database at path.
// Use ":memory:" for an in-memory database.
func NewSQLiteEngine(path string) *SQLiteEngine {
	return &SQLiteEngine{path: path}
}

// Open opens the database, checks the schema version and selects namespace.
func (e *SQLiteEngine) Open(namespace string) error {
	if !validKey(namespace) {
		return fmt.Errorf("%w: namespace %q", ErrInvalidKey, namespace)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		db, err := sql.Open("sqlite3", e.path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		// One connection keeps ":memory:" databases alive and serializes access.
		db.SetMaxOpenConns(1)
		e.db = db
	}

	if err := e.migrate(); err != nil {
		e.db.Close()
		e.db = nil
		return err
	}

	e.namespace = namespace
	e.pending = make(staging)
	return nil
}

// migrate creates the schema on a fresh database and rejects foreign versions.
func (e *SQLiteEngine) migrate() error {
	var version int
	if err := e.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return classifySQLiteError(err)
	}

	switch version {
	case 0:
		_, err := e.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS kv (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (namespace, key)
		);
		PRAGMA user_version = %d;
		`, SQLiteSchemaVersion))
		if err != nil {
			return classifySQLiteError(err)
		}
		return nil
	case SQLiteSchemaVersion:
		return nil
	default:
		return fmt.Errorf("%w: schema version %d, want %d", ErrNewVersionFound, version, SQLiteSchemaVersion)
	}
}

// classifySQLiteError maps driver errors onto the engine's recoverable errors.
func classifySQLiteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrFull:
			return fmt.Errorf("%w: %v", ErrNoFreePages, err)
		case sqlite3.ErrCorrupt, sqlite3.ErrNotADB:
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}
	return err
}

// Erase drops all data. For file databases the files are removed.
func (e *SQLiteEngine) Erase() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending = nil
	if e.path == ":memory:" {
		if e.db == nil {
			return nil
		}
		_, err := e.db.Exec(`DROP TABLE IF EXISTS kv; PRAGMA user_version = 0;`)
		return err
	}

	if e.db != nil {
		e.db.Close()
		e.db = nil
	}
	for _, p := range []string{e.path, e.path + "-wal", e.path + "-shm", e.path + "-journal"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// GetString returns the value for key.
func (e *SQLiteEngine) GetString(key string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil || e.pending == nil {
		return "", ErrNotOpen
	}
	if v, ok, staged := e.pending.lookup(key); staged {
		if !ok {
			return "", ErrNotFound
		}
		return v, nil
	}

	var value string
	err := e.db.QueryRow(`SELECT value FROM kv WHERE namespace = ? AND key = ?`, e.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetString stages value for key.
func (e *SQLiteEngine) SetString(key, value string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil || e.pending == nil {
		return ErrNotOpen
	}
	e.pending.set(key, value)
	return nil
}

// EraseKey stages removal of key.
func (e *SQLiteEngine) EraseKey(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil || e.pending == nil {
		return ErrNotOpen
	}
	e.pending.erase(key)
	return nil
}

// Commit applies staged changes in one transaction.
func (e *SQLiteEngine) Commit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil || e.pending == nil {
		return ErrNotOpen
	}
	if len(e.pending) == 0 {
		return nil
	}

	tx, err := e.db.Begin()
	if err != nil {
		return classifySQLiteError(err)
	}
	for key, c := range e.pending {
		if c.deleted {
			_, err = tx.Exec(`DELETE FROM kv WHERE namespace = ? AND key = ?`, e.namespace, key)
		} else {
			_, err = tx.Exec(`
				INSERT INTO kv (namespace, key, value) VALUES (?, ?, ?)
				ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value
			`, e.namespace, key, c.value)
		}
		if err != nil {
			tx.Rollback()
			return classifySQLiteError(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return classifySQLiteError(err)
	}

	e.pending = make(staging)
	return nil
}

// Discard drops staged changes without touching the database. Unlike Close
// it keeps ":memory:" databases alive.
func (e *SQLiteEngine) Discard() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil || e.pending == nil {
		return ErrNotOpen
	}
	e.pending = make(staging)
	return nil
}

// Close closes the database. Uncommitted changes are discarded.
func (e *SQLiteEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending = nil
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

// Compile-time interface satisfaction check.
var _ Engine = (*SQLiteEngine)(nil)
