// Package store is the aggregate store: the pre-computed tables behind every
// dashboard page, kept in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ademuri/listening-dashboard/internal/migration"
	"github.com/avast/retry-go"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// ErrNotImported is returned when opening a database that has not been
// populated by an import.
var ErrNotImported = errors.New("database doesn't exist - run import first")

const (
	openAttempts = 5
	openDelay    = 100 * time.Millisecond
)

type Store struct {
	db *sql.DB
}

// fileURI turns a filesystem path into an SQLite URI, escaping the
// characters a URI would read as a query, a fragment or an escape.
func fileURI(dbPath, query string) string {
	u := url.URL{Scheme: "file", Opaque: (&url.URL{Path: dbPath}).EscapedPath(), RawQuery: query}
	return u.String()
}

// New opens dbPath for writing, creating the schema if needed.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", fileURI(dbPath, ""))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = withRetry(func() error {
		_, err := db.Exec(migration.Create)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Open opens an imported database read-only. Page commands never write.
func Open(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotImported
	}

	db, err := sql.Open("sqlite3", fileURI(dbPath, "mode=ro"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var exists bool
	err = withRetry(func() error {
		var err error
		exists, err = imported(db)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking database: %w", err)
	}
	if !exists {
		db.Close()
		return nil, ErrNotImported
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func imported(db *sql.DB) (bool, error) {
	// Meta is written last by an import, so its presence marks a complete one.
	row := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'Meta'")
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM Meta WHERE key = ?", metaImportedAt).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// withRetry runs fn, retrying while another connection holds the database.
func withRetry(fn func() error) error {
	return retry.Do(
		fn,
		retry.Attempts(openAttempts),
		retry.Delay(openDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isBusy),
	)
}

func isBusy(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}
