package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrRideNotFound is returned when a ride doesn't exist
var ErrRideNotFound = errors.New("ride not found")

// ErrSeasonNotFound is returned when a season doesn't exist
var ErrSeasonNotFound = errors.New("season not found")

// DB wraps the SQLite connection and notifies listeners of ride and
// season changes.
type DB struct {
	*sql.DB

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// Open opens the SQLite database, creating it if necessary.
// The database is stored at ~/.pmc/data.db
func Open() (*DB, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("getting db path: %w", err)
	}
	return OpenPath(dbPath)
}

// OpenPath opens the SQLite database at path and migrates it to the
// latest schema.
func OpenPath(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// foreign keys are a per-connection pragma, so set them in the DSN
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrateSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &DB{DB: sqlDB, listeners: make(map[int]Listener)}, nil
}

// getDBPath returns the path to the SQLite database file
func getDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".pmc", "data.db"), nil
}
