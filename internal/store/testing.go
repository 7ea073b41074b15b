package store

import (
	"path/filepath"
	"testing"
)

// NewTestStore opens a migrated database in a temporary directory that is
// removed when the test ends.
// This is only intended for use in tests.
func NewTestStore(t testing.TB) *DB {
	t.Helper()

	db, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
