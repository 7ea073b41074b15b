package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Sync state keys
const (
	// SyncKeyNewestRide is the start time of the newest ride fetched from a source
	SyncKeyNewestRide = "newest_ride"
)

// SyncState returns the value stored for key of source, or "" when unset
func (db *DB) SyncState(source, key string) (string, error) {
	var value string
	err := db.QueryRow(`
		SELECT value FROM sync_state WHERE source = ? AND key = ?
	`, source, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading sync state %s/%s: %w", source, key, err)
	}
	return value, nil
}

// SetSyncState stores value for key of source
func (db *DB) SetSyncState(source, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (source, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(source, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, source, key, value)
	if err != nil {
		return fmt.Errorf("saving sync state %s/%s: %w", source, key, err)
	}
	return nil
}

// NewestSynced returns the start of the newest ride synced from source. It
// is zero when nothing was synced yet or the stored value is unreadable, so
// the next sync starts over.
func (db *DB) NewestSynced(source string) (time.Time, error) {
	value, err := db.SyncState(source, SyncKeyNewestRide)
	if err != nil || value == "" {
		return time.Time{}, err
	}
	newest, err := time.Parse(timeFormat, value)
	if err != nil {
		log.WithFields(log.Fields{"source": source, "value": value}).Warn("store: unreadable sync cursor, starting over")
		return time.Time{}, nil
	}
	return newest, nil
}

// SetNewestSynced moves the sync cursor of source forward. An older time
// than the stored one is ignored.
func (db *DB) SetNewestSynced(source string, newest time.Time) error {
	current, err := db.NewestSynced(source)
	if err != nil {
		return err
	}
	if !newest.After(current) {
		return nil
	}
	return db.SetSyncState(source, SyncKeyNewestRide, formatTime(newest))
}
