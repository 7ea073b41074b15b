package store

import (
	"database/sql"
	"errors"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Athlete setting keys read by the training load model
const (
	SettingLongTermDays  = "lts_days"
	SettingShortTermDays = "sts_days"
	SettingBalanceToday  = "sb_today"
)

// GetSetting returns a per-athlete setting.
// Returns empty string if the key doesn't exist
func (db *DB) GetSetting(athlete, key string) (string, error) {
	var value string
	err := db.QueryRow(`
		SELECT value FROM athlete_settings WHERE athlete = ? AND key = ?
	`, athlete, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting sets a per-athlete setting. Changing a model setting counts
// as a refresh so open models pick it up.
func (db *DB) SetSetting(athlete, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO athlete_settings (athlete, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(athlete, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, athlete, key, value)
	if err != nil {
		return err
	}
	db.NotifyRefresh()
	return nil
}

// ListSettings returns all settings of an athlete.
func (db *DB) ListSettings(athlete string) (map[string]string, error) {
	rows, err := db.Query(`
		SELECT key, value FROM athlete_settings WHERE athlete = ? ORDER BY key
	`, athlete)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// AthleteSettings reads model settings for one athlete on every call, so a
// model sees changes on its next recompute. Unreadable values count as
// unset.
type AthleteSettings struct {
	db      *DB
	athlete string
}

// Settings returns the model settings of an athlete.
func (db *DB) Settings(athlete string) *AthleteSettings {
	return &AthleteSettings{db: db, athlete: athlete}
}

func (s *AthleteSettings) LongTermDays() int {
	return s.intSetting(SettingLongTermDays)
}

func (s *AthleteSettings) ShortTermDays() int {
	return s.intSetting(SettingShortTermDays)
}

func (s *AthleteSettings) ShowBalanceToday() bool {
	value := s.get(SettingBalanceToday)
	if value == "" {
		return false
	}
	today, err := strconv.ParseBool(value)
	if err != nil {
		log.WithFields(log.Fields{"athlete": s.athlete, "value": value}).Warn("store: invalid sb_today setting")
		return false
	}
	return today
}

func (s *AthleteSettings) intSetting(key string) int {
	value := s.get(key)
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.WithFields(log.Fields{"athlete": s.athlete, "key": key, "value": value}).Warn("store: invalid integer setting")
		return 0
	}
	return n
}

func (s *AthleteSettings) get(key string) string {
	value, err := s.db.GetSetting(s.athlete, key)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("store: reading setting")
		return ""
	}
	return value
}
