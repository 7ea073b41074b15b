package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const dateFormat = "2006-01-02"

// SaveSeason inserts or updates a season. A season without an ID is given
// a new one.
func (db *DB) SaveSeason(s *Season) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	var end sql.NullString
	if !s.End.IsZero() {
		end = sql.NullString{String: s.End.Format(dateFormat), Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO seasons (id, name, start_date, end_date, seed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			seed = excluded.seed
	`, s.ID, s.Name, s.Start.Format(dateFormat), end, s.Seed)
	if err != nil {
		return fmt.Errorf("saving season: %w", err)
	}

	db.notifySeasonsChanged()
	return nil
}

// DeleteSeason removes a season by ID.
func (db *DB) DeleteSeason(id string) error {
	result, err := db.Exec(`DELETE FROM seasons WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSeasonNotFound
	}
	db.notifySeasonsChanged()
	return nil
}

// GetSeason retrieves a season by ID.
func (db *DB) GetSeason(id string) (*Season, error) {
	row := db.QueryRow(`
		SELECT id, name, start_date, end_date, seed FROM seasons WHERE id = ?
	`, id)
	s, err := scanSeason(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSeasonNotFound
	}
	return s, err
}

// ListSeasons returns all seasons ordered by start date.
func (db *DB) ListSeasons() ([]*Season, error) {
	rows, err := db.Query(`
		SELECT id, name, start_date, end_date, seed FROM seasons
		ORDER BY start_date ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seasons []*Season
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

func scanSeason(sc scanner) (*Season, error) {
	var s Season
	var start string
	var end sql.NullString
	var seed sql.NullFloat64

	if err := sc.Scan(&s.ID, &s.Name, &start, &end, &seed); err != nil {
		return nil, err
	}

	var err error
	if s.Start, err = parseDate(start); err != nil {
		return nil, fmt.Errorf("season %s: parsing start_date: %w", s.ID, err)
	}
	if end.Valid {
		if s.End, err = parseDate(end.String); err != nil {
			return nil, fmt.Errorf("season %s: parsing end_date: %w", s.ID, err)
		}
	}
	if seed.Valid {
		s.Seed = &seed.Float64
	}
	return &s, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateFormat, s)
}
