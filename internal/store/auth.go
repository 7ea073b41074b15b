package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoAuth is returned when an athlete has no Strava tokens stored
var ErrNoAuth = errors.New("no authentication stored")

// GetAuth returns the Strava tokens stored for athlete
func (db *DB) GetAuth(athlete string) (*Auth, error) {
	auth := Auth{Athlete: athlete}
	var expiresAt int64
	err := db.QueryRow(`
		SELECT strava_athlete_id, access_token, refresh_token, expires_at
		FROM auth
		WHERE athlete = ?
	`, athlete).Scan(&auth.AthleteID, &auth.AccessToken, &auth.RefreshToken, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("athlete %q: %w", athlete, ErrNoAuth)
	}
	if err != nil {
		return nil, fmt.Errorf("reading auth of %q: %w", athlete, err)
	}

	auth.ExpiresAt = time.Unix(expiresAt, 0)
	return &auth, nil
}

// SaveAuth stores the tokens of auth.Athlete, replacing earlier ones
func (db *DB) SaveAuth(auth *Auth) error {
	if auth.Athlete == "" {
		return errors.New("saving auth: athlete name is empty")
	}
	_, err := db.Exec(`
		INSERT INTO auth (athlete, strava_athlete_id, access_token, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(athlete) DO UPDATE SET
			strava_athlete_id = excluded.strava_athlete_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, auth.Athlete, auth.AthleteID, auth.AccessToken, auth.RefreshToken, auth.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("saving auth of %q: %w", auth.Athlete, err)
	}
	return nil
}

// UpdateTokens replaces the tokens of athlete after a refresh. The Strava
// athlete ID is kept.
func (db *DB) UpdateTokens(athlete, accessToken, refreshToken string, expiresAt time.Time) error {
	result, err := db.Exec(`
		UPDATE auth
		SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE athlete = ?
	`, accessToken, refreshToken, expiresAt.Unix(), athlete)
	if err != nil {
		return fmt.Errorf("updating tokens of %q: %w", athlete, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating tokens of %q: %w", athlete, err)
	}
	if n == 0 {
		return fmt.Errorf("athlete %q: %w", athlete, ErrNoAuth)
	}
	return nil
}
