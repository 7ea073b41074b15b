package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"
)

const rideColumns = `
	id, source, external_id, name, sport, start_date, start_date_local,
	timezone, distance, moving_time, elapsed_time, average_heartrate,
	average_power, normalized_power, suffer_score`

// UpsertRide inserts or updates a ride keyed by (source, external_id),
// replaces its metrics and notifies listeners. It returns the ride ID.
func (db *DB) UpsertRide(r *Ride) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(`
		INSERT INTO rides (
			source, external_id, name, sport, start_date, start_date_local,
			timezone, distance, moving_time, elapsed_time, average_heartrate,
			average_power, normalized_power, suffer_score, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(source, external_id) DO UPDATE SET
			name = excluded.name,
			sport = excluded.sport,
			start_date = excluded.start_date,
			start_date_local = excluded.start_date_local,
			timezone = excluded.timezone,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			average_heartrate = excluded.average_heartrate,
			average_power = excluded.average_power,
			normalized_power = excluded.normalized_power,
			suffer_score = excluded.suffer_score,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`,
		r.Source, r.ExternalID, r.Name, r.Sport,
		formatTime(r.StartDate), formatTime(r.StartDateLocal),
		r.Timezone, r.Distance, r.MovingTime, r.ElapsedTime,
		r.AverageHeartrate, r.AveragePower, r.NormalizedPower, r.SufferScore,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting ride: %w", err)
	}

	if err := replaceMetrics(tx, id, r.Metrics); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing ride: %w", err)
	}

	r.ID = id
	db.notifyRideAdded(id)
	return id, nil
}

// SaveRideMetrics replaces the stored metrics of a ride.
func (db *DB) SaveRideMetrics(rideID int64, metrics map[string]float64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT 1 FROM rides WHERE id = ?`, rideID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRideNotFound
	}
	if err != nil {
		return err
	}

	if err := replaceMetrics(tx, rideID, metrics); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	db.notifyRideAdded(rideID)
	return nil
}

func replaceMetrics(tx *sql.Tx, rideID int64, metrics map[string]float64) error {
	if _, err := tx.Exec(`DELETE FROM ride_metrics WHERE ride_id = ?`, rideID); err != nil {
		return fmt.Errorf("clearing metrics: %w", err)
	}
	for name, value := range metrics {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			log.WithFields(log.Fields{"ride": rideID, "metric": name}).Warn("store: skipping non-finite metric")
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO ride_metrics (ride_id, name, value, computed_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		`, rideID, name, value)
		if err != nil {
			return fmt.Errorf("saving metric %s: %w", name, err)
		}
	}
	return nil
}

// GetRide retrieves a ride and its metrics by ID
func (db *DB) GetRide(id int64) (*Ride, error) {
	row := db.QueryRow(`SELECT `+rideColumns+` FROM rides WHERE id = ?`, id)
	r, err := scanRide(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRideNotFound
	}
	if err != nil {
		return nil, err
	}

	metrics, err := db.rideMetrics(`WHERE ride_id = ?`, id)
	if err != nil {
		return nil, err
	}
	r.Metrics = metrics[id]
	if r.Metrics == nil {
		r.Metrics = map[string]float64{}
	}
	return r, nil
}

// DeleteRide removes a ride and its metrics and notifies listeners.
func (db *DB) DeleteRide(id int64) error {
	result, err := db.Exec(`DELETE FROM rides WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRideNotFound
	}
	db.notifyRideDeleted(id)
	return nil
}

// ListRides returns every ride in ascending local start order, with metrics.
func (db *DB) ListRides() ([]*Ride, error) {
	rows, err := db.Query(`SELECT ` + rideColumns + ` FROM rides ORDER BY start_date_local ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics, err := db.rideMetrics("")
	if err != nil {
		return nil, err
	}
	for _, r := range rides {
		r.Metrics = metrics[r.ID]
		if r.Metrics == nil {
			r.Metrics = map[string]float64{}
		}
	}
	return rides, nil
}

// CountRides returns the number of rides per source.
func (db *DB) CountRides() (map[string]int, error) {
	rows, err := db.Query(`SELECT source, COUNT(*) FROM rides GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		counts[source] = n
	}
	return counts, rows.Err()
}

func (db *DB) rideMetrics(where string, args ...any) (map[int64]map[string]float64, error) {
	query := strings.TrimSpace(`SELECT ride_id, name, value FROM ride_metrics ` + where)
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading metrics: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]map[string]float64)
	for rows.Next() {
		var id int64
		var name string
		var value float64
		if err := rows.Scan(&id, &name, &value); err != nil {
			return nil, err
		}
		if out[id] == nil {
			out[id] = make(map[string]float64)
		}
		out[id][name] = value
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRide(s scanner) (*Ride, error) {
	var r Ride
	var startDate, startDateLocal string
	var timezone sql.NullString
	var avgHR, avgPower, np sql.NullFloat64
	var suffer sql.NullInt64

	err := s.Scan(
		&r.ID, &r.Source, &r.ExternalID, &r.Name, &r.Sport,
		&startDate, &startDateLocal, &timezone,
		&r.Distance, &r.MovingTime, &r.ElapsedTime,
		&avgHR, &avgPower, &np, &suffer,
	)
	if err != nil {
		return nil, err
	}

	if r.StartDate, err = parseTime(startDate); err != nil {
		return nil, fmt.Errorf("ride %d: parsing start_date: %w", r.ID, err)
	}
	if r.StartDateLocal, err = parseTime(startDateLocal); err != nil {
		return nil, fmt.Errorf("ride %d: parsing start_date_local: %w", r.ID, err)
	}
	r.Timezone = timezone.String
	if avgHR.Valid {
		r.AverageHeartrate = &avgHR.Float64
	}
	if avgPower.Valid {
		r.AveragePower = &avgPower.Float64
	}
	if np.Valid {
		r.NormalizedPower = &np.Float64
	}
	if suffer.Valid {
		v := int(suffer.Int64)
		r.SufferScore = &v
	}
	return &r, nil
}
