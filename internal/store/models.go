package store

import (
	"math"
	"time"
)

// Ride sources
const (
	SourceStrava = "strava"
	SourceFIT    = "fit"
)

// Auth holds the Strava tokens of a local athlete
type Auth struct {
	// Athlete is the local athlete name the tokens belong to
	Athlete string `db:"athlete"`
	// AthleteID is the Strava athlete ID
	AthleteID    int64     `db:"strava_athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Ride represents a recorded ride and its computed stress metrics
type Ride struct {
	ID               int64     `db:"id"`
	Source           string    `db:"source"`      // "strava" or "fit"
	ExternalID       string    `db:"external_id"` // Strava activity ID or FIT file hash
	Name             string    `db:"name"`
	Sport            string    `db:"sport"`
	StartDate        time.Time `db:"start_date"`
	StartDateLocal   time.Time `db:"start_date_local"` // wall clock time, date components are local
	Timezone         string    `db:"timezone"`
	Distance         float64   `db:"distance"`     // meters
	MovingTime       int       `db:"moving_time"`  // seconds
	ElapsedTime      int       `db:"elapsed_time"` // seconds
	AverageHeartrate *float64  `db:"average_heartrate"`
	AveragePower     *float64  `db:"average_power"`
	NormalizedPower  *float64  `db:"normalized_power"`
	SufferScore      *int      `db:"suffer_score"`

	Metrics map[string]float64
}

// Season is a named training season. A non-nil Seed declares the chronic
// and acute load on the start date.
type Season struct {
	ID    string
	Name  string
	Start time.Time
	End   time.Time // zero when open ended
	Seed  *float64
}

// pmcRide adapts a stored ride to the training load model.
type pmcRide struct{ *Ride }

func (r pmcRide) Date() time.Time { return r.StartDateLocal }
func (r pmcRide) Sport() string   { return r.Ride.Sport }

func (r pmcRide) Metric(name string) float64 {
	if v, ok := r.Metrics[name]; ok {
		return v
	}
	return 0
}

// pmcSeason adapts a stored season to the training load model.
type pmcSeason struct{ *Season }

func (s pmcSeason) Start() time.Time { return s.Season.Start }

func (s pmcSeason) Seed() (float64, bool) {
	if s.Season.Seed == nil || *s.Season.Seed == 0 || math.IsNaN(*s.Season.Seed) {
		return 0, false
	}
	return *s.Season.Seed, true
}

// timeFormat is how timestamps are stored in TEXT columns
const timeFormat = time.RFC3339

func formatTime(t time.Time) string {
	return t.Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}
