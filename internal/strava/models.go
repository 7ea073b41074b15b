package strava

import "time"

// rideTypes are the sport types imported as rides
var rideTypes = map[string]bool{
	"Ride":              true,
	"VirtualRide":       true,
	"GravelRide":        true,
	"MountainBikeRide":  true,
	"EBikeRide":         true,
	"EMountainBikeRide": true,
}

// Activity represents a Strava activity from the API
type Activity struct {
	ID                   int64     `json:"id"`
	Athlete              Athlete   `json:"athlete"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	SportType            string    `json:"sport_type"`
	StartDate            time.Time `json:"start_date"`
	StartDateLocal       time.Time `json:"start_date_local"`
	Timezone             string    `json:"timezone"`
	Distance             float64   `json:"distance"`     // meters
	MovingTime           int       `json:"moving_time"`  // seconds
	ElapsedTime          int       `json:"elapsed_time"` // seconds
	AverageHeartrate     float64   `json:"average_heartrate"`
	AverageWatts         float64   `json:"average_watts"`
	WeightedAverageWatts float64   `json:"weighted_average_watts"` // Strava's normalized power
	Kilojoules           float64   `json:"kilojoules"`
	DeviceWatts          bool      `json:"device_watts"`
	SufferScore          float64   `json:"suffer_score"`
	HasHeartrate         bool      `json:"has_heartrate"`
}

// Sport returns the sport type, falling back to the legacy type field
func (a Activity) Sport() string {
	if a.SportType != "" {
		return a.SportType
	}
	return a.Type
}

// IsRide reports whether the activity is a cycling activity
func (a Activity) IsRide() bool {
	return rideTypes[a.Sport()]
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// Streams represents activity stream data from the API
// Strava returns streams keyed by type when key_by_type=true
type Streams struct {
	Time      *StreamData[int] `json:"time"`
	Watts     *StreamData[int] `json:"watts"`
	Heartrate *StreamData[int] `json:"heartrate"`
}

// StreamData represents a single stream type
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// Len returns the length of the stream, or 0 if nil
func (s *Streams) Len() int {
	if s == nil || s.Time == nil {
		return 0
	}
	return len(s.Time.Data)
}

// HasHeartrate returns true if heartrate data exists
func (s *Streams) HasHeartrate() bool {
	return s != nil && s.Heartrate != nil && len(s.Heartrate.Data) > 0
}

// HasPower returns true if power data exists
func (s *Streams) HasPower() bool {
	return s != nil && s.Watts != nil && len(s.Watts.Data) > 0
}

// PowerSamples returns the power stream as floats
func (s *Streams) PowerSamples() []float64 {
	if !s.HasPower() {
		return nil
	}
	return toFloats(s.Watts.Data)
}

// HeartrateSamples returns the heart rate stream as floats
func (s *Streams) HeartrateSamples() []float64 {
	if !s.HasHeartrate() {
		return nil
	}
	return toFloats(s.Heartrate.Data)
}

func toFloats(data []int) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}
