package pmc

import "time"

// Default time constants used when settings are absent or zero.
const (
	DefaultLongTermDays  = 42
	DefaultShortTermDays = 7

	// UseDefault asks New to look the constant up in the athlete settings.
	UseDefault = -1
)

// Ride is a single dated observation carrying named stress metrics.
type Ride interface {
	Date() time.Time
	Metric(name string) float64
	Sport() string
}

// RideSource provides the full, unfiltered ride history of an athlete.
type RideSource interface {
	Rides() []Ride
}

// Season is a training season that may declare a seed for chronic and acute
// load at its start date.
type Season interface {
	Start() time.Time
	Seed() (float64, bool)
}

// SeasonSource provides the seasons of an athlete.
type SeasonSource interface {
	Seasons() []Season
}

// Settings provides the per-athlete model parameters. Zero values mean
// "not configured" and are replaced by the package defaults.
type Settings interface {
	LongTermDays() int
	ShortTermDays() int
	ShowBalanceToday() bool
}

// Athlete bundles the external collaborators a Model reads from.
// Any of them may be nil.
type Athlete struct {
	Rides    RideSource
	Seasons  SeasonSource
	Settings Settings
}

func (a Athlete) rides() []Ride {
	if a.Rides == nil {
		return nil
	}
	return a.Rides.Rides()
}

func (a Athlete) seasons() []Season {
	if a.Seasons == nil {
		return nil
	}
	return a.Seasons.Seasons()
}

func (a Athlete) longTermDays() int {
	if a.Settings == nil {
		return DefaultLongTermDays
	}
	if days := a.Settings.LongTermDays(); days > 0 {
		return days
	}
	return DefaultLongTermDays
}

func (a Athlete) shortTermDays() int {
	if a.Settings == nil {
		return DefaultShortTermDays
	}
	if days := a.Settings.ShortTermDays(); days > 0 {
		return days
	}
	return DefaultShortTermDays
}

func (a Athlete) showBalanceToday() bool {
	return a.Settings != nil && a.Settings.ShowBalanceToday()
}

// StaticSettings is a fixed Settings value.
type StaticSettings struct {
	LongTerm     int
	ShortTerm    int
	BalanceToday bool
}

func (s StaticSettings) LongTermDays() int      { return s.LongTerm }
func (s StaticSettings) ShortTermDays() int     { return s.ShortTerm }
func (s StaticSettings) ShowBalanceToday() bool { return s.BalanceToday }
