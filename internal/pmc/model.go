// Package pmc implements the Performance Manager Chart: a daily training
// load model built from sparse, dated stress scores.
//
// Chronic (long term) and acute (short term) load are exponentially decayed
// sums of daily stress. Balance is chronic minus acute load and ramp rate is
// the change in chronic load over the trailing short term window. The model
// is rebuilt in full whenever it has been invalidated and is then queried.
//
// A Model is not safe for concurrent use; callers serialize access.
package pmc

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"
)

// decayTailDays extends the model past the last observation so the decay
// of chronic load remains visible.
const decayTailDays = 365

type dayState uint8

const (
	computed dayState = iota
	seeded
)

// Day is one row of the model output.
type Day struct {
	Date          time.Time
	Stress        float64
	LongTermLoad  float64
	ShortTermLoad float64
	Balance       float64
	RampRate      float64
}

// Model is the training load model for one metric and one ride filter.
type Model struct {
	athlete Athlete
	spec    Specification
	metric  string

	stsDays     int
	ltsDays     int
	stsDefaults bool
	ltsDefaults bool

	stale bool

	start time.Time
	end   time.Time
	days  int

	state  []dayState
	stress []float64
	lts    []float64
	sts    []float64
	sb     []float64 // one extra slot for balance shown on the following day
	rr     []float64
}

// New creates a model and computes it. A stsDays or ltsDays value of
// UseDefault (or any value <= 0) is looked up in the athlete settings, and
// looked up again on every recompute.
func New(athlete Athlete, metric string, spec Specification, stsDays, ltsDays int) *Model {
	if spec == nil {
		spec = All
	}
	m := &Model{
		athlete: athlete,
		spec:    spec,
		metric:  metric,
		stsDays: stsDays,
		ltsDays: ltsDays,
		stale:   true,
	}
	if ltsDays <= 0 {
		m.ltsDefaults = true
		m.ltsDays = athlete.longTermDays()
	}
	if stsDays <= 0 {
		m.stsDefaults = true
		m.stsDays = athlete.shortTermDays()
	}

	m.refresh()
	return m
}

// Invalidate marks the model stale. The next query recomputes it.
func (m *Model) Invalidate() {
	m.stale = true
}

// RideAdded invalidates the model.
func (m *Model) RideAdded(int64) { m.Invalidate() }

// RideDeleted invalidates the model.
func (m *Model) RideDeleted(int64) { m.Invalidate() }

// RefreshUpdate invalidates the model.
func (m *Model) RefreshUpdate(time.Time) { m.Invalidate() }

// SeasonsChanged invalidates the model.
func (m *Model) SeasonsChanged() { m.Invalidate() }

// Stale reports whether the next query will recompute the model.
func (m *Model) Stale() bool {
	return m.stale
}

// Metric returns the name of the stress metric the model aggregates.
func (m *Model) Metric() string {
	return m.metric
}

// LongTermDays returns the effective chronic load time constant.
func (m *Model) LongTermDays() int {
	m.refresh()
	return m.ltsDays
}

// ShortTermDays returns the effective acute load time constant.
func (m *Model) ShortTermDays() int {
	m.refresh()
	return m.stsDays
}

// Start returns the first day of the model, or the zero time when empty.
func (m *Model) Start() time.Time {
	m.refresh()
	return m.start
}

// End returns the last day of the model, or the zero time when empty.
func (m *Model) End() time.Time {
	m.refresh()
	return m.end
}

// Days returns the number of days covered by the model.
func (m *Model) Days() int {
	m.refresh()
	return m.days
}

// LongTermLoad returns chronic load on the given day.
func (m *Model) LongTermLoad(date time.Time) float64 {
	return m.valueAt(func() []float64 { return m.lts }, date)
}

// ShortTermLoad returns acute load on the given day.
func (m *Model) ShortTermLoad(date time.Time) float64 {
	return m.valueAt(func() []float64 { return m.sts }, date)
}

// DailyStress returns the summed stress of the rides on the given day.
func (m *Model) DailyStress(date time.Time) float64 {
	return m.valueAt(func() []float64 { return m.stress }, date)
}

// Balance returns the stress balance on the given day.
func (m *Model) Balance(date time.Time) float64 {
	return m.valueAt(func() []float64 { return m.sb }, date)
}

// RampRate returns the change in chronic load over the trailing short
// term window ending on the given day.
func (m *Model) RampRate(date time.Time) float64 {
	return m.valueAt(func() []float64 { return m.rr }, date)
}

// Series returns every day of the model in date order.
func (m *Model) Series() []Day {
	m.refresh()

	out := make([]Day, m.days)
	for i := range out {
		out[i] = Day{
			Date:          m.start.AddDate(0, 0, i),
			Stress:        m.stress[i],
			LongTermLoad:  m.lts[i],
			ShortTermLoad: m.sts[i],
			Balance:       m.sb[i],
			RampRate:      m.rr[i],
		}
	}
	return out
}

// indexOf returns the day offset of date, or -1 outside the model.
func (m *Model) indexOf(date time.Time) int {
	m.refresh()

	if m.days == 0 {
		return -1
	}
	index := daysBetween(m.start, civilDay(date))
	if index < 0 || index >= m.days {
		return -1
	}
	return index
}

// valueAt reads series only after indexOf has refreshed the model, since a
// refresh replaces every slice.
func (m *Model) valueAt(series func() []float64, date time.Time) float64 {
	index := m.indexOf(date)
	if index == -1 {
		return 0
	}
	return series()[index]
}

func (m *Model) refresh() {
	if !m.stale {
		return
	}
	began := time.Now()

	// settings may have changed since the last computation
	if m.ltsDefaults {
		m.ltsDays = m.athlete.longTermDays()
	}
	if m.stsDefaults {
		m.stsDays = m.athlete.shortTermDays()
	}

	rides := m.athlete.rides()
	seasons := m.athlete.seasons()

	if !m.resolveSpan(rides, seasons) {
		m.reset(0)
		m.stale = false
		log.WithField("metric", m.metric).Debug("pmc: no rides or seeds, model is empty")
		return
	}
	m.reset(daysBetween(m.start, m.end) + 1)

	for _, s := range seasons {
		seed, ok := declaredSeed(s)
		if !ok {
			continue
		}
		offset := daysBetween(m.start, civilDay(s.Start()))
		m.state[offset] = seeded
		m.lts[offset] = seed
		m.sts[offset] = seed
	}

	var skipped int
	for _, r := range rides {
		if !m.spec.Pass(r) {
			continue
		}
		offset := daysBetween(m.start, civilDay(r.Date()))
		if offset < 0 || offset >= m.days {
			continue
		}
		value := r.Metric(m.metric)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			skipped++
			continue
		}
		m.stress[offset] += value
	}

	m.compute()
	m.stale = false

	fields := log.Fields{
		"metric":  m.metric,
		"days":    m.days,
		"lts":     m.ltsDays,
		"sts":     m.stsDays,
		"elapsed": time.Since(began),
	}
	if skipped > 0 {
		fields["skipped"] = skipped
		log.WithFields(fields).Warn("pmc: ignored non-finite stress values")
		return
	}
	log.WithFields(fields).Debug("pmc: refreshed")
}

// resolveSpan sets start and end from the earliest and latest seed or ride.
// It reports false when there is nothing to model.
func (m *Model) resolveSpan(rides []Ride, seasons []Season) bool {
	var first, last time.Time
	found := false
	extend := func(t time.Time) {
		day := civilDay(t)
		if !found || day.Before(first) {
			first = day
		}
		if !found || day.After(last) {
			last = day
		}
		found = true
	}

	for _, s := range seasons {
		if _, ok := declaredSeed(s); ok {
			extend(s.Start())
		}
	}
	for _, r := range rides {
		extend(r.Date())
	}

	if !found {
		m.start, m.end = time.Time{}, time.Time{}
		return false
	}
	m.start = first
	m.end = last.AddDate(0, 0, decayTailDays)
	return true
}

func (m *Model) reset(days int) {
	if days == 0 {
		m.start, m.end = time.Time{}, time.Time{}
	}
	m.days = days
	m.state = make([]dayState, days)
	m.stress = make([]float64, days)
	m.lts = make([]float64, days)
	m.sts = make([]float64, days)
	m.rr = make([]float64, days)
	if days == 0 {
		m.sb = make([]float64, 0)
		return
	}
	m.sb = make([]float64, days+1)
}

// compute runs the decay recurrence, ramp rate and balance over every day.
func (m *Model) compute() {
	longDecay := math.Exp(-1.0 / float64(m.ltsDays))
	shortDecay := math.Exp(-1.0 / float64(m.stsDays))

	shift := 1
	if m.athlete.showBalanceToday() {
		shift = 0
	}

	var rollingStress float64
	for day := 0; day < m.days; day++ {
		// a seeded day keeps its seed as is
		if m.state[day] == computed {
			var lastLTS, lastSTS float64
			if day > 0 {
				lastLTS = m.lts[day-1]
				lastSTS = m.sts[day-1]
			}
			m.lts[day] = m.stress[day]*(1.0-longDecay) + lastLTS*longDecay
			m.sts[day] = m.stress[day]*(1.0-shortDecay) + lastSTS*shortDecay
		}

		if day > 0 {
			rollingStress += m.lts[day] - m.lts[day-1]
			if day > m.stsDays {
				rollingStress -= m.lts[day-m.stsDays] - m.lts[day-m.stsDays-1]
			}
			m.rr[day] = rollingStress
		}

		m.sb[day+shift] = m.lts[day] - m.sts[day]
	}
}

// declaredSeed returns the season's seed when it pins the model. A seed of
// zero neither pins a day nor widens the span.
func declaredSeed(s Season) (float64, bool) {
	seed, ok := s.Seed()
	if !ok || seed == 0 || math.IsNaN(seed) {
		return 0, false
	}
	return seed, true
}

// civilDay returns the calendar day of t, in t's own location, as midnight UTC.
func civilDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of days from a to b. Both must be civil
// days. Durations saturate near 292 years so the count uses Unix seconds.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60
