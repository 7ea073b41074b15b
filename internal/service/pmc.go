package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"trainingload/internal/analysis"
	"trainingload/internal/pmc"
	"trainingload/internal/store"
)

// PMCOptions configures the models built by a PMCService
type PMCOptions struct {
	Athlete string
	// Zero day counts use the athlete settings, re-read on every recompute
	LongTermDays  int
	ShortTermDays int
	// BalanceToday forces the balance onto the same day regardless of the
	// athlete setting
	BalanceToday bool
	Spec         pmc.Specification
}

// PMCService owns one training load model per metric, kept current by
// store notifications
type PMCService struct {
	store *store.DB
	opts  PMCOptions

	mu     sync.Mutex
	models map[string]*pmc.Model
	unsubs []func()
}

// NewPMCService creates a PMC query service
func NewPMCService(db *store.DB, opts PMCOptions) *PMCService {
	return &PMCService{
		store:  db,
		opts:   opts,
		models: make(map[string]*pmc.Model),
	}
}

// Close stops listening for store changes
func (s *PMCService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.models = make(map[string]*pmc.Model)
}

// balanceSetting overrides the show-today flag of the athlete settings
type balanceSetting struct {
	pmc.Settings
	today bool
}

func (b balanceSetting) ShowBalanceToday() bool {
	return b.today || b.Settings.ShowBalanceToday()
}

// guardedModel forwards store notifications under the service lock
type guardedModel struct {
	mu    *sync.Mutex
	model *pmc.Model
}

func (g guardedModel) RideAdded(int64)         { g.invalidate() }
func (g guardedModel) RideDeleted(int64)       { g.invalidate() }
func (g guardedModel) RefreshUpdate(time.Time) { g.invalidate() }
func (g guardedModel) SeasonsChanged()         { g.invalidate() }

func (g guardedModel) invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.model.Invalidate()
}

// model returns the model for metric, creating it on first use.
// Called with s.mu held.
func (s *PMCService) model(metric string) *pmc.Model {
	if m, ok := s.models[metric]; ok {
		return m
	}

	athlete := s.store.Athlete(s.opts.Athlete)
	athlete.Settings = balanceSetting{Settings: athlete.Settings, today: s.opts.BalanceToday}

	m := pmc.New(athlete, metric, s.opts.Spec, orDefault(s.opts.ShortTermDays), orDefault(s.opts.LongTermDays))
	s.models[metric] = m
	s.unsubs = append(s.unsubs, s.store.Subscribe(guardedModel{mu: &s.mu, model: m}))
	return m
}

func orDefault(days int) int {
	if days <= 0 {
		return pmc.UseDefault
	}
	return days
}

// Summary is the state of the model on one day
type Summary struct {
	Date          time.Time
	Metric        string
	LongTermDays  int
	ShortTermDays int

	Stress        float64
	LongTermLoad  float64
	ShortTermLoad float64
	Balance       float64
	RampRate      float64

	LongTermColor  lipgloss.Color
	ShortTermColor lipgloss.Color
	BalanceColor   lipgloss.Color
	RampRateColor  lipgloss.Color

	Form  string
	Empty bool // no rides or seeds at all
}

// Summary returns the five model values on date
func (s *PMCService) Summary(metric string, date time.Time, fallback lipgloss.Color) (*Summary, error) {
	if err := checkMetric(metric); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.model(metric)

	sum := &Summary{
		Date:          date,
		Metric:        metric,
		LongTermDays:  m.LongTermDays(),
		ShortTermDays: m.ShortTermDays(),
		Stress:        m.DailyStress(date),
		LongTermLoad:  m.LongTermLoad(date),
		ShortTermLoad: m.ShortTermLoad(date),
		Balance:       m.Balance(date),
		RampRate:      m.RampRate(date),
		Empty:         m.Days() == 0,
	}
	sum.LongTermColor = pmc.LongTermColor(sum.LongTermLoad, fallback)
	sum.ShortTermColor = pmc.ShortTermColor(sum.ShortTermLoad, fallback)
	sum.BalanceColor = pmc.BalanceColor(sum.Balance, fallback)
	sum.RampRateColor = pmc.RampRateColor(sum.RampRate, fallback)
	sum.Form = analysis.BalanceDescription(sum.Balance)
	return sum, nil
}

// History returns the model rows from from to to inclusive. Days outside
// the model are returned as zero rows so the range is always complete.
func (s *PMCService) History(metric string, from, to time.Time) ([]pmc.Day, error) {
	if err := checkMetric(metric); err != nil {
		return nil, err
	}
	from = civil(from)
	to = civil(to)
	if to.Before(from) {
		return nil, fmt.Errorf("history range ends %s before it starts %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.model(metric)

	var rows []pmc.Day
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		rows = append(rows, pmc.Day{
			Date:          day,
			Stress:        m.DailyStress(day),
			LongTermLoad:  m.LongTermLoad(day),
			ShortTermLoad: m.ShortTermLoad(day),
			Balance:       m.Balance(day),
			RampRate:      m.RampRate(day),
		})
	}
	return rows, nil
}

// Series returns every day of the model
func (s *PMCService) Series(metric string) ([]pmc.Day, error) {
	if err := checkMetric(metric); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model(metric).Series(), nil
}

func checkMetric(metric string) error {
	if metric == "" {
		return fmt.Errorf("no stress metric selected")
	}
	return nil
}

// civil drops the time of day, keeping the calendar day of t's location
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
