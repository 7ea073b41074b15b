package service

import (
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainingload/internal/pmc"
	"trainingload/internal/store"
)

const fallback = lipgloss.Color("#FFFFFF")

func storeRide(t *testing.T, db *store.DB, id string, day time.Time, tss float64) {
	t.Helper()
	_, err := db.UpsertRide(&store.Ride{
		Source:         store.SourceStrava,
		ExternalID:     id,
		Name:           "Ride " + id,
		Sport:          "Ride",
		StartDate:      day.Add(7 * time.Hour),
		StartDateLocal: day.Add(7 * time.Hour),
		MovingTime:     3600,
		Metrics:        map[string]float64{"tss": tss},
	})
	require.NoError(t, err)
}

func TestPMCServiceSummary(t *testing.T) {
	db := store.NewTestStore(t)
	svc := NewPMCService(db, PMCOptions{Athlete: "alice"})
	defer svc.Close()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	sum, err := svc.Summary("tss", day, fallback)
	require.NoError(t, err)
	assert.True(t, sum.Empty)
	assert.Zero(t, sum.LongTermLoad)

	// the model follows store changes without being rebuilt by hand
	storeRide(t, db, "1", day, 400)
	sum, err = svc.Summary("tss", day, fallback)
	require.NoError(t, err)
	assert.False(t, sum.Empty)
	assert.Equal(t, 400.0, sum.Stress)
	assert.InDelta(t, 400*(1-math.Exp(-1.0/42)), sum.LongTermLoad, 1e-9)
	assert.InDelta(t, 400*(1-math.Exp(-1.0/7)), sum.ShortTermLoad, 1e-9)
	assert.Equal(t, 42, sum.LongTermDays)
	assert.Equal(t, 7, sum.ShortTermDays)

	// balance is shown on the following day by default
	assert.Zero(t, sum.Balance)
	next, err := svc.Summary("tss", day.AddDate(0, 0, 1), fallback)
	require.NoError(t, err)
	assert.InDelta(t, sum.LongTermLoad-sum.ShortTermLoad, next.Balance, 1e-9)
	assert.Equal(t, pmc.ColorRisk, next.BalanceColor)
	assert.Equal(t, fallback, next.ShortTermColor)
	assert.Equal(t, "Very fatigued - rest needed", next.Form)
}

func TestPMCServiceOptions(t *testing.T) {
	db := store.NewTestStore(t)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	storeRide(t, db, "1", day, 100)

	svc := NewPMCService(db, PMCOptions{Athlete: "alice", LongTermDays: 28, BalanceToday: true})
	defer svc.Close()

	require.NoError(t, db.SetSetting("alice", store.SettingShortTermDays, "5"))
	sum, err := svc.Summary("tss", day, fallback)
	require.NoError(t, err)
	assert.Equal(t, 28, sum.LongTermDays)
	assert.Equal(t, 5, sum.ShortTermDays)
	assert.InDelta(t, sum.LongTermLoad-sum.ShortTermLoad, sum.Balance, 1e-9)
}

func TestPMCServiceSeasonSeed(t *testing.T) {
	db := store.NewTestStore(t)
	svc := NewPMCService(db, PMCOptions{Athlete: "alice"})
	defer svc.Close()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	storeRide(t, db, "1", day.AddDate(0, 0, 1), 0)

	seed := 60.0
	require.NoError(t, db.SaveSeason(&store.Season{Name: "Build", Start: day, Seed: &seed}))

	sum, err := svc.Summary("tss", day, fallback)
	require.NoError(t, err)
	assert.Equal(t, 60.0, sum.LongTermLoad)
	assert.Equal(t, 60.0, sum.ShortTermLoad)

	next, err := svc.Summary("tss", day.AddDate(0, 0, 1), fallback)
	require.NoError(t, err)
	assert.InDelta(t, 60*math.Exp(-1.0/42), next.LongTermLoad, 1e-9)
}

func TestPMCServiceHistory(t *testing.T) {
	db := store.NewTestStore(t)
	svc := NewPMCService(db, PMCOptions{Athlete: "alice"})
	defer svc.Close()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	storeRide(t, db, "1", day, 50)
	storeRide(t, db, "2", day.AddDate(0, 0, 2), 80)

	rows, err := svc.History("tss", day.AddDate(0, 0, -2), day.AddDate(0, 0, 3).Add(20*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Zero(t, rows[0].LongTermLoad)
	assert.Equal(t, 50.0, rows[2].Stress)
	assert.Equal(t, 80.0, rows[4].Stress)
	assert.Equal(t, day.AddDate(0, 0, 3), rows[5].Date)

	_, err = svc.History("tss", day, day.AddDate(0, 0, -1))
	assert.Error(t, err)
	_, err = svc.History("", day, day)
	assert.Error(t, err)

	series, err := svc.Series("tss")
	require.NoError(t, err)
	assert.Len(t, series, 2+1+365)
}

func TestPMCServiceHistoryAfterEmptyStore(t *testing.T) {
	db := store.NewTestStore(t)
	svc := NewPMCService(db, PMCOptions{Athlete: "alice"})
	defer svc.Close()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows, err := svc.History("tss", day, day.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Zero(t, rows[0].Stress)
	assert.Zero(t, rows[0].LongTermLoad)

	// a long lived service picks up a later sync
	storeRide(t, db, "1", day, 100)
	db.NotifyRefresh()

	rows, err = svc.History("tss", day, day.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 100.0, rows[0].Stress)
	assert.InDelta(t, 100*(1-math.Exp(-1.0/42)), rows[0].LongTermLoad, 1e-9)
	assert.InDelta(t, 100*(1-math.Exp(-1.0/7)), rows[0].ShortTermLoad, 1e-9)
	assert.Greater(t, rows[1].Balance, -100.0)
	assert.NotZero(t, rows[1].Balance)
	assert.NotZero(t, rows[2].RampRate)
}

func TestPMCServiceZeroSeed(t *testing.T) {
	db := store.NewTestStore(t)
	svc := NewPMCService(db, PMCOptions{Athlete: "alice"})
	defer svc.Close()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	storeRide(t, db, "1", day, 100)

	zero := 0.0
	require.NoError(t, db.SaveSeason(&store.Season{Name: "Base", Start: day.AddDate(0, 0, 3), Seed: &zero}))

	sum, err := svc.Summary("tss", day.AddDate(0, 0, 3), fallback)
	require.NoError(t, err)
	decay := math.Exp(-1.0 / 42)
	assert.InDelta(t, 100*(1-decay)*math.Pow(decay, 3), sum.LongTermLoad, 1e-9)
}
