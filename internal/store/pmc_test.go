package store

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainingload/internal/pmc"
)

func TestAthleteModel(t *testing.T) {
	db := NewTestStore(t)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	model := pmc.New(db.Athlete("alice"), "tss", nil, pmc.UseDefault, pmc.UseDefault)
	defer db.Subscribe(model)()
	assert.Zero(t, model.Days())

	_, err := db.UpsertRide(testRide("1", day.Add(7*time.Hour), 100))
	require.NoError(t, err)
	assert.True(t, model.Stale())

	ltsDecay := 1 - math.Exp(-1.0/42)
	assert.InDelta(t, 100*ltsDecay, model.LongTermLoad(day), 1e-9)
	assert.False(t, model.Stale())

	// a seeded season before the first ride extends the span backwards
	seedStart := day.AddDate(0, 0, -10)
	require.NoError(t, db.SaveSeason(&Season{Name: "Base", Start: seedStart, Seed: float64Ptr(40)}))
	assert.Equal(t, seedStart, model.Start())
	assert.Equal(t, 40.0, model.LongTermLoad(seedStart))
	assert.Equal(t, 40.0, model.ShortTermLoad(seedStart))

	// settings are re-read for defaulted constants
	require.NoError(t, db.SetSetting("alice", SettingLongTermDays, "28"))
	assert.Equal(t, 28, model.LongTermDays())
}
