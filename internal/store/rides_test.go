package store

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }

func testRide(externalID string, start time.Time, tss float64) *Ride {
	return &Ride{
		Source:         SourceStrava,
		ExternalID:     externalID,
		Name:           "Morning Ride",
		Sport:          "Ride",
		StartDate:      start,
		StartDateLocal: start,
		Distance:       40000,
		MovingTime:     3600,
		ElapsedTime:    3900,
		AveragePower:   float64Ptr(210),
		Metrics:        map[string]float64{"tss": tss},
	}
}

func TestUpsertRide(t *testing.T) {
	db := NewTestStore(t)
	start := time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)

	id, err := db.UpsertRide(testRide("1001", start, 80))
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := db.GetRide(id)
	require.NoError(t, err)
	assert.Equal(t, "1001", got.ExternalID)
	assert.True(t, start.Equal(got.StartDateLocal))
	require.NotNil(t, got.AveragePower)
	assert.Equal(t, 210.0, *got.AveragePower)
	assert.Nil(t, got.AverageHeartrate)
	assert.Nil(t, got.SufferScore)
	assert.Equal(t, map[string]float64{"tss": 80}, got.Metrics)

	// same source and external ID updates in place
	updated := testRide("1001", start, 95)
	updated.Name = "Renamed"
	id2, err := db.UpsertRide(updated)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	got, err = db.GetRide(id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 95.0, got.Metrics["tss"])

	counts, err := db.CountRides()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{SourceStrava: 1}, counts)
}

func TestUpsertRideSkipsNonFiniteMetrics(t *testing.T) {
	db := NewTestStore(t)
	r := testRide("1", time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC), 50)
	r.Metrics["trimp"] = math.NaN()
	r.Metrics["hrss"] = math.Inf(1)

	id, err := db.UpsertRide(r)
	require.NoError(t, err)

	got, err := db.GetRide(id)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"tss": 50}, got.Metrics)
}

func TestGetRideNotFound(t *testing.T) {
	db := NewTestStore(t)
	_, err := db.GetRide(42)
	assert.ErrorIs(t, err, ErrRideNotFound)
}

func TestDeleteRide(t *testing.T) {
	db := NewTestStore(t)
	id, err := db.UpsertRide(testRide("1", time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC), 50))
	require.NoError(t, err)

	require.NoError(t, db.DeleteRide(id))
	_, err = db.GetRide(id)
	assert.ErrorIs(t, err, ErrRideNotFound)
	assert.ErrorIs(t, db.DeleteRide(id), ErrRideNotFound)

	// metrics cascade with the ride
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ride_metrics`).Scan(&n))
	assert.Zero(t, n)
}

func TestListRides(t *testing.T) {
	db := NewTestStore(t)
	later := time.Date(2024, 3, 5, 7, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

	_, err := db.UpsertRide(testRide("2", later, 60))
	require.NoError(t, err)
	_, err = db.UpsertRide(testRide("1", earlier, 40))
	require.NoError(t, err)

	rides, err := db.ListRides()
	require.NoError(t, err)
	require.Len(t, rides, 2)
	assert.Equal(t, "1", rides[0].ExternalID)
	assert.Equal(t, "2", rides[1].ExternalID)
	assert.Equal(t, 40.0, rides[0].Metrics["tss"])
	assert.Equal(t, 60.0, rides[1].Metrics["tss"])
}

func TestSaveRideMetrics(t *testing.T) {
	db := NewTestStore(t)
	id, err := db.UpsertRide(testRide("1", time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC), 50))
	require.NoError(t, err)

	require.NoError(t, db.SaveRideMetrics(id, map[string]float64{"trimp": 120}))
	got, err := db.GetRide(id)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"trimp": 120}, got.Metrics)

	assert.ErrorIs(t, db.SaveRideMetrics(id+100, nil), ErrRideNotFound)
}
