package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainingload/internal/analysis"
	"trainingload/internal/store"
	"trainingload/internal/strava"
)

type fakeClient struct {
	rides      []strava.Activity
	streams    map[int64]*strava.Streams
	streamErr  error
	afters     []time.Time
	streamReqs int
}

func (c *fakeClient) GetAllRides(_ context.Context, after time.Time, onProgress func(int)) ([]strava.Activity, error) {
	c.afters = append(c.afters, after)
	var out []strava.Activity
	for _, r := range c.rides {
		if r.StartDate.After(after) {
			out = append(out, r)
		}
	}
	if onProgress != nil {
		onProgress(len(out))
	}
	return out, nil
}

func (c *fakeClient) GetActivityStreams(_ context.Context, id int64) (*strava.Streams, error) {
	c.streamReqs++
	if c.streamErr != nil {
		return nil, c.streamErr
	}
	return c.streams[id], nil
}

func stravaRide(id int64, start time.Time, np float64) strava.Activity {
	return strava.Activity{
		ID:                   id,
		Name:                 "Ride",
		SportType:            "Ride",
		StartDate:            start,
		StartDateLocal:       start.Add(time.Hour),
		MovingTime:           3600,
		ElapsedTime:          3700,
		AverageWatts:         np * 0.9,
		WeightedAverageWatts: np,
		DeviceWatts:          true,
	}
}

func TestSync(t *testing.T) {
	db := store.NewTestStore(t)
	day := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	client := &fakeClient{rides: []strava.Activity{
		stravaRide(1, day, 250),
		stravaRide(2, day.AddDate(0, 0, 1), 200),
	}}

	svc := NewSyncService(client, db, SyncOptions{FTP: 250, Zones: analysis.DefaultZones()})
	progress := make(chan SyncProgress, 100)
	result, err := svc.Sync(context.Background(), progress)
	require.NoError(t, err)
	require.NoError(t, result.Err())

	assert.Equal(t, 2, result.RidesFetched)
	assert.Equal(t, 2, result.RidesStored)
	assert.Zero(t, client.streamReqs)

	var phases []string
	for p := range progress {
		phases = append(phases, p.Phase)
	}
	assert.Contains(t, phases, "activities")
	assert.Contains(t, phases, "rides")

	rides, err := db.ListRides()
	require.NoError(t, err)
	require.Len(t, rides, 2)
	assert.Equal(t, "1", rides[0].ExternalID)
	assert.InDelta(t, 100, rides[0].Metrics[analysis.MetricTSS], 1e-9)
	assert.InDelta(t, 64, rides[1].Metrics[analysis.MetricTSS], 1e-9)

	// second sync only asks for newer rides
	client.rides = append(client.rides, stravaRide(3, day.AddDate(0, 0, 2), 250))
	result, err = svc.Sync(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RidesStored)
	assert.True(t, client.afters[1].Equal(day.AddDate(0, 0, 1)))
}

func TestSyncStreams(t *testing.T) {
	db := store.NewTestStore(t)
	day := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

	power := make([]int, 600)
	for i := range power {
		power[i] = 300
	}
	client := &fakeClient{
		rides: []strava.Activity{stravaRide(1, day, 0), stravaRide(2, day.Add(time.Hour), 0)},
		streams: map[int64]*strava.Streams{
			1: {Watts: &strava.StreamData[int]{Data: power}},
		},
	}

	svc := NewSyncService(client, db, SyncOptions{FTP: 300, StreamLimit: 1})
	result, err := svc.Sync(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, client.streamReqs)
	assert.Equal(t, 1, result.StreamsFetched)

	rides, err := db.ListRides()
	require.NoError(t, err)
	require.Len(t, rides, 2)
	assert.InDelta(t, 300, rides[0].Metrics[analysis.MetricNormalizedPower], 1e-9)
	// past the stream limit, with no power in the summary either
	assert.NotContains(t, rides[1].Metrics, analysis.MetricNormalizedPower)
	assert.NotContains(t, rides[1].Metrics, analysis.MetricTSS)
}

func TestSyncStreamErrorsAreCollected(t *testing.T) {
	db := store.NewTestStore(t)
	client := &fakeClient{
		rides:     []strava.Activity{stravaRide(1, time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC), 250)},
		streamErr: errors.New("boom"),
	}

	svc := NewSyncService(client, db, SyncOptions{FTP: 250, StreamLimit: 5})
	result, err := svc.Sync(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RidesStored)
	require.Len(t, result.Errors, 1)
	assert.ErrorContains(t, result.Err(), "boom")
}

func TestSyncCancelled(t *testing.T) {
	db := store.NewTestStore(t)
	client := &fakeClient{rides: []strava.Activity{stravaRide(1, time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC), 250)}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSyncService(client, db, SyncOptions{}).Sync(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
