package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"trainingload/internal/analysis"
	"trainingload/internal/store"
	"trainingload/internal/strava"
)

// RideClient is the part of the Strava client the sync needs
type RideClient interface {
	GetAllRides(ctx context.Context, after time.Time, onProgress func(fetched int)) ([]strava.Activity, error)
	GetActivityStreams(ctx context.Context, activityID int64) (*strava.Streams, error)
}

// SyncOptions configures metric computation during sync
type SyncOptions struct {
	FTP   float64
	Zones analysis.HRZones
	// StreamLimit is the most rides per sync whose power and heart rate
	// streams are fetched. Zero uses ride summaries only.
	StreamLimit int
}

// SyncService orchestrates syncing rides from Strava
type SyncService struct {
	client RideClient
	store  *store.DB
	opts   SyncOptions
}

// NewSyncService creates a new sync service
func NewSyncService(client RideClient, store *store.DB, opts SyncOptions) *SyncService {
	return &SyncService{
		client: client,
		store:  store,
		opts:   opts,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase       string // "activities", "rides"
	Total       int
	Completed   int
	CurrentRide string
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	RidesFetched   int
	RidesStored    int
	StreamsFetched int
	Errors         []error
}

// Err combines the per-ride errors, or returns nil.
func (r *SyncResult) Err() error {
	return multierr.Combine(r.Errors...)
}

// Sync fetches rides newer than the last sync, computes their stress
// metrics and stores them. Per-ride failures are collected in the result;
// the returned error is only set when the sync could not run.
func (s *SyncService) Sync(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	after, err := s.store.NewestSynced(store.SourceStrava)
	if err != nil {
		return result, err
	}
	log.WithField("after", after).Debug("sync: fetching rides")

	report := func(p SyncProgress) {
		if progress != nil {
			progress <- p
		}
	}

	report(SyncProgress{Phase: "activities"})
	rides, err := s.client.GetAllRides(ctx, after, func(fetched int) {
		report(SyncProgress{Phase: "activities", Completed: fetched})
	})
	if err != nil {
		return result, fmt.Errorf("fetching rides: %w", err)
	}
	result.RidesFetched = len(rides)

	newest := after
	for i, a := range rides {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		report(SyncProgress{Phase: "rides", Total: len(rides), Completed: i, CurrentRide: a.Name})

		streams := s.fetchStreams(ctx, a, result)
		metrics := analysis.ComputeRideMetrics(summaryFromStrava(a), streams, s.opts.Zones, s.opts.FTP)

		if _, err := s.store.UpsertRide(rideFromStrava(a, metrics)); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing ride %d: %w", a.ID, err))
			continue
		}
		result.RidesStored++

		if a.StartDate.After(newest) {
			newest = a.StartDate
		}
	}
	report(SyncProgress{Phase: "rides", Total: len(rides), Completed: len(rides)})

	if newest.After(after) {
		if err := s.store.SetNewestSynced(store.SourceStrava, newest); err != nil {
			return result, err
		}
	}
	if result.RidesStored > 0 {
		s.store.NotifyRefresh()
	}

	log.WithFields(log.Fields{
		"fetched": result.RidesFetched,
		"stored":  result.RidesStored,
		"streams": result.StreamsFetched,
		"errors":  len(result.Errors),
	}).Info("sync: finished")

	return result, nil
}

// fetchStreams returns sample streams for rides recorded with a power
// meter or heart rate monitor, up to the configured limit per sync.
func (s *SyncService) fetchStreams(ctx context.Context, a strava.Activity, result *SyncResult) analysis.Streams {
	if result.StreamsFetched >= s.opts.StreamLimit {
		return analysis.Streams{}
	}
	if !a.DeviceWatts && !a.HasHeartrate {
		return analysis.Streams{}
	}

	streams, err := s.client.GetActivityStreams(ctx, a.ID)
	if err != nil {
		// Summary values still give usable metrics
		log.WithError(err).WithField("ride", a.ID).Warn("sync: fetching streams")
		result.Errors = append(result.Errors, fmt.Errorf("ride %d (%s) streams: %w", a.ID, a.Name, err))
		return analysis.Streams{}
	}
	result.StreamsFetched++

	return analysis.Streams{
		Power:     streams.PowerSamples(),
		Heartrate: streams.HeartrateSamples(),
	}
}
