package service

import (
	"strconv"

	"trainingload/internal/analysis"
	"trainingload/internal/fitfile"
	"trainingload/internal/store"
	"trainingload/internal/strava"
)

// summaryFromStrava builds the inputs for metric computation. Strava's
// weighted average watts is its normalized power estimate.
func summaryFromStrava(a strava.Activity) analysis.RideSummary {
	return analysis.RideSummary{
		MovingTime:       a.MovingTime,
		AverageHeartrate: a.AverageHeartrate,
		AveragePower:     a.AverageWatts,
		NormalizedPower:  a.WeightedAverageWatts,
		WorkKJ:           a.Kilojoules,
		SufferScore:      a.SufferScore,
	}
}

// rideFromStrava converts a Strava API activity to a store ride
func rideFromStrava(a strava.Activity, metrics map[string]float64) *store.Ride {
	ride := &store.Ride{
		Source:         store.SourceStrava,
		ExternalID:     strconv.FormatInt(a.ID, 10),
		Name:           a.Name,
		Sport:          a.Sport(),
		StartDate:      a.StartDate,
		StartDateLocal: a.StartDateLocal,
		Timezone:       a.Timezone,
		Distance:       a.Distance,
		MovingTime:     a.MovingTime,
		ElapsedTime:    a.ElapsedTime,
		Metrics:        metrics,
	}

	if a.AverageHeartrate > 0 {
		ride.AverageHeartrate = &a.AverageHeartrate
	}
	if a.AverageWatts > 0 {
		ride.AveragePower = &a.AverageWatts
	}
	if np, ok := metrics[analysis.MetricNormalizedPower]; ok {
		ride.NormalizedPower = &np
	}
	if a.SufferScore > 0 {
		score := int(a.SufferScore)
		ride.SufferScore = &score
	}

	return ride
}

// rideFromFIT converts a decoded FIT activity to a store ride
func rideFromFIT(a *fitfile.Activity) *store.Ride {
	ride := &store.Ride{
		Source:         store.SourceFIT,
		ExternalID:     a.ExternalID,
		Name:           a.Name,
		Sport:          a.Sport,
		StartDate:      a.Start,
		StartDateLocal: a.StartLocal,
		Distance:       a.Distance,
		MovingTime:     a.MovingTime,
		ElapsedTime:    a.ElapsedTime,
		Metrics:        a.Metrics,
	}
	if ride.Name == "" {
		ride.Name = a.StartLocal.Format("2006-01-02 15:04") + " ride"
	}
	if a.AverageHeartrate > 0 {
		ride.AverageHeartrate = &a.AverageHeartrate
	}
	if a.AveragePower > 0 {
		ride.AveragePower = &a.AveragePower
	}
	if a.NormalizedPower > 0 {
		ride.NormalizedPower = &a.NormalizedPower
	}
	return ride
}
