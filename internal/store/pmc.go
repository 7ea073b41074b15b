package store

import (
	log "github.com/sirupsen/logrus"

	"trainingload/internal/pmc"
)

// Athlete returns the training load collaborators backed by this store.
// Rides and seasons are loaded fresh on every model recompute.
func (db *DB) Athlete(name string) pmc.Athlete {
	return pmc.Athlete{
		Rides:    rideSource{db},
		Seasons:  seasonSource{db},
		Settings: db.Settings(name),
	}
}

type rideSource struct{ db *DB }

func (s rideSource) Rides() []pmc.Ride {
	rides, err := s.db.ListRides()
	if err != nil {
		log.WithError(err).Error("store: loading rides for model")
		return nil
	}
	out := make([]pmc.Ride, len(rides))
	for i, r := range rides {
		out[i] = pmcRide{r}
	}
	return out
}

type seasonSource struct{ db *DB }

func (s seasonSource) Seasons() []pmc.Season {
	seasons, err := s.db.ListSeasons()
	if err != nil {
		log.WithError(err).Error("store: loading seasons for model")
		return nil
	}
	out := make([]pmc.Season, len(seasons))
	for i, season := range seasons {
		out[i] = pmcSeason{season}
	}
	return out
}
