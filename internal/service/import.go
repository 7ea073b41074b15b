package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"trainingload/internal/fitfile"
	"trainingload/internal/store"
)

// ImportService stores rides read from FIT files
type ImportService struct {
	store *store.DB
	cfg   fitfile.Config
}

// NewImportService creates a new import service
func NewImportService(store *store.DB, cfg fitfile.Config) *ImportService {
	return &ImportService{store: store, cfg: cfg}
}

// ImportResult counts the outcome of an import
type ImportResult struct {
	Files    int
	Imported int
	Skipped  int // non-cycling activities
	Failed   int
}

// ImportFiles imports the given FIT files; directories are searched for
// .fit files. Rides that import successfully are kept even when others
// fail, and the failures are returned combined.
func (s *ImportService) ImportFiles(ctx context.Context, paths []string) (*ImportResult, error) {
	files, errs := expandPaths(paths)
	result := &ImportResult{Files: len(files)}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, multierr.Append(errs, err)
		}

		activity, err := fitfile.DecodeFile(path, s.cfg)
		if errors.Is(err, fitfile.ErrNotCycling) {
			log.WithField("file", path).Info("import: skipping non-cycling activity")
			result.Skipped++
			continue
		}
		if err != nil {
			result.Failed++
			errs = multierr.Append(errs, err)
			continue
		}

		if _, err := s.store.UpsertRide(rideFromFIT(activity)); err != nil {
			result.Failed++
			errs = multierr.Append(errs, fmt.Errorf("storing %s: %w", filepath.Base(path), err))
			continue
		}
		result.Imported++
		if err := s.store.SetNewestSynced(store.SourceFIT, activity.Start); err != nil {
			errs = multierr.Append(errs, err)
		}
		log.WithFields(log.Fields{"file": path, "date": activity.StartLocal.Format("2006-01-02")}).Debug("import: ride stored")
	}

	if result.Imported > 0 {
		s.store.NotifyRefresh()
	}
	return result, errs
}

// expandPaths replaces directories with the FIT files below them
func expandPaths(paths []string) ([]string, error) {
	var files []string
	var errs error
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".fit") {
				files = append(files, p)
			}
			return nil
		})
		errs = multierr.Append(errs, err)
	}
	return files, errs
}
