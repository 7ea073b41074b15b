// Package fitfile reads ride summaries and stress metrics from FIT
// activity files.
package fitfile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"trainingload/internal/analysis"
)

// ErrNotCycling is returned for activities of any sport other than cycling.
var ErrNotCycling = errors.New("not a cycling activity")

// Config holds the athlete values needed to derive stress metrics.
type Config struct {
	FTP   float64
	Zones analysis.HRZones
}

// Activity is a decoded ride with its derived metrics.
type Activity struct {
	ExternalID       string // content hash, stable across re-imports
	Name             string
	Sport            string
	Start            time.Time
	StartLocal       time.Time
	Distance         float64 // meters
	MovingTime       int     // seconds
	ElapsedTime      int     // seconds
	AverageHeartrate float64 // 0 when not recorded
	AveragePower     float64 // 0 when not recorded
	NormalizedPower  float64
	Metrics          map[string]float64
}

// DecodeFile decodes the FIT file at path. The file name becomes the ride
// name.
func DecodeFile(path string, cfg Config) (*Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	activity, err := Decode(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	activity.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return activity, nil
}

// Decode reads a FIT activity from r.
func Decode(r io.Reader, cfg Config) (*Activity, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read FIT data: %w", err)
	}

	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	file, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	sum := sha256.Sum256(data)
	out := &Activity{
		ExternalID: hex.EncodeToString(sum[:]),
		Sport:      "Ride",
	}

	samples := buildSamples(file.Records)

	var session *fit.SessionMsg
	if len(file.Sessions) > 0 {
		session = file.Sessions[0]
	}
	if session != nil {
		sport, ok := rideSport(session.Sport, session.SubSport)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrNotCycling, session.Sport)
		}
		out.Sport = sport
		out.Start = validTimeOrZero(session.StartTime)
		out.Distance = safePositive(session.GetTotalDistanceScaled())
		out.ElapsedTime = seconds(session.GetTotalElapsedTimeScaled())
		out.MovingTime = seconds(session.GetTotalTimerTimeScaled())
		out.AverageHeartrate = float64(validUint8(session.AvgHeartRate))
		out.AveragePower = float64(validUint16(session.AvgPower))
		out.NormalizedPower = float64(validUint16(session.NormalizedPower))
	}
	if out.Start.IsZero() {
		out.Start = samples.start
	}
	if out.Start.IsZero() {
		return nil, errors.New("activity has no start time")
	}
	if out.ElapsedTime == 0 {
		out.ElapsedTime = samples.durationSec
	}
	if out.MovingTime == 0 {
		out.MovingTime = out.ElapsedTime
	}
	if out.AverageHeartrate == 0 {
		out.AverageHeartrate = averagePositive(samples.heartrate)
	}
	if out.AveragePower == 0 {
		out.AveragePower = average(samples.power)
	}
	if out.NormalizedPower == 0 {
		out.NormalizedPower = analysis.NormalizedPower(samples.power)
	}
	out.Start = out.Start.UTC()
	out.StartLocal = localStart(out.Start, file.Activity)

	summary := analysis.RideSummary{
		MovingTime:       out.MovingTime,
		AverageHeartrate: out.AverageHeartrate,
		AveragePower:     out.AveragePower,
		NormalizedPower:  out.NormalizedPower,
		WorkKJ:           samples.workKJ,
	}
	streams := analysis.Streams{Power: samples.power, Heartrate: samples.heartrate}
	out.Metrics = analysis.ComputeRideMetrics(summary, streams, cfg.Zones, cfg.FTP)

	return out, nil
}

// rideSport maps the FIT sport onto the ride types used for Strava rides.
func rideSport(sport fit.Sport, sub fit.SubSport) (string, bool) {
	if sport != fit.SportCycling {
		return "", false
	}
	switch sub {
	case fit.SubSportVirtualActivity, fit.SubSportIndoorCycling:
		return "VirtualRide", true
	case fit.SubSportMountain:
		return "MountainBikeRide", true
	default:
		return "Ride", true
	}
}

// localStart shifts start into the device's local offset, taken from the
// activity message when present.
func localStart(start time.Time, msg *fit.ActivityMsg) time.Time {
	if msg == nil {
		return start
	}
	utc := validTimeOrZero(msg.Timestamp)
	local := validTimeOrZero(msg.LocalTimestamp)
	if utc.IsZero() || local.IsZero() {
		return start
	}
	offset := local.Sub(utc).Round(15 * time.Minute)
	if offset < -14*time.Hour || offset > 14*time.Hour {
		return start
	}
	return start.In(time.FixedZone("", int(offset.Seconds())))
}

type samples struct {
	start       time.Time
	durationSec int
	power       []float64
	heartrate   []float64
	workKJ      float64
}

// buildSamples orders the records by time and extracts power and heart
// rate. Records are treated as one-second samples.
func buildSamples(records []*fit.RecordMsg) samples {
	valid := make([]*fit.RecordMsg, 0, len(records))
	for _, rec := range records {
		if rec == nil || validTimeOrZero(rec.Timestamp).IsZero() {
			continue
		}
		valid = append(valid, rec)
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.Before(valid[j].Timestamp)
	})

	var s samples
	if len(valid) == 0 {
		return s
	}
	s.start = valid[0].Timestamp
	s.durationSec = int(valid[len(valid)-1].Timestamp.Sub(s.start).Seconds())

	var joules float64
	for i, rec := range valid {
		power, ok := extractPower(rec)
		if ok {
			s.power = append(s.power, power)
			if i > 0 {
				dt := rec.Timestamp.Sub(valid[i-1].Timestamp).Seconds()
				// long gaps are pauses, not riding
				if dt > 0 && dt <= 10 {
					joules += power * dt
				}
			}
		}
		if hr, ok := extractHeartRate(rec); ok {
			s.heartrate = append(s.heartrate, hr)
		}
	}
	s.workKJ = joules / 1000
	return s
}

func extractPower(rec *fit.RecordMsg) (float64, bool) {
	if rec.Power == math.MaxUint16 {
		return 0, false
	}
	return float64(rec.Power), true
}

func extractHeartRate(rec *fit.RecordMsg) (float64, bool) {
	if rec.HeartRate == math.MaxUint8 || rec.HeartRate == 0 {
		return 0, false
	}
	return float64(rec.HeartRate), true
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint8(v uint8) uint8 {
	if v == math.MaxUint8 {
		return 0
	}
	return v
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func seconds(v float64) int {
	return int(math.Round(safePositive(v)))
}

func safePositive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func averagePositive(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
