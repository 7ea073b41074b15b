package analysis

import (
	"math"
)

// HRZones represents athlete's heart rate zones
type HRZones struct {
	RestingHR float64
	MaxHR     float64
}

// DefaultZones returns sensible defaults if not configured
func DefaultZones() HRZones {
	return HRZones{
		RestingHR: 50,
		MaxHR:     185,
	}
}

// RideSummary holds the per-ride values stress scores are derived from.
// Zero means "not recorded".
type RideSummary struct {
	MovingTime       int     // seconds
	AverageHeartrate float64 // bpm
	AveragePower     float64 // watts
	NormalizedPower  float64 // watts
	WorkKJ           float64
	SufferScore      float64
}

// TRIMP calculates Training Impulse (Banister model)
// TRIMP = duration (min) * ΔHR ratio * e^(b * ΔHR ratio)
// where b = 1.92 for men, 1.67 for women (using male default)
func TRIMP(ride RideSummary, heartrate []float64, zones HRZones) float64 {
	duration := float64(ride.MovingTime) / 60.0 // Convert to minutes

	avgHR := averagePositive(heartrate)
	if avgHR == 0 {
		avgHR = safePositive(ride.AverageHeartrate)
	}
	if avgHR == 0 {
		return 0
	}

	// Heart rate reserve ratio
	hrReserve := zones.MaxHR - zones.RestingHR
	if hrReserve <= 0 {
		return 0
	}

	hrRatio := (avgHR - zones.RestingHR) / hrReserve
	if hrRatio < 0 {
		hrRatio = 0
	}
	if hrRatio > 1 {
		hrRatio = 1
	}

	// Gender coefficient (using male default)
	b := 1.92

	return duration * hrRatio * math.Exp(b*hrRatio)
}

// HRSS calculates Heart Rate Stress Score
// Normalized to ~100 for a 1-hour threshold effort
func HRSS(ride RideSummary, heartrate []float64, zones HRZones) float64 {
	trimp := TRIMP(ride, heartrate, zones)

	// Approximately 100 TRIMP for 1 hour at threshold
	thresholdTRIMP := 100.0

	return (trimp / thresholdTRIMP) * 100
}

// BalanceDescription returns a human-readable description of stress balance
func BalanceDescription(sb float64) string {
	switch {
	case sb > 25:
		return "Very fresh (possibly detrained)"
	case sb > 10:
		return "Fresh and ready to race"
	case sb > 0:
		return "Neutral - good for training"
	case sb > -10:
		return "Slightly fatigued"
	case sb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}

// average skips non-finite values.
func average(values []float64) float64 {
	var total float64
	var count int
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		total += v
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// averagePositive skips non-finite and non-positive values, such as heart
// rate dropouts.
func averagePositive(values []float64) float64 {
	var total float64
	var count int
	for _, v := range values {
		if !isFinite(v) || v <= 0 {
			continue
		}
		total += v
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}
