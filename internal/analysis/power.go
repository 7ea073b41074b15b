package analysis

import "math"

const (
	secondsPerHour = 3600.0

	// npWindow is the rolling window, in one-second samples, used by
	// normalized power.
	npWindow = 30
)

// NormalizedPower computes the fourth-power mean of the 30 second rolling
// average of one-second power samples. Short rides fall back to the plain
// average.
func NormalizedPower(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}
	if len(power) < npWindow {
		return average(power)
	}

	var sum float64
	for i := 0; i < npWindow; i++ {
		sum += cleanPower(power[i])
	}

	var fourthPowerTotal float64
	var count int
	for i := npWindow - 1; i < len(power); i++ {
		if i >= npWindow {
			sum += cleanPower(power[i]) - cleanPower(power[i-npWindow])
		}
		rolling := sum / npWindow
		fourthPowerTotal += math.Pow(rolling, 4)
		count++
	}
	return math.Pow(fourthPowerTotal/float64(count), 0.25)
}

// BestRollingPower returns the best average power over any window of the
// given length in seconds.
func BestRollingPower(power []float64, seconds int) float64 {
	if len(power) == 0 || seconds <= 0 {
		return 0
	}
	if len(power) < seconds {
		return average(power)
	}

	var sum float64
	for i := 0; i < seconds; i++ {
		sum += cleanPower(power[i])
	}
	best := sum / float64(seconds)
	for i := seconds; i < len(power); i++ {
		sum += cleanPower(power[i]) - cleanPower(power[i-seconds])
		if current := sum / float64(seconds); current > best {
			best = current
		}
	}
	return best
}

// EstimateFTP estimates functional threshold power as 95% of the best
// 20 minute power.
func EstimateFTP(power []float64) float64 {
	return BestRollingPower(power, 20*60) * 0.95
}

// IntensityFactor is normalized power relative to FTP.
func IntensityFactor(np, ftp float64) float64 {
	if safePositive(np) == 0 || safePositive(ftp) == 0 {
		return 0
	}
	return np / ftp
}

// TSS calculates Training Stress Score
// TSS = hours * IF^2 * 100, so one hour at FTP scores 100
func TSS(seconds, np, ftp float64) float64 {
	intensity := IntensityFactor(np, ftp)
	if intensity == 0 || safePositive(seconds) == 0 {
		return 0
	}
	return (seconds / secondsPerHour) * intensity * intensity * 100
}

func cleanPower(v float64) float64 {
	return safePositive(v)
}
