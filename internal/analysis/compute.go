package analysis

// Metric names stored per ride.
const (
	MetricTSS             = "tss"
	MetricTRIMP           = "trimp"
	MetricHRSS            = "hrss"
	MetricSufferScore     = "suffer_score"
	MetricWorkKJ          = "work_kj"
	MetricIntensityFactor = "intensity_factor"
	MetricNormalizedPower = "normalized_power"
	MetricEfficiency      = "efficiency_factor"
	MetricDecoupling      = "decoupling"
)

// StressMetrics lists the metrics that make sense as a daily stress input.
var StressMetrics = []string{MetricTSS, MetricHRSS, MetricTRIMP, MetricSufferScore, MetricWorkKJ}

// IsStressMetric reports whether name is one of StressMetrics.
func IsStressMetric(name string) bool {
	for _, m := range StressMetrics {
		if m == name {
			return true
		}
	}
	return false
}

// Streams carries optional one-second samples for a ride.
type Streams struct {
	Power     []float64
	Heartrate []float64
}

// ComputeRideMetrics calculates all metrics for a single ride.
// Only metrics that could be derived are present in the result.
func ComputeRideMetrics(ride RideSummary, streams Streams, zones HRZones, ftp float64) map[string]float64 {
	metrics := make(map[string]float64)

	np := safePositive(ride.NormalizedPower)
	if np == 0 && len(streams.Power) > 0 {
		np = NormalizedPower(streams.Power)
	}
	if np == 0 {
		np = safePositive(ride.AveragePower)
	}
	if np > 0 {
		metrics[MetricNormalizedPower] = np
	}

	// Power based stress
	if intensity := IntensityFactor(np, ftp); intensity > 0 {
		metrics[MetricIntensityFactor] = intensity
		metrics[MetricTSS] = TSS(float64(ride.MovingTime), np, ftp)
	}

	work := safePositive(ride.WorkKJ)
	if work == 0 && ride.AveragePower > 0 {
		work = ride.AveragePower * float64(ride.MovingTime) / 1000.0
	}
	if work > 0 {
		metrics[MetricWorkKJ] = work
	}

	// Heart rate based stress
	if trimp := TRIMP(ride, streams.Heartrate, zones); trimp > 0 {
		metrics[MetricTRIMP] = trimp
		metrics[MetricHRSS] = HRSS(ride, streams.Heartrate, zones)
	}

	// Aerobic efficiency
	if ef := EfficiencyFactor(np, ride.AverageHeartrate); ef > 0 {
		metrics[MetricEfficiency] = ef
	}
	if len(streams.Power) >= minDecouplingSamples && len(streams.Heartrate) >= minDecouplingSamples {
		metrics[MetricDecoupling] = Decoupling(streams.Power, streams.Heartrate)
	}

	if suffer := safePositive(ride.SufferScore); suffer > 0 {
		metrics[MetricSufferScore] = suffer
	}

	return metrics
}
