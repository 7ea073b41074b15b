package analysis

// EfficiencyFactor calculates power:HR efficiency
// Returns: normalized power (W) / average HR (bpm)
// Higher is better - you're producing more power for the same HR
// Typical values range from 1.0 to 2.5
func EfficiencyFactor(np, avgHR float64) float64 {
	if !isFinite(np) || !isFinite(avgHR) || np <= 0 || avgHR <= 0 {
		return 0
	}
	return np / avgHR
}

// streamEfficiency calculates the efficiency of paired power and heart
// rate samples. Samples with no power (coasting) or implausible HR are
// skipped.
func streamEfficiency(power, heartrate []float64) float64 {
	var totalPower, totalHR float64
	var count int

	n := min(len(power), len(heartrate))
	for i := 0; i < n; i++ {
		p, hr := cleanPower(power[i]), heartrate[i]
		// Filter noise: must be pedalling with reasonable HR
		if p > 0 && hr > 60 && hr < 220 {
			totalPower += p
			totalHR += hr
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (totalPower / float64(count)) / (totalHR / float64(count))
}
