package analysis

// minDecouplingSamples is the shortest ride, in one-second samples,
// decoupling is reported for
const minDecouplingSamples = 1200

// Decoupling calculates the power:HR drift between first and second half
// Returns percentage - positive means second half was less efficient
// < 5% on long rides indicates good aerobic endurance
func Decoupling(power, heartrate []float64) float64 {
	n := min(len(power), len(heartrate))
	if n < minDecouplingSamples { // Need at least 20 minutes of data
		return 0
	}

	// Split into halves
	mid := n / 2
	firstEF := streamEfficiency(power[:mid], heartrate[:mid])
	secondEF := streamEfficiency(power[mid:n], heartrate[mid:n])

	if firstEF == 0 || secondEF == 0 {
		return 0
	}

	// Positive decoupling = second half less efficient (worse)
	// Formula: ((first / second) - 1) * 100
	return ((firstEF / secondEF) - 1) * 100
}
