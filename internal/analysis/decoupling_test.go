package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// halves builds samples with one value for the first half and another
// for the second
func halves(n int, first, second float64) []float64 {
	samples := constantSamples(n, first)
	for i := n / 2; i < n; i++ {
		samples[i] = second
	}
	return samples
}

func TestDecoupling(t *testing.T) {
	tests := []struct {
		name      string
		power     []float64
		heartrate []float64
		expected  float64
		delta     float64
	}{
		{
			name:     "empty streams",
			expected: 0,
		},
		{
			name:      "insufficient data - less than 20 minutes",
			power:     constantSamples(600, 200),
			heartrate: constantSamples(600, 140),
			expected:  0,
		},
		{
			name:      "no decoupling - consistent efficiency",
			power:     constantSamples(3600, 200),
			heartrate: constantSamples(3600, 140),
			expected:  0,
			delta:     1e-9,
		},
		{
			name:      "positive decoupling - heart rate drifts up",
			power:     constantSamples(3600, 200),
			heartrate: halves(3600, 140, 147),
			expected:  5,
			delta:     1e-9,
		},
		{
			name:      "negative decoupling - stronger second half",
			power:     halves(3600, 200, 220),
			heartrate: constantSamples(3600, 140),
			expected:  (1/1.1 - 1) * 100,
			delta:     1e-9,
		},
		{
			name:      "no heart rate in one half",
			power:     constantSamples(3600, 200),
			heartrate: halves(3600, 140, 0),
			expected:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Decoupling(tt.power, tt.heartrate), tt.delta)
		})
	}
}
