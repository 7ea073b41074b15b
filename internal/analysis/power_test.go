package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizedPower(t *testing.T) {
	var blocks []float64
	for i := 0; i < 10; i++ {
		blocks = append(blocks, constantSamples(60, 100)...)
		blocks = append(blocks, constantSamples(60, 300)...)
	}

	tests := []struct {
		name    string
		power   []float64
		checkFn func(t *testing.T, np float64)
	}{
		{
			name:  "empty",
			power: nil,
			checkFn: func(t *testing.T, np float64) {
				assert.Equal(t, 0.0, np)
			},
		},
		{
			name:  "shorter than window falls back to average",
			power: []float64{100, 200},
			checkFn: func(t *testing.T, np float64) {
				assert.InDelta(t, 150, np, 1e-9)
			},
		},
		{
			name:  "steady power equals average",
			power: constantSamples(600, 200),
			checkFn: func(t *testing.T, np float64) {
				assert.InDelta(t, 200, np, 1e-9)
			},
		},
		{
			name:  "variable power above average",
			power: blocks,
			checkFn: func(t *testing.T, np float64) {
				assert.Greater(t, np, 200.0)
				assert.Less(t, np, 300.0)
			},
		},
		{
			name:  "invalid samples treated as zero",
			power: append(constantSamples(60, 200), math.NaN(), -5),
			checkFn: func(t *testing.T, np float64) {
				assert.False(t, math.IsNaN(np))
				assert.Greater(t, np, 0.0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checkFn(t, NormalizedPower(tt.power))
		})
	}
}

func TestBestRollingPower(t *testing.T) {
	power := append(constantSamples(60, 100), constantSamples(30, 300)...)
	power = append(power, constantSamples(60, 100)...)

	assert.InDelta(t, 300, BestRollingPower(power, 30), 1e-9)
	assert.InDelta(t, 200, BestRollingPower(power, 60), 1e-9)
	assert.Equal(t, 0.0, BestRollingPower(nil, 30))
	assert.Equal(t, 0.0, BestRollingPower(power, 0))
	assert.InDelta(t, 285, EstimateFTP(constantSamples(1500, 300)), 1e-9)
}

func TestTSS(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		np       float64
		ftp      float64
		expected float64
	}{
		{"one hour at FTP", 3600, 250, 250, 100},
		{"half hour at 80%", 1800, 200, 250, 32},
		{"two hours at 70%", 7200, 175, 250, 98},
		{"no FTP", 3600, 250, 0, 0},
		{"no power", 3600, 0, 250, 0},
		{"no time", 0, 250, 250, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TSS(tt.seconds, tt.np, tt.ftp), 1e-9)
		})
	}
}

func TestIntensityFactor(t *testing.T) {
	assert.InDelta(t, 0.8, IntensityFactor(200, 250), 1e-12)
	assert.Equal(t, 0.0, IntensityFactor(200, 0))
	assert.Equal(t, 0.0, IntensityFactor(math.NaN(), 250))
}
