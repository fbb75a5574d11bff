package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitRegression(t *testing.T) {
	testData := map[string]struct {
		lagged         []float64
		deseasonalized []float64
		cases          []float64
		expected       RegressionParameters
	}{
		"exact linear relation": {
			lagged:         []float64{100, 150, 200, 250, 300, 350},
			deseasonalized: []float64{-10, 0, 10, 20, 30, 40},
			cases:          []float64{90, 100, 110, 120, 130, 140},
			expected: RegressionParameters{
				Intercept:    -30,
				BetaRainfall: 0.2,
				ResidualStd:  0,
				RSquared:     1,
			},
		},
		"constant rainfall is degenerate": {
			lagged:         []float64{50, 50, 50, 50},
			deseasonalized: []float64{-5, 5, -5, 5},
			cases:          []float64{95, 105, 95, 105},
			expected: RegressionParameters{
				ResidualStd: 5.773502691896258,
				Degenerate:  true,
			},
		},
		"single row is degenerate": {
			lagged:         []float64{50},
			deseasonalized: []float64{3},
			cases:          []float64{120},
			expected: RegressionParameters{
				ResidualStd: 0,
				Degenerate:  true,
			},
		},
		"constant target explains nothing": {
			lagged:         []float64{10, 20, 30, 40},
			deseasonalized: []float64{0, 0, 0, 0},
			cases:          []float64{100, 100, 100, 100},
			expected: RegressionParameters{
				ResidualStd: 0,
				RSquared:    0,
			},
		},
		"no rows is degenerate": {
			expected: RegressionParameters{
				ResidualStd: 0,
				Degenerate:  true,
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := FitRegression(td.lagged, td.deseasonalized, td.cases)
			assert.Equal(t, td.expected.Degenerate, res.Degenerate)
			assert.InDelta(t, td.expected.Intercept, res.Intercept, 1e-9, "intercept")
			assert.InDelta(t, td.expected.BetaRainfall, res.BetaRainfall, 1e-9, "beta")
			assert.InDelta(t, td.expected.ResidualStd, res.ResidualStd, 1e-9, "residual std")
			assert.InDelta(t, td.expected.RSquared, res.RSquared, 1e-9, "r squared")
		})
	}
}
