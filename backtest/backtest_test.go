package backtest

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/RyoungJKT/genetropica/forecast"
	"github.com/RyoungJKT/genetropica/panel"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPanel(t testing.TB, cases []int) *panel.Panel {
	t.Helper()
	months := panel.GenerateMonths(time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC), len(cases))
	rainfall := make([]float64, len(cases))
	temperature := make([]float64, len(cases))
	for i := range cases {
		rainfall[i] = 150
		temperature[i] = 27
	}
	p, err := panel.NewFromSeries(months, cases, rainfall, temperature)
	require.Nil(t, err)
	return p
}

func simulatedPanel(t testing.TB) *panel.Panel {
	t.Helper()
	p, err := panel.Aggregate(panel.Simulate(nil))
	require.Nil(t, err)
	return p
}

func constCases(n, val int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = val
	}
	return out
}

func assertUnavailable(t *testing.T, m Metrics) {
	t.Helper()
	assert.Equal(t, 0, m.NTests)
	assert.False(t, m.Valid())
	assert.True(t, math.IsNaN(m.MAE), "mae")
	assert.True(t, math.IsNaN(m.RMSE), "rmse")
	assert.True(t, math.IsNaN(m.MSE), "mse")
	assert.True(t, math.IsNaN(m.MAPE), "mape")
}

func TestRunUnavailable(t *testing.T) {
	testData := map[string]struct {
		months     int
		testMonths int
		opt        *Options
	}{
		"empty panel":           {0, 3, nil},
		"one short of training": {14, 3, nil},
		"zero test months":      {24, 0, nil},
		"negative test months":  {24, -2, nil},
		"invalid forecast options": {24, 3, &Options{
			ForecastOptions: &forecast.Options{RainfallLag: -1},
		}},
		"negative parallelization": {24, 3, &Options{Parallelization: -1}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			p := newPanel(t, constCases(td.months, 100))
			assertUnavailable(t, Run(p, td.testMonths, td.opt))
		})
	}
}

func TestRunNilPanel(t *testing.T) {
	assertUnavailable(t, Run(nil, 3, nil))
}

func TestRunConstantPanel(t *testing.T) {
	p := newPanel(t, constCases(24, 100))
	m := Run(p, 6, nil)

	assert.True(t, m.Valid())
	assert.Equal(t, 6, m.NTests)
	assert.InDelta(t, 0.0, m.MAE, 1e-9)
	assert.InDelta(t, 0.0, m.RMSE, 1e-9)
	assert.InDelta(t, 0.0, m.MSE, 1e-9)
	assert.InDelta(t, 0.0, m.MAPE, 1e-9)
}

func TestRunCount(t *testing.T) {
	p := newPanel(t, constCases(20, 80))
	for testMonths := 1; testMonths <= 8; testMonths++ {
		m := Run(p, testMonths, nil)
		assert.Equal(t, testMonths, m.NTests, "test months %d", testMonths)
	}
	assertUnavailable(t, Run(p, 9, nil))
}

func TestRunFallbackErrors(t *testing.T) {
	p := newPanel(t, []int{10, 10, 10, 10, 20, 30})
	opt := &Options{MinTrainingMonths: 3}

	// forecasts are 10, 10, 40/3 against actuals 10, 20, 30
	m := Run(p, 3, opt)
	require.Equal(t, 3, m.NTests)
	assert.InDelta(t, 80.0/9.0, m.MAE, 1e-9)
	assert.InDelta(t, 3400.0/27.0, m.MSE, 1e-9)
	assert.InDelta(t, math.Sqrt(3400.0/27.0), m.RMSE, 1e-9)
	assert.InDelta(t, 1900.0/54.0, m.MAPE, 1e-9)
}

func TestRunParallelMatchesSequential(t *testing.T) {
	p := simulatedPanel(t)

	sequential := Run(p, 12, &Options{Parallelization: 1})
	require.True(t, sequential.Valid())
	assert.Equal(t, 12, sequential.NTests)
	assert.GreaterOrEqual(t, sequential.RMSE, sequential.MAE)

	for _, parallelization := range []int{2, 4, 16} {
		parallel := Run(p, 12, &Options{Parallelization: parallelization})
		assert.Equal(t, sequential, parallel, "parallelization %d", parallelization)
	}
}

func TestRunDoesNotMutateOptions(t *testing.T) {
	p := simulatedPanel(t)
	opt := &Options{ForecastOptions: &forecast.Options{RainfallLag: 2}}
	Run(p, 4, opt)
	assert.Equal(t, &Options{ForecastOptions: &forecast.Options{RainfallLag: 2}}, opt)
}

func TestMetricsJSON(t *testing.T) {
	testData := map[string]struct {
		metrics  Metrics
		expected string
	}{
		"unavailable": {
			metrics:  unavailable(),
			expected: `{"mae":null,"rmse":null,"mse":null,"mape":null,"n_tests":0}`,
		},
		"all zero actuals": {
			metrics:  Metrics{MAE: 1.5, RMSE: 2, MSE: 4, MAPE: math.NaN(), NTests: 2},
			expected: `{"mae":1.5,"rmse":2,"mse":4,"mape":null,"n_tests":2}`,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			out, err := json.Marshal(td.metrics)
			require.Nil(t, err)
			assert.JSONEq(t, td.expected, string(out))

			var m Metrics
			require.Nil(t, json.Unmarshal(out, &m))
			assert.Equal(t, td.metrics.NTests, m.NTests)
			assert.Equal(t, math.IsNaN(td.metrics.MAPE), math.IsNaN(m.MAPE))
			assert.Equal(t, math.IsNaN(td.metrics.MAE), math.IsNaN(m.MAE))
		})
	}
}

func TestMetricsTablePrint(t *testing.T) {
	var buf bytes.Buffer
	m := Metrics{MAE: 1.25, RMSE: 2.5, MSE: 6.25, MAPE: 12.5, NTests: 4}
	require.Nil(t, m.TablePrint(&buf))
	assert.Contains(t, buf.String(), "MAPE")
	assert.Contains(t, buf.String(), "1.250")
	assert.Contains(t, buf.String(), "12.50")
}
