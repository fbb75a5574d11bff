package panel

import (
	"math"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	testData := map[string]struct {
		records  []Record
		expected []Record
		err      error
	}{
		"empty": {
			expected: []Record{},
		},
		"valid": {
			records: []Record{
				{Month: month(2020, 1), Cases: 10, RainfallMM: 1, TemperatureC: 27},
				{Month: month(2020, 2), Cases: 20, RainfallMM: 2, TemperatureC: 28},
			},
			expected: []Record{
				{Month: month(2020, 1), Cases: 10, RainfallMM: 1, TemperatureC: 27},
				{Month: month(2020, 2), Cases: 20, RainfallMM: 2, TemperatureC: 28},
			},
		},
		"normalizes to month start": {
			records: []Record{
				{Month: time.Date(2020, 1, 15, 13, 0, 0, 0, time.UTC), Cases: 10},
				{Month: time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC), Cases: 20},
			},
			expected: []Record{
				{Month: month(2020, 1), Cases: 10},
				{Month: month(2020, 3), Cases: 20},
			},
		},
		"duplicate month": {
			records: []Record{
				{Month: month(2020, 1)},
				{Month: time.Date(2020, 1, 20, 0, 0, 0, 0, time.UTC)},
			},
			err: ErrDuplicateMonth,
		},
		"unordered": {
			records: []Record{
				{Month: month(2020, 2)},
				{Month: month(2020, 1)},
			},
			err: ErrNonMonotonic,
		},
		"negative cases": {
			records: []Record{
				{Month: month(2020, 1), Cases: 3},
				{Month: month(2020, 2), Cases: -1},
			},
			err: ErrNegativeCases,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			p, err := New(td.records)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, p.Records())
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	recs := []Record{{Month: month(2020, 1), Cases: 1}}
	p, err := New(recs)
	require.Nil(t, err)

	recs[0].Cases = 99
	assert.Equal(t, 1, p.At(0).Cases)
}

func TestNewFromSeries(t *testing.T) {
	months := []time.Time{month(2020, 1), month(2020, 2)}
	p, err := NewFromSeries(months, []int{1, 2}, []float64{3, 4}, []float64{5, 6})
	require.Nil(t, err)
	assert.Equal(t, []float64{1, 2}, p.Cases())
	assert.Equal(t, []float64{3, 4}, p.Rainfall())
	assert.Equal(t, []float64{5, 6}, p.Temperature())
	assert.Equal(t, month(2020, 2), p.LastMonth())

	_, err = NewFromSeries(months, []int{1}, []float64{3, 4}, []float64{5, 6})
	assert.ErrorIs(t, err, ErrMismatchedLen)
}

func TestNilPanel(t *testing.T) {
	var p *Panel
	assert.Equal(t, 0, p.Len())
	assert.Nil(t, p.Records())
	assert.True(t, p.LastMonth().IsZero())
	assert.Empty(t, p.Cases())
}

func TestSlice(t *testing.T) {
	months := GenerateMonths(month(2020, 1), 5)
	p, err := NewFromSeries(months, []int{0, 1, 2, 3, 4}, make([]float64, 5), make([]float64, 5))
	require.Nil(t, err)

	sub := p.Slice(1, 3)
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, []float64{1, 2}, sub.Cases())
	assert.Equal(t, 5, p.Len())
}

func TestDropMissing(t *testing.T) {
	p, err := New([]Record{
		{Month: month(2020, 1), Cases: 1, RainfallMM: 1, TemperatureC: 1},
		{Month: month(2020, 2), Cases: 2, RainfallMM: math.NaN(), TemperatureC: 1},
		{Month: month(2020, 3), Cases: 3, RainfallMM: 1, TemperatureC: math.NaN()},
		{Month: month(2020, 4), Cases: 4, RainfallMM: 1, TemperatureC: 1},
		{Month: month(2020, 5), Cases: 5, RainfallMM: math.Inf(1), TemperatureC: 1},
		{Month: month(2020, 6), Cases: 6, RainfallMM: 1, TemperatureC: math.Inf(-1)},
	})
	require.Nil(t, err)

	res := p.DropMissing()
	assert.Equal(t, []float64{1, 4}, res.Cases())

	complete := res.DropMissing()
	assert.Same(t, res, complete)
}

func TestLaggedRainfall(t *testing.T) {
	testData := map[string]struct {
		months   []time.Time
		lag      int
		idx      []int
		expected []float64
	}{
		"no lag": {
			months:   GenerateMonths(month(2020, 1), 3),
			lag:      0,
			idx:      []int{0, 1, 2},
			expected: []float64{10, 20, 30},
		},
		"lag one": {
			months:   GenerateMonths(month(2020, 1), 3),
			lag:      1,
			idx:      []int{1, 2},
			expected: []float64{10, 20},
		},
		"lag longer than panel": {
			months:   GenerateMonths(month(2020, 1), 3),
			lag:      4,
			idx:      []int{},
			expected: []float64{},
		},
		"gap drops the row after it": {
			months:   []time.Time{month(2020, 1), month(2020, 2), month(2020, 4)},
			lag:      1,
			idx:      []int{1},
			expected: []float64{10},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			p, err := NewFromSeries(td.months, make([]int, 3), []float64{10, 20, 30}, make([]float64, 3))
			require.Nil(t, err)

			idx, lagged := p.LaggedRainfall(td.lag)
			assert.Equal(t, td.idx, idx)
			assert.Equal(t, td.expected, lagged)
		})
	}
}

func TestPanelJSON(t *testing.T) {
	p, err := New([]Record{
		{Month: month(2020, 1), Cases: 1, RainfallMM: 2.5, TemperatureC: 27},
	})
	require.Nil(t, err)

	out, err := json.Marshal(p)
	require.Nil(t, err)
	assert.JSONEq(t,
		`[{"month":"2020-01-01T00:00:00Z","cases":1,"rainfall_mm":2.5,"temperature_c":27}]`,
		string(out),
	)

	var decoded Panel
	require.Nil(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, p.Records(), decoded.Records())

	var invalid Panel
	err = json.Unmarshal([]byte(`[{"month":"2020-02-01T00:00:00Z"},{"month":"2020-01-01T00:00:00Z"}]`), &invalid)
	assert.ErrorIs(t, err, ErrNonMonotonic)
}

func TestRecordJSONMissingClimate(t *testing.T) {
	rec := Record{Month: month(2021, 6), Cases: 12, RainfallMM: math.NaN(), TemperatureC: 28}
	out, err := json.Marshal(rec)
	require.Nil(t, err)
	assert.JSONEq(t,
		`{"month":"2021-06-01T00:00:00Z","cases":12,"rainfall_mm":null,"temperature_c":28}`,
		string(out),
	)

	var decoded Record
	require.Nil(t, json.Unmarshal([]byte(`{"month":"2021-06-01T00:00:00Z","cases":12}`), &decoded))
	assert.True(t, decoded.Missing())
	assert.True(t, math.IsNaN(decoded.TemperatureC))
}
