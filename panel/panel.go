// Package panel holds the monthly case and climate series the forecaster is fit on. A Panel is
// immutable once built and always has unique, strictly increasing months.
package panel

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
)

var (
	ErrInvalidInput   = errors.New("panel is not a valid monthly time index")
	ErrNonMonotonic   = fmt.Errorf("months are not increasing, %w", ErrInvalidInput)
	ErrDuplicateMonth = fmt.Errorf("duplicate month, %w", ErrInvalidInput)
	ErrMismatchedLen  = fmt.Errorf("series have different lengths, %w", ErrInvalidInput)
	ErrNegativeCases  = fmt.Errorf("case counts must be non-negative, %w", ErrInvalidInput)
)

// Record is a single month of aggregated cases and climate. Climate values may be NaN when the
// upstream aggregate was missing. Cases are never negative.
type Record struct {
	Month        time.Time `json:"month"`
	Cases        int       `json:"cases"`
	RainfallMM   float64   `json:"rainfall_mm"`
	TemperatureC float64   `json:"temperature_c"`
}

// Missing reports whether any climate aggregate of the record is undefined. Infinite values are
// treated as missing.
func (r Record) Missing() bool {
	return !finite(r.RainfallMM) || !finite(r.TemperatureC)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type recordJSON struct {
	Month        time.Time `json:"month"`
	Cases        int       `json:"cases"`
	RainfallMM   *float64  `json:"rainfall_mm"`
	TemperatureC *float64  `json:"temperature_c"`
}

// MarshalJSON writes missing climate values as null.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Month:        r.Month,
		Cases:        r.Cases,
		RainfallMM:   nilIfNonFinite(r.RainfallMM),
		TemperatureC: nilIfNonFinite(r.TemperatureC),
	})
}

// UnmarshalJSON reads null or absent climate values as NaN.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		Month:        raw.Month,
		Cases:        raw.Cases,
		RainfallMM:   nanIfNil(raw.RainfallMM),
		TemperatureC: nanIfNil(raw.TemperatureC),
	}
	return nil
}

// Panel is an ordered monthly series of records.
type Panel struct {
	records []Record
}

// New validates and copies the records into a Panel. Each month is normalized to the first of
// the month in UTC before checking that months are strictly increasing. Negative case counts are
// rejected.
func New(records []Record) (*Panel, error) {
	recs := make([]Record, len(records))
	copy(recs, records)

	var lastMonth time.Time
	for i := range recs {
		recs[i].Month = MonthStart(recs[i].Month)
		if recs[i].Cases < 0 {
			return nil, fmt.Errorf("%d cases in %s, %w", recs[i].Cases, recs[i].Month.Format(MonthLayout), ErrNegativeCases)
		}
		if i == 0 {
			lastMonth = recs[i].Month
			continue
		}
		currMonth := recs[i].Month
		if currMonth.Equal(lastMonth) {
			return nil, fmt.Errorf("%s at %d, %w", currMonth.Format(MonthLayout), i, ErrDuplicateMonth)
		}
		if currMonth.Before(lastMonth) {
			return nil, fmt.Errorf("%s at %d follows %s, %w",
				currMonth.Format(MonthLayout), i, lastMonth.Format(MonthLayout), ErrNonMonotonic)
		}
		lastMonth = currMonth
	}
	return &Panel{records: recs}, nil
}

// NewFromSeries builds a Panel from column slices which must all share the same length.
func NewFromSeries(months []time.Time, cases []int, rainfall, temperature []float64) (*Panel, error) {
	n := len(months)
	if len(cases) != n || len(rainfall) != n || len(temperature) != n {
		return nil, fmt.Errorf(
			"months has length of %d, but cases, rainfall, temperature have lengths %d, %d, %d, %w",
			n, len(cases), len(rainfall), len(temperature), ErrMismatchedLen,
		)
	}
	recs := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, Record{
			Month:        months[i],
			Cases:        cases[i],
			RainfallMM:   rainfall[i],
			TemperatureC: temperature[i],
		})
	}
	return New(recs)
}

// Len returns the number of months. A nil panel has no months.
func (p *Panel) Len() int {
	if p == nil {
		return 0
	}
	return len(p.records)
}

// At returns the record at index i.
func (p *Panel) At(i int) Record {
	return p.records[i]
}

// Records returns a copy of all records.
func (p *Panel) Records() []Record {
	if p == nil {
		return nil
	}
	out := make([]Record, len(p.records))
	copy(out, p.records)
	return out
}

// Slice returns the sub panel of months in [start, end). The returned panel shares storage with
// p, which is safe since neither can be mutated.
func (p *Panel) Slice(start, end int) *Panel {
	return &Panel{records: p.records[start:end:end]}
}

// Months returns the month of every record.
func (p *Panel) Months() TimeSlice {
	out := make(TimeSlice, p.Len())
	for i := range out {
		out[i] = p.records[i].Month
	}
	return out
}

// Cases returns the case counts as floats for use with gonum.
func (p *Panel) Cases() []float64 {
	out := make([]float64, p.Len())
	for i := range out {
		out[i] = float64(p.records[i].Cases)
	}
	return out
}

func (p *Panel) Rainfall() []float64 {
	out := make([]float64, p.Len())
	for i := range out {
		out[i] = p.records[i].RainfallMM
	}
	return out
}

func (p *Panel) Temperature() []float64 {
	out := make([]float64, p.Len())
	for i := range out {
		out[i] = p.records[i].TemperatureC
	}
	return out
}

// LastMonth returns the final month of the panel or the zero time when empty.
func (p *Panel) LastMonth() time.Time {
	return p.Months().EndTime()
}

// DropMissing returns a panel without the months that have an undefined climate aggregate. The
// receiver is returned as is when nothing is dropped.
func (p *Panel) DropMissing() *Panel {
	var dropped int
	for i := 0; i < p.Len(); i++ {
		if p.records[i].Missing() {
			dropped++
		}
	}
	if dropped == 0 {
		return p
	}
	recs := make([]Record, 0, p.Len()-dropped)
	for _, r := range p.records {
		if r.Missing() {
			continue
		}
		recs = append(recs, r)
	}
	return &Panel{records: recs}
}

// LaggedRainfall pairs every month with the rainfall observed lag months earlier. Months whose
// lagged month is not in the panel are left out, so gaps drop rows rather than shifting the lag.
// The returned index refers to positions in p.
func (p *Panel) LaggedRainfall(lag int) ([]int, []float64) {
	byMonth := make(map[time.Time]float64, p.Len())
	for _, r := range p.records {
		byMonth[r.Month] = r.RainfallMM
	}

	idx := make([]int, 0, p.Len())
	lagged := make([]float64, 0, p.Len())
	for i, r := range p.records {
		val, exists := byMonth[AddMonths(r.Month, -lag)]
		if !exists {
			continue
		}
		idx = append(idx, i)
		lagged = append(lagged, val)
	}
	return idx, lagged
}

// MarshalJSON encodes the panel as an array of records.
func (p *Panel) MarshalJSON() ([]byte, error) {
	recs := p.Records()
	if recs == nil {
		recs = []Record{}
	}
	return json.Marshal(recs)
}

// UnmarshalJSON decodes an array of records and validates it like New.
func (p *Panel) UnmarshalJSON(data []byte) error {
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return err
	}
	np, err := New(recs)
	if err != nil {
		return err
	}
	*p = *np
	return nil
}
