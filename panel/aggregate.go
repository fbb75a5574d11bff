package panel

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// Observation is a raw row from the data loading layer, usually one province for one month. NaN
// marks a missing value.
type Observation struct {
	Date         time.Time
	Province     string
	Cases        float64
	RainfallMM   float64
	TemperatureC float64
}

type observationJSON struct {
	Date         time.Time `json:"date"`
	Province     string    `json:"province,omitempty"`
	Cases        *float64  `json:"cases"`
	RainfallMM   *float64  `json:"rainfall_mm"`
	TemperatureC *float64  `json:"temperature_c"`
}

func nanIfNil(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func nilIfNonFinite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// MarshalJSON writes missing values as null.
func (o Observation) MarshalJSON() ([]byte, error) {
	return json.Marshal(observationJSON{
		Date:         o.Date,
		Province:     o.Province,
		Cases:        nilIfNonFinite(o.Cases),
		RainfallMM:   nilIfNonFinite(o.RainfallMM),
		TemperatureC: nilIfNonFinite(o.TemperatureC),
	})
}

// UnmarshalJSON reads null or absent values as NaN.
func (o *Observation) UnmarshalJSON(data []byte) error {
	var raw observationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Observation{
		Date:         raw.Date,
		Province:     raw.Province,
		Cases:        nanIfNil(raw.Cases),
		RainfallMM:   nanIfNil(raw.RainfallMM),
		TemperatureC: nanIfNil(raw.TemperatureC),
	}
	return nil
}

// FilterProvinces keeps observations from the listed provinces. No provinces keeps everything.
func FilterProvinces(obs []Observation, provinces ...string) []Observation {
	if len(provinces) == 0 {
		return obs
	}
	keep := make(map[string]struct{}, len(provinces))
	for _, p := range provinces {
		keep[p] = struct{}{}
	}

	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if _, exists := keep[o.Province]; exists {
			out = append(out, o)
		}
	}
	return out
}

type monthAgg struct {
	cases    float64
	casesCnt int
	rain     float64
	rainCnt  int
	temp     float64
	tempCnt  int
}

func (a monthAgg) record(month time.Time) (Record, bool) {
	if a.casesCnt == 0 || a.rainCnt == 0 || a.tempCnt == 0 {
		return Record{}, false
	}
	return Record{
		Month:        month,
		Cases:        int(math.Round(a.cases)),
		RainfallMM:   a.rain / float64(a.rainCnt),
		TemperatureC: a.temp / float64(a.tempCnt),
	}, true
}

// Aggregate collapses observations to one record per calendar month by summing cases and
// averaging rainfall and temperature, skipping missing values. Months where any aggregate is
// undefined are dropped. Observations may arrive in any order.
func Aggregate(obs []Observation) (*Panel, error) {
	byMonth := make(map[time.Time]*monthAgg)
	for _, o := range obs {
		month := MonthStart(o.Date)
		agg, exists := byMonth[month]
		if !exists {
			agg = new(monthAgg)
			byMonth[month] = agg
		}
		if finite(o.Cases) {
			agg.cases += o.Cases
			agg.casesCnt++
		}
		if finite(o.RainfallMM) {
			agg.rain += o.RainfallMM
			agg.rainCnt++
		}
		if finite(o.TemperatureC) {
			agg.temp += o.TemperatureC
			agg.tempCnt++
		}
	}

	months := make([]time.Time, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Before(months[j])
	})

	recs := make([]Record, 0, len(months))
	for _, month := range months {
		rec, ok := byMonth[month].record(month)
		if !ok {
			slog.Debug("dropping month with missing aggregate", "month", month.Format(MonthLayout))
			continue
		}
		recs = append(recs, rec)
	}
	return New(recs)
}
