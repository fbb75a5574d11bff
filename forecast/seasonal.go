package forecast

import (
	"math"
	"time"

	"github.com/RyoungJKT/genetropica/panel"
)

// SeasonalPattern maps a calendar month to the mean case count observed in that month across the
// whole panel it was built from.
type SeasonalPattern map[time.Month]float64

// NewSeasonalPattern averages cases by calendar month over every record of p.
func NewSeasonalPattern(p *panel.Panel) SeasonalPattern {
	var sums, counts [12]float64
	for i := 0; i < p.Len(); i++ {
		rec := p.At(i)
		m := rec.Month.Month() - 1
		sums[m] += float64(rec.Cases)
		counts[m]++
	}

	pattern := make(SeasonalPattern)
	for m := 0; m < 12; m++ {
		if counts[m] == 0 {
			continue
		}
		pattern[time.Month(m+1)] = sums[m] / counts[m]
	}
	return pattern
}

// Mean averages the pattern across its observed calendar months. An empty pattern is NaN.
func (s SeasonalPattern) Mean() float64 {
	var sum float64
	var n int
	for m := time.January; m <= time.December; m++ {
		val, exists := s[m]
		if !exists {
			continue
		}
		sum += val
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Baseline returns the seasonal mean for month m, or the mean of the whole pattern when m was
// never observed.
func (s SeasonalPattern) Baseline(m time.Month) float64 {
	if val, exists := s[m]; exists {
		return val
	}
	return s.Mean()
}
