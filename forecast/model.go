package forecast

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"
)

// NotesFallback identifies forecasts produced by the moving average fallback.
const NotesFallback = "Simple moving average (insufficient data for seasonal)"

// SeasonalNotes identifies forecasts produced by the seasonal regression for the given lag.
func SeasonalNotes(lag int) string {
	return fmt.Sprintf("Seasonal naive + rainfall (lag=%dmo)", lag)
}

// Model is a fitted forecast model. The only implementations are *SeasonalRegression and
// *Fallback.
type Model interface {
	// Predict produces one point per date. Interval width is the same for every date.
	Predict(dates []time.Time) Table

	// Notes is the human readable identifier carried by every predicted point.
	Notes() string

	TablePrint(w io.Writer, prefix, indent string) error

	isModel()
}

// SeasonalRegression adds a lagged rainfall regression on top of calendar month means.
type SeasonalRegression struct {
	Pattern     SeasonalPattern      `json:"seasonal_pattern"`
	Params      RegressionParameters `json:"regression"`
	RainfallLag int                  `json:"rainfall_lag"`

	// RecentRainfall is the trailing rainfall mean held constant over the horizon.
	RecentRainfall float64 `json:"recent_rainfall"`

	// Z is the normal quantile scaling the residual std-dev into the interval half width.
	Z float64 `json:"z"`

	TrainingRows int `json:"training_rows"`
}

func (s *SeasonalRegression) isModel() {}

func (s *SeasonalRegression) Notes() string {
	return SeasonalNotes(s.RainfallLag)
}

func (s *SeasonalRegression) Predict(dates []time.Time) Table {
	notes := s.Notes()
	margin := s.Z * s.Params.ResidualStd
	regression := s.Params.Intercept + s.Params.BetaRainfall*s.RecentRainfall

	res := make(Table, 0, len(dates))
	for _, date := range dates {
		yhat := s.Pattern.Baseline(date.Month()) + regression
		res = append(res, newPoint(date, yhat, margin, notes))
	}
	return res
}

func (s *SeasonalRegression) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%sModel: %s\n", prefix, s.Notes()); err != nil {
		return err
	}
	in := prefix + indent
	if _, err := fmt.Fprintf(w, "%sTraining Rows: %d    Recent Rainfall: %.2f mm\n", in, s.TrainingRows, s.RecentRainfall); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%sIntercept: %.3f    Beta Rainfall: %.4f    Residual Std: %.3f    R2: %.3f    Degenerate: %t\n",
		in, s.Params.Intercept, s.Params.BetaRainfall, s.Params.ResidualStd, s.Params.RSquared, s.Params.Degenerate); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%sSeasonal Pattern:\n", in); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	for m := time.January; m <= time.December; m++ {
		val := "..."
		if mean, exists := s.Pattern[m]; exists {
			val = fmt.Sprintf("%.1f", mean)
		}
		if _, err := fmt.Fprintf(tbl, "%s%s\t%s\t\n", in+indent, m.String()[:3], val); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// Fallback repeats a trailing mean with a trailing std-dev interval for every horizon month.
type Fallback struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Z      float64 `json:"z"`

	// Defaulted is set when either statistic came from the configured defaults.
	Defaulted bool `json:"defaulted"`
}

func (f *Fallback) isModel() {}

func (f *Fallback) Notes() string {
	return NotesFallback
}

func (f *Fallback) Predict(dates []time.Time) Table {
	margin := f.Z * f.StdDev
	res := make(Table, 0, len(dates))
	for _, date := range dates {
		res = append(res, newPoint(date, f.Mean, margin, NotesFallback))
	}
	return res
}

func (f *Fallback) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%sModel: %s\n", prefix, f.Notes()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s%sMean: %.3f    Std Dev: %.3f    Defaulted: %t\n",
		prefix, indent, f.Mean, f.StdDev, f.Defaulted)
	return err
}

func newPoint(date time.Time, yhat, margin float64, notes string) Point {
	yhat = math.Max(0, yhat)
	margin = math.Abs(margin)
	return Point{
		Date:       date,
		YHat:       yhat,
		YHatLower:  math.Max(0, yhat-margin),
		YHatUpper:  yhat + margin,
		ModelNotes: notes,
	}
}
