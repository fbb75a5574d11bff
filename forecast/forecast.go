// Package forecast projects monthly dengue cases a few months ahead from a seasonal baseline and
// a lagged rainfall regression, falling back to a moving average when history is short.
package forecast

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"text/tabwriter"
	"time"

	"github.com/RyoungJKT/genetropica/panel"
	"github.com/RyoungJKT/genetropica/stats"
)

// Point is the forecast for one future month.
type Point struct {
	Date       time.Time `json:"date"`
	YHat       float64   `json:"yhat"`
	YHatLower  float64   `json:"yhat_lower"`
	YHatUpper  float64   `json:"yhat_upper"`
	ModelNotes string    `json:"model_notes"`
}

// Table is an ordered sequence of forecast points, one per horizon month.
type Table []Point

// TablePrint writes the table in aligned columns.
func (t Table) TablePrint(w io.Writer) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "Month\tForecast\tLower\tUpper\tModel\t\n"); err != nil {
		return err
	}
	for _, p := range t {
		if _, err := fmt.Fprintf(tbl, "%s\t%.1f\t%.1f\t%.1f\t%s\t\n",
			p.Date.Format(panel.MonthLayout), p.YHat, p.YHatLower, p.YHatUpper, p.ModelNotes); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// Fit builds the forecast model for p. Months with a missing climate aggregate are ignored. Short
// histories produce a *Fallback, otherwise a *SeasonalRegression. Only invalid options return an
// error; a nil or empty panel yields the fallback with its configured defaults.
func Fit(p *panel.Panel, opt *Options) (Model, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	z, err := stats.TwoSidedZ(opt.ConfidenceLevel)
	if err != nil {
		return nil, err
	}

	p = p.DropMissing()
	if gaps := p.Months().Gaps(); gaps > 0 {
		slog.Debug("panel has missing months, seasonal means rest on fewer years",
			"months", p.Len(), "gaps", gaps)
	}
	if p.Len() < opt.MinSeasonalMonths {
		slog.Debug("insufficient history for seasonal model",
			"months", p.Len(), "min_months", opt.MinSeasonalMonths)
		return newFallback(p, opt.FallbackOptions, z), nil
	}

	// the pattern uses every month, including those without a lagged rainfall value
	pattern := NewSeasonalPattern(p)

	idx, lagged := p.LaggedRainfall(opt.RainfallLag)
	if len(idx) < opt.MinRegressionRows {
		slog.Debug("insufficient lagged rows for rainfall regression",
			"rows", len(idx), "min_rows", opt.MinRegressionRows, "rainfall_lag", opt.RainfallLag)
		return newFallback(p, opt.FallbackOptions, z), nil
	}

	cases := make([]float64, len(idx))
	deseasonalized := make([]float64, len(idx))
	for k, i := range idx {
		rec := p.At(i)
		cases[k] = float64(rec.Cases)
		deseasonalized[k] = cases[k] - pattern.Baseline(rec.Month.Month())
	}

	return &SeasonalRegression{
		Pattern:        pattern,
		Params:         FitRegression(lagged, deseasonalized, cases),
		RainfallLag:    opt.RainfallLag,
		RecentRainfall: stats.TailMean(p.Rainfall(), opt.RecentRainfallMonths),
		Z:              z,
		TrainingRows:   len(idx),
	}, nil
}

func newFallback(p *panel.Panel, opt FallbackOptions, z float64) *Fallback {
	cases := p.Cases()
	fb := &Fallback{
		Mean:   stats.TailMean(cases, opt.MeanMonths),
		StdDev: stats.TailStdDev(cases, opt.StdDevMonths),
		Z:      z,
	}
	if math.IsNaN(fb.Mean) {
		fb.Mean = opt.defaultMean()
		fb.Defaulted = true
	}
	if math.IsNaN(fb.StdDev) {
		fb.StdDev = opt.defaultStdDev()
		fb.Defaulted = true
	}
	return fb
}

// Forecast fits a model on p and predicts the horizon months that follow the last month of p.
// The horizon starts after the last month of p even when that month has a missing climate
// aggregate and was left out of the fit.
func Forecast(p *panel.Panel, horizon int, opt *Options) (Table, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("got %d, %w", horizon, ErrNonPositiveHorizon)
	}
	model, err := Fit(p, opt)
	if err != nil {
		return nil, err
	}
	return model.Predict(panel.NextMonths(p.LastMonth(), horizon)), nil
}
