// Package genetropica forecasts monthly dengue cases from a dengue and climate panel and scores
// those forecasts with walk-forward backtests.
//
// A Forecaster holds validated options only. Every call fits a fresh model from the data it is
// given, so a single Forecaster may be shared across goroutines.
package genetropica

import (
	"errors"
	"fmt"

	"github.com/RyoungJKT/genetropica/backtest"
	"github.com/RyoungJKT/genetropica/forecast"
	"github.com/RyoungJKT/genetropica/panel"
)

var ErrNoObservations = errors.New("no observations left after filtering provinces")

// Options configures a Forecaster.
type Options struct {
	ForecastOptions *forecast.Options `json:"forecast_options"`

	// Parallelization bounds the concurrent iterations of a backtest.
	Parallelization int `json:"parallelization"`

	// Provinces restricts raw observations before they are aggregated. Empty keeps all.
	Provinces []string `json:"provinces"`
}

// NewDefaultOptions returns a set of default forecaster options
func NewDefaultOptions() *Options {
	return &Options{
		ForecastOptions: forecast.NewDefaultOptions(),
		Parallelization: backtest.DefaultParallelization,
	}
}

// Validate returns a validated copy of the options.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	v := *o

	fo, err := v.ForecastOptions.Validate()
	if err != nil {
		return nil, err
	}
	v.ForecastOptions = fo

	if v.Parallelization < 0 {
		return nil, fmt.Errorf("got %d, %w", v.Parallelization, backtest.ErrNegativeParallelization)
	}
	if v.Parallelization == 0 {
		v.Parallelization = backtest.DefaultParallelization
	}
	v.Provinces = append([]string(nil), v.Provinces...)
	return &v, nil
}

// Forecaster forecasts and backtests dengue panels with a fixed set of options.
type Forecaster struct {
	opt *Options
}

// New creates a Forecaster using the provided options. If no options are provided a default is
// used.
func New(opt *Options) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecaster, %w", err)
	}
	return &Forecaster{opt: opt}, nil
}

// Options returns a copy of the validated options.
func (f *Forecaster) Options() Options {
	opt := *f.opt
	fo := *f.opt.ForecastOptions
	fo.FallbackOptions.DefaultMean = forecast.Float64(*fo.FallbackOptions.DefaultMean)
	fo.FallbackOptions.DefaultStdDev = forecast.Float64(*fo.FallbackOptions.DefaultStdDev)
	opt.ForecastOptions = &fo
	opt.Provinces = append([]string(nil), f.opt.Provinces...)
	return opt
}

// Fit returns the model the next forecast of p would use.
func (f *Forecaster) Fit(p *panel.Panel) (forecast.Model, error) {
	return forecast.Fit(p, f.opt.ForecastOptions)
}

// Forecast predicts the horizon months following the last month of p.
func (f *Forecaster) Forecast(p *panel.Panel, horizon int) (forecast.Table, error) {
	return forecast.Forecast(p, horizon, f.opt.ForecastOptions)
}

// Panel filters raw observations to the configured provinces and aggregates them by month.
func (f *Forecaster) Panel(obs []panel.Observation) (*panel.Panel, error) {
	if len(f.opt.Provinces) > 0 {
		obs = panel.FilterProvinces(obs, f.opt.Provinces...)
		if len(obs) == 0 {
			return nil, fmt.Errorf("provinces %v, %w", f.opt.Provinces, ErrNoObservations)
		}
	}
	p, err := panel.Aggregate(obs)
	if err != nil {
		return nil, fmt.Errorf("unable to aggregate observations, %w", err)
	}
	return p, nil
}

// ForecastObservations aggregates raw observations before forecasting.
func (f *Forecaster) ForecastObservations(obs []panel.Observation, horizon int) (forecast.Table, error) {
	p, err := f.Panel(obs)
	if err != nil {
		return nil, err
	}
	return f.Forecast(p, horizon)
}

// Backtest scores one-step-ahead forecasts over the last testMonths months of p.
func (f *Forecaster) Backtest(p *panel.Panel, testMonths int) backtest.Metrics {
	return backtest.Run(p, testMonths, &backtest.Options{
		ForecastOptions: f.opt.ForecastOptions,
		Parallelization: f.opt.Parallelization,
	})
}

// BacktestObservations aggregates raw observations before backtesting.
func (f *Forecaster) BacktestObservations(obs []panel.Observation, testMonths int) (backtest.Metrics, error) {
	p, err := f.Panel(obs)
	if err != nil {
		return backtest.Metrics{}, err
	}
	return f.Backtest(p, testMonths), nil
}
