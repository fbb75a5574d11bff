package backtest

import (
	"errors"
	"fmt"

	"github.com/RyoungJKT/genetropica/forecast"
)

const (
	// DefaultMinTrainingMonths is the history kept in front of the test window.
	DefaultMinTrainingMonths = 12
	DefaultParallelization   = 1
)

var ErrNegativeParallelization = errors.New("parallelization must be non-negative")

// Options configures a walk-forward backtest.
type Options struct {
	// ForecastOptions is used for every one-step-ahead forecast. Nil uses the forecast defaults.
	ForecastOptions *forecast.Options `json:"forecast_options"`

	// MinTrainingMonths is the shortest training panel the first iteration may see.
	MinTrainingMonths int `json:"min_training_months"`

	// Parallelization bounds how many iterations run at once. One runs them sequentially.
	Parallelization int `json:"parallelization"`
}

// NewDefaultOptions returns a set of default backtest options
func NewDefaultOptions() *Options {
	return &Options{
		ForecastOptions:   forecast.NewDefaultOptions(),
		MinTrainingMonths: DefaultMinTrainingMonths,
		Parallelization:   DefaultParallelization,
	}
}

// Validate returns a validated copy of the options with unset fields defaulted.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	v := *o

	fo, err := v.ForecastOptions.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid forecast options, %w", err)
	}
	v.ForecastOptions = fo

	if v.MinTrainingMonths <= 0 {
		v.MinTrainingMonths = DefaultMinTrainingMonths
	}
	if v.Parallelization < 0 {
		return nil, fmt.Errorf("got %d, %w", v.Parallelization, ErrNegativeParallelization)
	}
	if v.Parallelization == 0 {
		v.Parallelization = DefaultParallelization
	}
	return &v, nil
}
