package forecast

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultRainfallLag     = 1
	DefaultConfidenceLevel = 0.95

	// DefaultMinSeasonalMonths is the history needed before a seasonal pattern is trusted.
	DefaultMinSeasonalMonths = 12
	// DefaultMinRegressionRows is the number of lagged rows needed to fit the rainfall regression.
	DefaultMinRegressionRows = 6
	// DefaultRecentRainfallMonths is the trailing window averaged to project rainfall forward.
	DefaultRecentRainfallMonths = 3

	DefaultFallbackMeanMonths   = 3
	DefaultFallbackStdDevMonths = 6
	DefaultFallbackMean         = 100.0
	DefaultFallbackStdDev       = 50.0
)

var (
	ErrInvalidOptions     = errors.New("invalid forecast options")
	ErrNonPositiveHorizon = fmt.Errorf("horizon must be at least one month, %w", ErrInvalidOptions)
	ErrNegativeLag        = fmt.Errorf("rainfall lag must be non-negative, %w", ErrInvalidOptions)
	ErrConfidenceLevel    = fmt.Errorf("confidence level must be strictly between 0 and 1, %w", ErrInvalidOptions)
	ErrNegativeWindow     = fmt.Errorf("window sizes must be non-negative, %w", ErrInvalidOptions)
	ErrFallbackDefaults   = fmt.Errorf("fallback defaults must be finite with a non-negative std-dev, %w", ErrInvalidOptions)
)

// FallbackOptions configures the moving average model used when history is too short for the
// seasonal model. DefaultMean and DefaultStdDev stand in for statistics that cannot be computed,
// e.g. an empty panel or a single month. Each unset field takes its own default, so a nil
// DefaultMean or DefaultStdDev uses DefaultFallbackMean or DefaultFallbackStdDev while a pointer
// to zero asks for zero.
type FallbackOptions struct {
	MeanMonths    int      `json:"mean_months"`
	StdDevMonths  int      `json:"std_dev_months"`
	DefaultMean   *float64 `json:"default_mean"`
	DefaultStdDev *float64 `json:"default_std_dev"`
}

// NewDefaultFallbackOptions returns the fallback configuration used when none is set.
func NewDefaultFallbackOptions() FallbackOptions {
	return FallbackOptions{
		MeanMonths:    DefaultFallbackMeanMonths,
		StdDevMonths:  DefaultFallbackStdDevMonths,
		DefaultMean:   Float64(DefaultFallbackMean),
		DefaultStdDev: Float64(DefaultFallbackStdDev),
	}
}

// Float64 returns a pointer to v for setting optional fallback defaults.
func Float64(v float64) *float64 {
	return &v
}

func (f FallbackOptions) defaultMean() float64 {
	if f.DefaultMean == nil {
		return DefaultFallbackMean
	}
	return *f.DefaultMean
}

func (f FallbackOptions) defaultStdDev() float64 {
	if f.DefaultStdDev == nil {
		return DefaultFallbackStdDev
	}
	return *f.DefaultStdDev
}

// Options configures a single forecast call.
type Options struct {
	// RainfallLag is how many months rainfall leads cases. Zero regresses on same month rainfall.
	RainfallLag int `json:"rainfall_lag"`

	// ConfidenceLevel is the coverage of the two sided prediction interval. Zero uses
	// DefaultConfidenceLevel.
	ConfidenceLevel float64 `json:"confidence_level"`

	MinSeasonalMonths    int `json:"min_seasonal_months"`
	MinRegressionRows    int `json:"min_regression_rows"`
	RecentRainfallMonths int `json:"recent_rainfall_months"`

	// FallbackOptions fields left unset use the values of NewDefaultFallbackOptions.
	FallbackOptions FallbackOptions `json:"fallback_options"`
}

// NewDefaultOptions returns a set of default forecast options
func NewDefaultOptions() *Options {
	return &Options{
		RainfallLag:          DefaultRainfallLag,
		ConfidenceLevel:      DefaultConfidenceLevel,
		MinSeasonalMonths:    DefaultMinSeasonalMonths,
		MinRegressionRows:    DefaultMinRegressionRows,
		RecentRainfallMonths: DefaultRecentRainfallMonths,
		FallbackOptions:      NewDefaultFallbackOptions(),
	}
}

// Validate checks the options and fills unset windows with defaults. The receiver is never
// modified so one Options value can be shared by concurrent forecasts.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	v := *o

	if v.RainfallLag < 0 {
		return nil, fmt.Errorf("got %d, %w", v.RainfallLag, ErrNegativeLag)
	}

	if v.ConfidenceLevel == 0 {
		v.ConfidenceLevel = DefaultConfidenceLevel
	}
	if !(v.ConfidenceLevel > 0 && v.ConfidenceLevel < 1) {
		return nil, fmt.Errorf("got %v, %w", v.ConfidenceLevel, ErrConfidenceLevel)
	}

	if v.MinSeasonalMonths < 0 || v.MinRegressionRows < 0 || v.RecentRainfallMonths < 0 {
		return nil, ErrNegativeWindow
	}
	if v.MinSeasonalMonths == 0 {
		v.MinSeasonalMonths = DefaultMinSeasonalMonths
	}
	if v.MinRegressionRows == 0 {
		v.MinRegressionRows = DefaultMinRegressionRows
	}
	if v.RecentRainfallMonths == 0 {
		v.RecentRainfallMonths = DefaultRecentRainfallMonths
	}

	fb := v.FallbackOptions
	if fb.MeanMonths < 0 || fb.StdDevMonths < 0 {
		return nil, ErrNegativeWindow
	}
	if fb.MeanMonths == 0 {
		fb.MeanMonths = DefaultFallbackMeanMonths
	}
	if fb.StdDevMonths == 0 {
		fb.StdDevMonths = DefaultFallbackStdDevMonths
	}
	mean, std := fb.defaultMean(), fb.defaultStdDev()
	if math.IsNaN(mean) || math.IsInf(mean, 0) || math.IsNaN(std) || math.IsInf(std, 0) || std < 0 {
		return nil, fmt.Errorf("got mean %v and std-dev %v, %w", mean, std, ErrFallbackDefaults)
	}
	fb.DefaultMean = Float64(mean)
	fb.DefaultStdDev = Float64(std)
	v.FallbackOptions = fb

	return &v, nil
}
