// Package stats has the small summary statistics the forecaster computes over trailing windows.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrConfidenceRange = errors.New("confidence level must be strictly between 0 and 1")

// Tail returns the last n values of x, or all of x when it is shorter than n.
func Tail(x []float64, n int) []float64 {
	if n < 0 {
		n = 0
	}
	if len(x) <= n {
		return x
	}
	return x[len(x)-n:]
}

// Mean is the arithmetic mean of x. An empty slice is NaN.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Sum(x) / float64(len(x))
}

// StdDev is the sample standard deviation of x with n-1 degrees of freedom. Fewer than two
// values are NaN.
func StdDev(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// TailMean is the mean of the last n values of x.
func TailMean(x []float64, n int) float64 {
	return Mean(Tail(x, n))
}

// TailStdDev is the sample standard deviation of the last n values of x.
func TailStdDev(x []float64, n int) float64 {
	return StdDev(Tail(x, n))
}

// TwoSidedZ returns the standard normal quantile at (1+confidence)/2, i.e. the half width in
// standard deviations of a central interval covering the given probability.
func TwoSidedZ(confidence float64) (float64, error) {
	if !(confidence > 0 && confidence < 1) {
		return 0, fmt.Errorf("got %v, %w", confidence, ErrConfidenceRange)
	}
	return distuv.UnitNormal.Quantile((1.0 + confidence) / 2.0), nil
}
