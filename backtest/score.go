package backtest

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoResiduals    = errors.New("no predicted and actual pairs to score")
)

func checkPairs(predicted, actual []float64) error {
	if len(predicted) != len(actual) {
		return fmt.Errorf("predicted has %d values, actual has %d, %w", len(predicted), len(actual), ErrResLenMismatch)
	}
	if len(actual) == 0 {
		return ErrNoResiduals
	}
	return nil
}

// MAE is the mean absolute error.
func MAE(predicted, actual []float64) (float64, error) {
	if err := checkPairs(predicted, actual); err != nil {
		return 0, err
	}
	return floats.Distance(predicted, actual, 1) / float64(len(actual)), nil
}

// MSE is the mean squared error.
func MSE(predicted, actual []float64) (float64, error) {
	if err := checkPairs(predicted, actual); err != nil {
		return 0, err
	}
	dist := floats.Distance(predicted, actual, 2)
	return dist * dist / float64(len(actual)), nil
}

// RMSE is the square root of the mean squared error.
func RMSE(predicted, actual []float64) (float64, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAPE is the mean absolute percentage error in percent. Zero actuals are skipped and the result
// is NaN when every actual is zero.
func MAPE(predicted, actual []float64) (float64, error) {
	if err := checkPairs(predicted, actual); err != nil {
		return 0, err
	}

	var mape float64
	var n int
	for i := 0; i < len(actual); i++ {
		if actual[i] == 0 {
			continue
		}
		mape += math.Abs((actual[i] - predicted[i]) / actual[i])
		n++
	}
	if n == 0 {
		return math.NaN(), nil
	}
	return 100 * mape / float64(n), nil
}
