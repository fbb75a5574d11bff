// Package backtest measures forecast accuracy by walking forward through a panel and forecasting
// each held out month from the months before it.
package backtest

import (
	"log/slog"

	"github.com/RyoungJKT/genetropica/forecast"
	"github.com/RyoungJKT/genetropica/panel"
	"golang.org/x/sync/errgroup"
)

type iteration struct {
	predicted float64
	actual    float64
	ok        bool
}

// Run backtests the forecaster over the last testMonths months of p. Iteration i trains on every
// month before len-testMonths+i and forecasts that month. Iterations that fail to forecast are
// skipped. Metrics are NaN with NTests of zero when p is shorter than testMonths plus the minimum
// training history, when testMonths is not positive, or when no iteration succeeds.
func Run(p *panel.Panel, testMonths int, opt *Options) Metrics {
	opt, err := opt.Validate()
	if err != nil {
		slog.Warn("invalid backtest options", "error", err.Error())
		return unavailable()
	}
	if testMonths <= 0 || p.Len() < testMonths+opt.MinTrainingMonths {
		slog.Debug("insufficient history for backtest",
			"months", p.Len(), "test_months", testMonths, "min_training_months", opt.MinTrainingMonths)
		return unavailable()
	}

	results := make([]iteration, testMonths)
	start := p.Len() - testMonths

	var g errgroup.Group
	g.SetLimit(opt.Parallelization)
	for i := 0; i < testMonths; i++ {
		g.Go(func() error {
			results[i] = runIteration(p, start+i, opt.ForecastOptions)
			return nil
		})
	}
	_ = g.Wait()

	predicted := make([]float64, 0, testMonths)
	actual := make([]float64, 0, testMonths)
	for _, res := range results {
		if !res.ok {
			continue
		}
		predicted = append(predicted, res.predicted)
		actual = append(actual, res.actual)
	}
	return score(predicted, actual)
}

func runIteration(p *panel.Panel, cutoff int, opt *forecast.Options) iteration {
	res, err := forecast.Forecast(p.Slice(0, cutoff), 1, opt)
	if err != nil {
		slog.Debug("skipping backtest iteration", "cutoff", cutoff, "error", err.Error())
		return iteration{}
	}
	if len(res) == 0 {
		slog.Debug("skipping backtest iteration with empty forecast", "cutoff", cutoff)
		return iteration{}
	}
	return iteration{
		predicted: res[0].YHat,
		actual:    float64(p.At(cutoff).Cases),
		ok:        true,
	}
}

func score(predicted, actual []float64) Metrics {
	if len(actual) == 0 {
		return unavailable()
	}
	m := unavailable()
	m.NTests = len(actual)

	var err error
	if m.MAE, err = MAE(predicted, actual); err != nil {
		return unavailable()
	}
	if m.MSE, err = MSE(predicted, actual); err != nil {
		return unavailable()
	}
	if m.RMSE, err = RMSE(predicted, actual); err != nil {
		return unavailable()
	}
	if m.MAPE, err = MAPE(predicted, actual); err != nil {
		return unavailable()
	}
	return m
}
