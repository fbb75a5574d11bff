package forecast

import (
	"log/slog"
	"math"

	"github.com/RyoungJKT/genetropica/linearmodel"
	mat_ "github.com/RyoungJKT/genetropica/mat"
	"github.com/RyoungJKT/genetropica/stats"
	"gonum.org/v1/gonum/mat"
)

// RegressionParameters relate lagged rainfall to deseasonalized cases.
type RegressionParameters struct {
	Intercept    float64 `json:"intercept"`
	BetaRainfall float64 `json:"beta_rainfall"`
	ResidualStd  float64 `json:"residual_std"`

	// RSquared is the share of deseasonalized variance explained by lagged rainfall. It is zero
	// when the fit is degenerate or the target is constant.
	RSquared float64 `json:"r_squared"`

	// Degenerate is set when the least squares fit failed and the parameters fell back to a zero
	// regression with the raw case std-dev.
	Degenerate bool `json:"degenerate"`
}

// FitRegression regresses deseasonalized cases on lagged rainfall. cases holds the raw counts of
// the same rows and only feeds the residual spread when the fit is degenerate. The fit never
// fails: a singular design zeroes both coefficients.
func FitRegression(lagged, deseasonalized, cases []float64) RegressionParameters {
	params, err := fitOLS(lagged, deseasonalized)
	if err != nil {
		slog.Debug("rainfall regression is degenerate, using seasonal baseline alone", "error", err.Error())
		return degenerateRegression(cases)
	}
	return params
}

func fitOLS(lagged, deseasonalized []float64) (RegressionParameters, error) {
	if len(lagged) == 0 {
		return RegressionParameters{}, linearmodel.ErrUnderdetermined
	}
	x, err := mat_.NewDenseFromColumns(lagged)
	if err != nil {
		return RegressionParameters{}, err
	}
	y := mat.NewDense(len(deseasonalized), 1, deseasonalized)

	model, err := linearmodel.NewOLSRegression(linearmodel.NewDefaultOLSOptions())
	if err != nil {
		return RegressionParameters{}, err
	}
	if err := model.Fit(x, y); err != nil {
		return RegressionParameters{}, err
	}

	residuals, err := model.Residuals(x, y)
	if err != nil {
		return RegressionParameters{}, err
	}
	residualStd := stats.StdDev(residuals)
	if math.IsNaN(residualStd) {
		return RegressionParameters{}, linearmodel.ErrUnderdetermined
	}

	r2, err := model.Score(x, y)
	if err != nil {
		return RegressionParameters{}, err
	}
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}

	return RegressionParameters{
		Intercept:    model.Intercept(),
		BetaRainfall: model.Coef()[0],
		ResidualStd:  residualStd,
		RSquared:     r2,
	}, nil
}

func degenerateRegression(cases []float64) RegressionParameters {
	std := stats.StdDev(cases)
	if math.IsNaN(std) {
		std = 0
	}
	return RegressionParameters{
		ResidualStd: std,
		Degenerate:  true,
	}
}
