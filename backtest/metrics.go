package backtest

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/goccy/go-json"
)

// Metrics summarizes one-step-ahead forecast errors over a backtest. Error values are NaN when no
// forecast could be scored, in which case NTests is zero.
type Metrics struct {
	MAE    float64
	RMSE   float64
	MSE    float64
	MAPE   float64
	NTests int
}

// unavailable is returned when the panel is too short or no iteration produced a forecast.
func unavailable() Metrics {
	return Metrics{
		MAE:  math.NaN(),
		RMSE: math.NaN(),
		MSE:  math.NaN(),
		MAPE: math.NaN(),
	}
}

// Valid reports whether at least one forecast was scored.
func (m Metrics) Valid() bool {
	return m.NTests > 0 && !math.IsNaN(m.MAE)
}

type metricsJSON struct {
	MAE    *float64 `json:"mae"`
	RMSE   *float64 `json:"rmse"`
	MSE    *float64 `json:"mse"`
	MAPE   *float64 `json:"mape"`
	NTests int      `json:"n_tests"`
}

func nilIfNonFinite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func nanIfNil(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// MarshalJSON writes undefined errors as null.
func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricsJSON{
		MAE:    nilIfNonFinite(m.MAE),
		RMSE:   nilIfNonFinite(m.RMSE),
		MSE:    nilIfNonFinite(m.MSE),
		MAPE:   nilIfNonFinite(m.MAPE),
		NTests: m.NTests,
	})
}

// UnmarshalJSON reads null or absent errors as NaN.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	var mj metricsJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return err
	}
	*m = Metrics{
		MAE:    nanIfNil(mj.MAE),
		RMSE:   nanIfNil(mj.RMSE),
		MSE:    nanIfNil(mj.MSE),
		MAPE:   nanIfNil(mj.MAPE),
		NTests: mj.NTests,
	}
	return nil
}

func (m Metrics) TablePrint(w io.Writer) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "Tests\tMAE\tRMSE\tMSE\tMAPE (%%)\t\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tbl, "%d\t%.3f\t%.3f\t%.3f\t%.2f\t\n", m.NTests, m.MAE, m.RMSE, m.MSE, m.MAPE); err != nil {
		return err
	}
	return tbl.Flush()
}
