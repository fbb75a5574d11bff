package genetropica_test

import (
	"fmt"
	"time"

	"github.com/RyoungJKT/genetropica"
	"github.com/RyoungJKT/genetropica/panel"
)

func ExampleForecaster_BacktestObservations() {
	obs := panel.Simulate(nil)

	f, err := genetropica.New(&genetropica.Options{
		Provinces:       []string{"Bali", "DKI Jakarta"},
		Parallelization: 4,
	})
	if err != nil {
		panic(err)
	}

	m, err := f.BacktestObservations(obs, 12)
	if err != nil {
		panic(err)
	}
	fmt.Println(m.NTests, m.Valid())
	// Output:
	// 12 true
}

func ExampleForecaster_ForecastObservations() {
	opt := &panel.SimulateOptions{
		Start:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Months:       5,
		Provinces:    []string{"Bali"},
		RainfallMean: 100,
		BaseCases:    40,
	}
	f, err := genetropica.New(nil)
	if err != nil {
		panic(err)
	}

	res, err := f.ForecastObservations(panel.Simulate(opt), 2)
	if err != nil {
		panic(err)
	}
	for _, pnt := range res {
		fmt.Printf("%s %.1f [%.1f, %.1f] %s\n",
			pnt.Date.Format(panel.MonthLayout), pnt.YHat, pnt.YHatLower, pnt.YHatUpper, pnt.ModelNotes)
	}
	// Output:
	// 2024-06 40.0 [40.0, 40.0] Simple moving average (insufficient data for seasonal)
	// 2024-07 40.0 [40.0, 40.0] Simple moving average (insufficient data for seasonal)
}
