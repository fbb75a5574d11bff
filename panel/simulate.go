package panel

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// DefaultProvinces are used by Simulate when none are given.
var DefaultProvinces = []string{"DKI Jakarta", "Jawa Barat", "Jawa Tengah", "Jawa Timur", "Bali"}

// SimulateOptions configures synthetic province level observations.
type SimulateOptions struct {
	Start     time.Time `json:"start"`
	Months    int       `json:"months"`
	Provinces []string  `json:"provinces"`
	Seed      uint64    `json:"seed"`

	// RainfallMean and RainfallAmplitude describe a yearly rainfall wave peaking in RainPeak.
	RainfallMean      float64    `json:"rainfall_mean"`
	RainfallAmplitude float64    `json:"rainfall_amplitude"`
	RainPeak          time.Month `json:"rain_peak"`

	TemperatureMean      float64 `json:"temperature_mean"`
	TemperatureAmplitude float64 `json:"temperature_amplitude"`

	// BaseCases is the per province case level before the rainfall response. Cases respond to
	// rainfall ResponseLag months earlier scaled by RainfallResponse cases per mm.
	BaseCases        float64 `json:"base_cases"`
	RainfallResponse float64 `json:"rainfall_response"`
	ResponseLag      int     `json:"response_lag"`

	// NoiseScale is the std-dev of gaussian noise added to cases and rainfall.
	NoiseScale float64 `json:"noise_scale"`
}

// NewDefaultSimulateOptions returns four years of data across the default provinces.
func NewDefaultSimulateOptions() *SimulateOptions {
	return &SimulateOptions{
		Start:                time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		Months:               48,
		Provinces:            DefaultProvinces,
		Seed:                 1,
		RainfallMean:         200.0,
		RainfallAmplitude:    150.0,
		RainPeak:             time.January,
		TemperatureMean:      27.5,
		TemperatureAmplitude: 1.0,
		BaseCases:            150.0,
		RainfallResponse:     0.8,
		ResponseLag:          1,
		NoiseScale:           10.0,
	}
}

// Simulate generates monthly observations for each province. The same options and seed always
// produce the same observations.
func Simulate(opt *SimulateOptions) []Observation {
	if opt == nil {
		opt = NewDefaultSimulateOptions()
	}
	provinces := opt.Provinces
	if len(provinces) == 0 {
		provinces = DefaultProvinces
	}
	if opt.Months <= 0 {
		return nil
	}

	rng := rand.New(rand.NewPCG(opt.Seed, opt.Seed))
	months := GenerateMonths(opt.Start, opt.Months)

	obs := make([]Observation, 0, len(months)*len(provinces))
	for _, province := range provinces {
		rain := make(Series, len(months))
		rain.Add(GenerateConstY(len(months), opt.RainfallMean)).
			Add(GenerateSeasonalY(months, opt.RainfallAmplitude, opt.RainPeak)).
			Add(GenerateNoise(rng, len(months), opt.NoiseScale)).
			ClampMin(0)

		temp := make(Series, len(months))
		temp.Add(GenerateConstY(len(months), opt.TemperatureMean)).
			Add(GenerateSeasonalY(months, -opt.TemperatureAmplitude, opt.RainPeak))

		cases := make(Series, len(months))
		cases.Add(GenerateConstY(len(months), opt.BaseCases)).
			Add(rain.Shift(opt.ResponseLag).Scale(opt.RainfallResponse)).
			Add(GenerateNoise(rng, len(months), opt.NoiseScale)).
			ClampMin(0)

		for i, month := range months {
			obs = append(obs, Observation{
				Date:         month,
				Province:     province,
				Cases:        math.Round(cases[i]),
				RainfallMM:   rain[i],
				TemperatureC: temp[i],
			})
		}
	}

	return obs
}

// GenerateMonths returns n consecutive month starts beginning at start.
func GenerateMonths(start time.Time, n int) TimeSlice {
	t := make(TimeSlice, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, AddMonths(start, i))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func (s Series) Scale(c float64) Series {
	floats.Scale(c, s)
	return s
}

func (s Series) ClampMin(floor float64) Series {
	for i := range s {
		if s[i] < floor {
			s[i] = floor
		}
	}
	return s
}

// Shift returns a copy delayed by lag positions. Leading values repeat the first element so the
// series keeps its level.
func (s Series) Shift(lag int) Series {
	out := make(Series, len(s))
	for i := range s {
		j := i - lag
		if j < 0 {
			j = 0
		}
		out[i] = s[j]
	}
	return out
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateSeasonalY is a yearly cosine wave reaching amp in the peak month.
func GenerateSeasonalY(t TimeSlice, amp float64, peak time.Month) Series {
	y := make([]float64, 0, len(t))
	for _, month := range t {
		phase := 2.0 * math.Pi * float64(month.Month()-peak) / 12.0
		y = append(y, amp*math.Cos(phase))
	}
	return Series(y)
}

func GenerateNoise(rng *rand.Rand, n int, noiseScale float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, rng.NormFloat64()*noiseScale)
	}
	return Series(y)
}
