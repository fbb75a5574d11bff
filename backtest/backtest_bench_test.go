package backtest

import (
	"os"
	"testing"

	"github.com/pkg/profile"
)

var benchMetrics Metrics

func benchmarkRun(b *testing.B, parallelization int) {
	p := simulatedPanel(b)
	opt := &Options{Parallelization: parallelization}

	b.ResetTimer()
	if os.Getenv("GENETROPICA_PROFILE") != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	for b.Loop() {
		benchMetrics = Run(p, 24, opt)
	}
}

func BenchmarkRunSequential(b *testing.B) {
	benchmarkRun(b, 1)
}

func BenchmarkRunParallel(b *testing.B) {
	benchmarkRun(b, 8)
}
