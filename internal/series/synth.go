package series

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Synthetic generation defaults. The base load and cycle amplitudes
// are in kWh and roughly match a small commercial building.
const (
	baseLoad        = 100.0
	dailyAmplitude  = 30.0
	weeklyAmplitude = 15.0
	noiseSigma      = 5.0

	hoursPerDay  = 24
	hoursPerWeek = 7 * 24
)

// Generate synthesizes n hours of consumption starting at start:
// a base load with daily and weekly sinusoidal cycles plus seeded
// Gaussian noise. The same seed always yields the same series.
func Generate(start time.Time, n int, seed uint64) *Series {
	noise := distuv.Normal{
		Mu:    0,
		Sigma: noiseSigma,
		Src:   rand.NewSource(seed),
	}

	values := make([]float64, n)
	for i := range values {
		daily := dailyAmplitude * math.Sin(2*math.Pi*float64(i)/hoursPerDay)
		weekly := weeklyAmplitude * math.Sin(2*math.Pi*float64(i)/hoursPerWeek)
		values[i] = baseLoad + daily + weekly + noise.Rand()
	}

	return &Series{Start: start, Values: values}
}
