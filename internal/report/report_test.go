package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActualVsPredictedWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.png")
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	actual := []float64{100, 105, 98, 110, 102}
	predicted := []float64{101, 103, 99, 108, 104}

	require.NoError(t, ActualVsPredicted(path, start, actual, predicted))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestActualVsPredictedValidatesInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.png")
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Error(t, ActualVsPredicted(path, start, []float64{1, 2}, []float64{1}))
	require.Error(t, ActualVsPredicted(path, start, nil, nil))
}

func TestForecastWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.png")
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	recent := []float64{100, 101, 102, 103}
	fc := []float64{104, 103, 101}

	require.NoError(t, Forecast(path, start, recent, fc))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestForecastValidatesInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.png")
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Error(t, Forecast(path, start, nil, []float64{1}))
	require.Error(t, Forecast(path, start, []float64{1}, nil))
}
