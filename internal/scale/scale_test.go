package scale

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitTransform(t *testing.T) {
	m := &MinMax{}
	require.NoError(t, m.Fit([]float64{10, 20, 30}))

	assert.Equal(t, 10.0, m.Min())
	assert.Equal(t, 30.0, m.Max())

	got, err := m.Transform([]float64{10, 20, 30})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, got)
}

func TestRoundTrip(t *testing.T) {
	m := &MinMax{}
	data := []float64{95.2, 130.7, 88.1, 142.9, 101.3}
	require.NoError(t, m.Fit(data))

	normalized, err := m.Transform(data)
	require.NoError(t, err)
	restored, err := m.Inverse(normalized)
	require.NoError(t, err)

	for i := range data {
		assert.InDelta(t, data[i], restored[i], 1e-12)
	}
}

func TestFitOnlyOnce(t *testing.T) {
	m := &MinMax{}
	require.NoError(t, m.Fit([]float64{1, 2}))

	err := m.Fit([]float64{3, 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already fitted")

	// The original range survives the rejected refit.
	assert.Equal(t, 1.0, m.Min())
	assert.Equal(t, 2.0, m.Max())
}

func TestUseBeforeFit(t *testing.T) {
	m := &MinMax{}

	_, err := m.Transform([]float64{1})
	require.Error(t, err)

	_, err = m.Inverse([]float64{0.5})
	require.Error(t, err)
}

func TestFitRejectsDegenerateInput(t *testing.T) {
	tests := []struct {
		name string
		data []float64
	}{
		{"empty", nil},
		{"constant", []float64{5, 5, 5}},
		{"nan", []float64{1, math.NaN(), 3}},
		{"inf", []float64{1, math.Inf(-1), 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MinMax{}
			require.Error(t, m.Fit(tt.data))
			assert.False(t, m.Fitted())
		})
	}
}

func TestTransformOutOfRangeValues(t *testing.T) {
	// Held-out data can exceed the fitted range; the mapping simply
	// lands outside [0,1].
	m := &MinMax{}
	require.NoError(t, m.Fit([]float64{0, 10}))

	got, err := m.Transform([]float64{-5, 15})
	require.NoError(t, err)
	assert.Equal(t, []float64{-0.5, 1.5}, got)
}

func TestInverseRejectsNonFinite(t *testing.T) {
	m := &MinMax{}
	require.NoError(t, m.Fit([]float64{0, 10}))

	_, err := m.Inverse([]float64{0.5, math.NaN()})
	require.Error(t, err)
}
