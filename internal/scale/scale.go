// Package scale normalizes consumption values into [0,1] with a
// min-max scaler that is fitted exactly once.
package scale

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinMax maps values linearly from [min,max] to [0,1]. The range is
// learned by a single Fit call; refitting is an error so the same
// mapping is guaranteed across training, evaluation and forecasting.
type MinMax struct {
	min    float64
	max    float64
	fitted bool
}

// Fit learns the range from data. It errors if the scaler was already
// fitted, if data is empty, contains non-finite values, or is constant
// (degenerate range).
func (m *MinMax) Fit(data []float64) error {
	if m.fitted {
		return fmt.Errorf("scale: scaler already fitted")
	}
	if len(data) == 0 {
		return fmt.Errorf("scale: cannot fit on empty data")
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scale: non-finite value %v at index %d", v, i)
		}
	}

	m.min = floats.Min(data)
	m.max = floats.Max(data)
	if m.max == m.min {
		return fmt.Errorf("scale: constant data (min == max == %v)", m.min)
	}

	m.fitted = true
	return nil
}

// Transform returns a new slice with every value mapped into [0,1]
// relative to the fitted range. Values outside the range map outside
// [0,1], which is fine for held-out data.
func (m *MinMax) Transform(data []float64) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("scale: transform before fit")
	}
	out := make([]float64, len(data))
	span := m.max - m.min
	for i, v := range data {
		out[i] = (v - m.min) / span
	}
	return out, nil
}

// Inverse maps normalized values back to the original unit. Non-finite
// inputs are rejected rather than silently propagated.
func (m *MinMax) Inverse(data []float64) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("scale: inverse before fit")
	}
	out := make([]float64, len(data))
	span := m.max - m.min
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("scale: non-finite normalized value %v at index %d", v, i)
		}
		out[i] = v*span + m.min
	}
	return out, nil
}

// Min returns the fitted minimum.
func (m *MinMax) Min() float64 { return m.min }

// Max returns the fitted maximum.
func (m *MinMax) Max() float64 { return m.max }

// Fitted reports whether Fit has run.
func (m *MinMax) Fitted() bool { return m.fitted }
