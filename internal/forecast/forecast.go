// Package forecast produces multi-step forecasts by recursively
// feeding model predictions back into a sliding input window.
package forecast

import (
	"fmt"
	"math"
)

// Predictor is the model surface the forecaster needs: one window of
// normalized values in, a single-element prediction out.
type Predictor interface {
	Forward(x []float64) []float64
}

// Ring is a fixed-size ring buffer over the most recent window of
// normalized values. Push drops the oldest value and appends the
// newest; Window materializes the buffer in chronological order.
type Ring struct {
	buf  []float64
	head int
	win  []float64
}

// NewRing creates a ring seeded with the given window. The seed is
// copied.
func NewRing(seed []float64) (*Ring, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("forecast: empty ring seed")
	}
	buf := make([]float64, len(seed))
	copy(buf, seed)
	return &Ring{buf: buf, win: make([]float64, len(seed))}, nil
}

// Len returns the window size.
func (r *Ring) Len() int { return len(r.buf) }

// Push drops the oldest value and appends v.
func (r *Ring) Push(v float64) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

// Window returns the buffer contents oldest-first. The returned slice
// is reused across calls; callers must not retain it.
func (r *Ring) Window() []float64 {
	n := len(r.buf)
	for i := 0; i < n; i++ {
		r.win[i] = r.buf[(r.head+i)%n]
	}
	return r.win
}

// Recursive forecasts steps values ahead. The ring is seeded from the
// last observed window; each iteration predicts one value, records it,
// and slides it into the window for the next iteration. A prediction
// that is not a single finite value aborts the whole forecast.
func Recursive(p Predictor, seed []float64, steps int) ([]float64, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("forecast: steps must be positive, got %d", steps)
	}

	ring, err := NewRing(seed)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, steps)
	for i := 0; i < steps; i++ {
		pred := p.Forward(ring.Window())
		if len(pred) != 1 {
			return nil, fmt.Errorf("forecast: step %d: prediction has %d values, want 1", i, len(pred))
		}
		v := pred[0]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("forecast: step %d: non-finite prediction %v", i, v)
		}

		out = append(out, v)
		ring.Push(v)
	}
	return out, nil
}
