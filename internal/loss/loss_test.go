package loss

import (
	"math"
	"testing"
)

func TestMSEForward(t *testing.T) {
	tests := []struct {
		name  string
		pred  []float64
		truth []float64
		want  float64
	}{
		{"perfect", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"unit error", []float64{2}, []float64{1}, 1},
		{"mixed", []float64{1, 3}, []float64{2, 1}, 2.5},
	}

	m := MSE{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Forward(tt.pred, tt.truth); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("MSE = %f, expected %f", got, tt.want)
			}
		})
	}
}

func TestMSEBackward(t *testing.T) {
	m := MSE{}
	grad := m.Backward([]float64{2, 0}, []float64{1, 1})

	// (2/n)(pred-true): n=2 -> [1, -1]
	want := []float64{1, -1}
	for i := range want {
		if math.Abs(grad[i]-want[i]) > 1e-12 {
			t.Errorf("grad[%d] = %f, expected %f", i, grad[i], want[i])
		}
	}
}

func TestMSEBackwardInPlaceMatchesBackward(t *testing.T) {
	m := MSE{}
	pred := []float64{0.4, -1.2, 3.3}
	truth := []float64{0.1, -1.0, 3.0}

	alloc := m.Backward(pred, truth)
	inPlace := make([]float64, 3)
	m.BackwardInPlace(pred, truth, inPlace)

	for i := range alloc {
		if alloc[i] != inPlace[i] {
			t.Errorf("grad[%d]: Backward %f, BackwardInPlace %f", i, alloc[i], inPlace[i])
		}
	}
}

func TestMAEForwardAndBackward(t *testing.T) {
	m := MAE{}

	if got := m.Forward([]float64{3, 1}, []float64{1, 2}); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("MAE = %f, expected 1.5", got)
	}

	grad := m.Backward([]float64{3, 1, 5}, []float64{1, 2, 5})
	want := []float64{1.0 / 3, -1.0 / 3, 0}
	for i := range want {
		if math.Abs(grad[i]-want[i]) > 1e-12 {
			t.Errorf("grad[%d] = %f, expected %f", i, grad[i], want[i])
		}
	}
}

func TestHuberQuadraticRegion(t *testing.T) {
	h := NewHuber(1.0)

	// |diff| <= delta behaves like half squared error.
	if got := h.Forward([]float64{0.5}, []float64{0}); math.Abs(got-0.125) > 1e-12 {
		t.Errorf("Huber = %f, expected 0.125", got)
	}
}

func TestHuberLinearRegion(t *testing.T) {
	h := NewHuber(1.0)

	// |diff| > delta: delta*(|diff| - delta/2) = 1*(3-0.5) = 2.5
	if got := h.Forward([]float64{3}, []float64{0}); math.Abs(got-2.5) > 1e-12 {
		t.Errorf("Huber = %f, expected 2.5", got)
	}

	grad := h.Backward([]float64{3, -3}, []float64{0, 0})
	if math.Abs(grad[0]-0.5) > 1e-12 || math.Abs(grad[1]+0.5) > 1e-12 {
		t.Errorf("linear-region grad = %v, expected [0.5, -0.5]", grad)
	}
}

func TestLossPanicsOnLengthMismatch(t *testing.T) {
	losses := map[string]Loss{
		"MSE":   MSE{},
		"MAE":   MAE{},
		"Huber": NewHuber(1),
	}

	for name, l := range losses {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic on mismatched lengths")
				}
			}()
			l.Forward([]float64{1, 2}, []float64{1})
		})
	}
}

func BenchmarkMSEBackwardInPlace(b *testing.B) {
	m := MSE{}
	pred := make([]float64, 1024)
	truth := make([]float64, 1024)
	grad := make([]float64, 1024)
	for i := range pred {
		pred[i] = float64(i)
		truth[i] = float64(i) * 0.99
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.BackwardInPlace(pred, truth, grad)
	}
}
