package layer

import (
	"math"
	"testing"
)

func TestDropoutForwardTraining(t *testing.T) {
	dropout := NewDropout(0.5, 100)
	dropout.SetTraining(true)

	input := make([]float64, 100)
	for i := range input {
		input[i] = 1.0
	}

	output := dropout.Forward(input)

	nonZero := 0
	for _, v := range output {
		if v != 0 {
			nonZero++
		}
	}

	// Roughly half should survive with p=0.5; the deterministic seed
	// keeps this stable across runs.
	if nonZero < 30 || nonZero > 70 {
		t.Errorf("expected ~50%% non-zero outputs, got %d/100", nonZero)
	}

	// Survivors must carry the inverted-dropout scale.
	for i, v := range output {
		if v != 0 && math.Abs(v-2.0) > 1e-12 {
			t.Errorf("output[%d] = %f, expected 2.0 (1/keep-prob)", i, v)
		}
	}
}

func TestDropoutForwardInference(t *testing.T) {
	dropout := NewDropout(0.5, 100)
	dropout.SetTraining(false)

	input := make([]float64, 100)
	for i := range input {
		input[i] = float64(i)
	}

	output := dropout.Forward(input)
	for i := range input {
		if output[i] != input[i] {
			t.Errorf("output[%d] = %f, expected %f", i, output[i], input[i])
		}
	}
}

func TestDropoutBackward(t *testing.T) {
	dropout := NewDropout(0.5, 10)
	dropout.SetTraining(true)

	input := make([]float64, 10)
	for i := range input {
		input[i] = 1.0
	}
	dropout.Forward(input)

	grad := make([]float64, 10)
	for i := range grad {
		grad[i] = 1.0
	}
	outputGrad := dropout.Backward(grad)

	scale := 2.0
	for i := 0; i < 10; i++ {
		if dropout.maskBuf[i] > 0 {
			if math.Abs(outputGrad[i]-scale) > 1e-12 {
				t.Errorf("grad[%d] = %f, expected %f (scaled)", i, outputGrad[i], scale)
			}
		} else if outputGrad[i] != 0 {
			t.Errorf("grad[%d] = %f, expected 0 (dropped)", i, outputGrad[i])
		}
	}
}

func TestDropoutNoParams(t *testing.T) {
	dropout := NewDropout(0.2, 10)

	if len(dropout.Params()) != 0 {
		t.Errorf("expected 0 params, got %d", len(dropout.Params()))
	}
	if len(dropout.Gradients()) != 0 {
		t.Errorf("expected 0 gradients, got %d", len(dropout.Gradients()))
	}

	// No-ops must not panic.
	dropout.SetParams([]float64{1, 2, 3})
	dropout.ClearGradients()
}

func TestDropoutResetReproducesMasks(t *testing.T) {
	dropout := NewDropout(0.5, 10)
	dropout.SetTraining(true)

	input := make([]float64, 10)
	for i := range input {
		input[i] = 1.0
	}

	dropout.Forward(input)
	mask1 := append([]float64(nil), dropout.maskBuf...)

	dropout.Reset()
	dropout.Forward(input)

	for i := 0; i < 10; i++ {
		if mask1[i] != dropout.maskBuf[i] {
			t.Errorf("mask mismatch at %d after Reset: %f vs %f", i, mask1[i], dropout.maskBuf[i])
		}
	}
}
