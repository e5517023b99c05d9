package opt

import (
	"math"
	"testing"
)

func TestSGDUpdate(t *testing.T) {
	s := &SGD{LR: 0.1}

	params := []float64{1, 2, 3}
	grads := []float64{1, -1, 0.5}
	s.Update(0, params, grads)

	want := []float64{0.9, 2.1, 2.95}
	for i := range want {
		if math.Abs(params[i]-want[i]) > 1e-12 {
			t.Errorf("params[%d] = %f, expected %f", i, params[i], want[i])
		}
	}
}

func TestAdamFirstStepMovesByLearningRate(t *testing.T) {
	// With bias correction the first Adam step is ~lr * sign(gradient).
	a := NewAdam(0.01)

	params := []float64{1, 1}
	a.Update(0, params, []float64{0.5, -0.5})

	if math.Abs(params[0]-(1-0.01)) > 1e-6 {
		t.Errorf("params[0] = %f, expected ~0.99", params[0])
	}
	if math.Abs(params[1]-(1+0.01)) > 1e-6 {
		t.Errorf("params[1] = %f, expected ~1.01", params[1])
	}
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	// Minimize f(x) = (x-3)^2 from x=0.
	a := NewAdam(0.1)
	params := []float64{0}

	for i := 0; i < 500; i++ {
		grad := 2 * (params[0] - 3)
		a.Update(0, params, []float64{grad})
	}

	if math.Abs(params[0]-3) > 0.05 {
		t.Errorf("Adam converged to %f, expected ~3", params[0])
	}
}

func TestAdamKeepsSeparateStatePerSlot(t *testing.T) {
	a := NewAdam(0.1)

	first := []float64{0}
	second := []float64{0}

	// Drive slot 0 hard, slot 1 once. If moments were shared, slot 1's
	// update would be polluted by slot 0's history.
	for i := 0; i < 10; i++ {
		a.Update(0, first, []float64{1})
	}
	a.Update(1, second, []float64{1})

	fresh := NewAdam(0.1)
	expected := []float64{0}
	fresh.Update(7, expected, []float64{1})

	if math.Abs(second[0]-expected[0]) > 1e-12 {
		t.Errorf("slot 1 after one step = %f, fresh slot = %f", second[0], expected[0])
	}
}

func TestAdamLearningRateAccessors(t *testing.T) {
	a := NewAdam(0.001)
	if a.LearningRate() != 0.001 {
		t.Errorf("LearningRate = %f, expected 0.001", a.LearningRate())
	}
	a.SetLearningRate(0.0005)
	if a.LearningRate() != 0.0005 {
		t.Errorf("LearningRate after set = %f, expected 0.0005", a.LearningRate())
	}
}

func TestReduceLROnPlateau(t *testing.T) {
	s := &SGD{LR: 1.0}
	sched := NewReduceLROnPlateau(s, 0.5, 2, 0.001, 0.1)

	// Improving losses: rate untouched.
	sched.StepWithLoss(1.0)
	sched.StepWithLoss(0.5)
	if s.LR != 1.0 {
		t.Fatalf("LR = %f after improvements, expected 1.0", s.LR)
	}

	// Two stalled epochs trigger a halving.
	sched.StepWithLoss(0.5)
	sched.StepWithLoss(0.5)
	if s.LR != 0.5 {
		t.Fatalf("LR = %f after plateau, expected 0.5", s.LR)
	}

	// Keep stalling until the floor is hit.
	for i := 0; i < 10; i++ {
		sched.StepWithLoss(0.5)
	}
	if s.LR < 0.1 {
		t.Errorf("LR = %f, expected floor of 0.1", s.LR)
	}
}
