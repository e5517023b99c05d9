// Package opt provides the gradient-descent optimizers used to train
// the forecasting network.
package opt

import "math"

// Optimizer applies one update step to a parameter block. The slot
// identifies the block (the network uses the layer index) so stateful
// optimizers can keep per-block moment estimates.
type Optimizer interface {
	// Update adjusts params in place using the given gradients.
	Update(slot int, params, gradients []float64)

	// LearningRate returns the current learning rate.
	LearningRate() float64

	// SetLearningRate changes the learning rate (used by schedulers).
	SetLearningRate(lr float64)
}

// SGD is plain stochastic gradient descent.
type SGD struct {
	LR float64
}

// Update applies params -= lr * gradients.
func (s *SGD) Update(slot int, params, gradients []float64) {
	for i := range params {
		params[i] -= s.LR * gradients[i]
	}
}

// LearningRate returns the current learning rate.
func (s *SGD) LearningRate() float64 { return s.LR }

// SetLearningRate changes the learning rate.
func (s *SGD) SetLearningRate(lr float64) { s.LR = lr }

// Adam is the adaptive moment estimation optimizer. It keeps
// first/second moment estimates per parameter block and applies the
// standard bias correction.
type Adam struct {
	lr      float64
	Beta1   float64
	Beta2   float64
	Epsilon float64

	m     map[int][]float64
	v     map[int][]float64
	steps map[int]int
}

// NewAdam creates an Adam optimizer with the usual defaults
// (beta1=0.9, beta2=0.999, eps=1e-8).
func NewAdam(lr float64) *Adam {
	return &Adam{
		lr:      lr,
		Beta1:   0.9,
		Beta2:   0.999,
		Epsilon: 1e-8,
		m:       make(map[int][]float64),
		v:       make(map[int][]float64),
		steps:   make(map[int]int),
	}
}

// Update applies one Adam step to the parameter block.
func (a *Adam) Update(slot int, params, gradients []float64) {
	m, ok := a.m[slot]
	if !ok || len(m) != len(params) {
		m = make([]float64, len(params))
		a.m[slot] = m
		a.v[slot] = make([]float64, len(params))
		a.steps[slot] = 0
	}
	v := a.v[slot]

	a.steps[slot]++
	t := float64(a.steps[slot])
	mCorr := 1 - math.Pow(a.Beta1, t)
	vCorr := 1 - math.Pow(a.Beta2, t)

	for i := range params {
		g := gradients[i]
		m[i] = a.Beta1*m[i] + (1-a.Beta1)*g
		v[i] = a.Beta2*v[i] + (1-a.Beta2)*g*g

		mHat := m[i] / mCorr
		vHat := v[i] / vCorr
		params[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.Epsilon)
	}
}

// LearningRate returns the current learning rate.
func (a *Adam) LearningRate() float64 { return a.lr }

// SetLearningRate changes the learning rate.
func (a *Adam) SetLearningRate(lr float64) { a.lr = lr }
