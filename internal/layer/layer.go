// Package layer provides the neural network layers used by the
// consumption forecasting model: Dense, LSTM, GRU, Dropout and the
// SequenceUnroller that drives recurrent cells over a window.
package layer

import (
	"math"

	"github.com/wattcast/wattcast/internal/activations"
)

// Layer is a neural network layer.
//
// Backward accumulates parameter gradients into the layer's gradient
// buffers; callers zero them with ClearGradients between optimization
// steps. Reset clears any recurrent state before a new sequence.
type Layer interface {
	Forward(x []float64) []float64
	Backward(grad []float64) []float64
	Params() []float64
	SetParams([]float64)
	Gradients() []float64
	ClearGradients()
	Reset()
	InSize() int
	OutSize() int
}

// Trainable is implemented by layers that behave differently during
// training and inference (currently Dropout).
type Trainable interface {
	SetTraining(training bool)
}

// Dense is a fully connected layer.
// Weights are stored row-major and contiguous: the weight connecting
// input j to output o lives at weights[o*in+j].
type Dense struct {
	weights []float64
	biases  []float64
	act     activations.Activation
	inSize  int
	outSize int

	// Reusable buffers, allocated once.
	inputBuf  []float64
	outputBuf []float64
	preActBuf []float64
	gradWBuf  []float64
	gradBBuf  []float64
	gradInBuf []float64
}

// NewDense creates a dense layer with Xavier-initialized weights.
func NewDense(in, out int, act activations.Activation) *Dense {
	weights := make([]float64, out*in)
	biases := make([]float64, out)

	rng := NewRNG(uint64(in)*7919 + uint64(out)*104729 + 11)
	scale := math.Sqrt(2.0 / float64(in+out))
	for i := range weights {
		weights[i] = rng.Float64()*2*scale - scale
	}

	return &Dense{
		weights:   weights,
		biases:    biases,
		act:       act,
		inSize:    in,
		outSize:   out,
		inputBuf:  make([]float64, in),
		outputBuf: make([]float64, out),
		preActBuf: make([]float64, out),
		gradWBuf:  make([]float64, out*in),
		gradBBuf:  make([]float64, out),
		gradInBuf: make([]float64, in),
	}
}

// Forward computes act(Wx + b).
func (d *Dense) Forward(x []float64) []float64 {
	copy(d.inputBuf, x)

	for o := 0; o < d.outSize; o++ {
		sum := d.biases[o]
		wBase := o * d.inSize
		for i := 0; i < d.inSize; i++ {
			sum += d.weights[wBase+i] * d.inputBuf[i]
		}
		d.preActBuf[o] = sum
		d.outputBuf[o] = d.act.Activate(sum)
	}

	return d.outputBuf
}

// Backward accumulates weight and bias gradients and returns the
// gradient with respect to the input.
func (d *Dense) Backward(grad []float64) []float64 {
	for o := 0; o < d.outSize; o++ {
		dz := grad[o] * d.act.Derivative(d.preActBuf[o])
		d.gradBBuf[o] += dz

		wBase := o * d.inSize
		for i := 0; i < d.inSize; i++ {
			d.gradWBuf[wBase+i] += dz * d.inputBuf[i]
		}
	}

	for i := 0; i < d.inSize; i++ {
		sum := 0.0
		for o := 0; o < d.outSize; o++ {
			sum += grad[o] * d.act.Derivative(d.preActBuf[o]) * d.weights[o*d.inSize+i]
		}
		d.gradInBuf[i] = sum
	}

	return d.gradInBuf
}

// Params returns weights and biases flattened (copy).
func (d *Dense) Params() []float64 {
	params := make([]float64, 0, len(d.weights)+len(d.biases))
	params = append(params, d.weights...)
	params = append(params, d.biases...)
	return params
}

// SetParams updates weights and biases from a flattened slice.
func (d *Dense) SetParams(params []float64) {
	copy(d.weights, params[:len(d.weights)])
	copy(d.biases, params[len(d.weights):])
}

// Gradients returns the accumulated gradients flattened (copy).
func (d *Dense) Gradients() []float64 {
	grads := make([]float64, 0, len(d.gradWBuf)+len(d.gradBBuf))
	grads = append(grads, d.gradWBuf...)
	grads = append(grads, d.gradBBuf...)
	return grads
}

// ClearGradients zeroes the accumulated gradients.
func (d *Dense) ClearGradients() {
	for i := range d.gradWBuf {
		d.gradWBuf[i] = 0
	}
	for i := range d.gradBBuf {
		d.gradBBuf[i] = 0
	}
}

// Reset is a no-op; Dense holds no sequence state.
func (d *Dense) Reset() {}

// InSize returns the input size of the layer.
func (d *Dense) InSize() int { return d.inSize }

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int { return d.outSize }

// Activation returns the activation function used by this layer.
func (d *Dense) Activation() activations.Activation { return d.act }
