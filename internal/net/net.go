// Package net assembles layers into a trainable network and provides
// the fit/predict surface the forecasting pipeline consumes.
package net

import (
	"fmt"
	"math"

	"github.com/wattcast/wattcast/internal/layer"
	"github.com/wattcast/wattcast/internal/loss"
	"github.com/wattcast/wattcast/internal/opt"
)

// Network is a stack of layers trained with a loss and an optimizer.
type Network struct {
	layers []layer.Layer
	loss   loss.Loss
	opt    opt.Optimizer

	// Pre-allocated gradient buffer to avoid allocations in the
	// training loop.
	lossGradBuf []float64

	training bool
}

// New creates a network from the given layers.
func New(layers []layer.Layer, lossFn loss.Loss, optimizer opt.Optimizer) *Network {
	return &Network{
		layers:   layers,
		loss:     lossFn,
		opt:      optimizer,
		training: true,
	}
}

// Forward performs a forward pass through all layers.
func (n *Network) Forward(x []float64) []float64 {
	curr := x
	for i := range n.layers {
		curr = n.layers[i].Forward(curr)
	}
	return curr
}

// Backward performs a backward pass through all layers.
func (n *Network) Backward(grad []float64) []float64 {
	curr := grad
	for i := len(n.layers) - 1; i >= 0; i-- {
		curr = n.layers[i].Backward(curr)
	}
	return curr
}

// Step applies one optimizer update to every layer's parameters using
// the gradients accumulated since the last ClearGradients.
func (n *Network) Step() {
	for i, l := range n.layers {
		grads := l.Gradients()
		if len(grads) == 0 {
			continue
		}
		params := l.Params()
		n.opt.Update(i, params, grads)
		l.SetParams(params)
	}
}

// SetTraining switches every mode-aware layer (dropout) between
// training and inference behavior.
func (n *Network) SetTraining(training bool) {
	n.training = training
	for _, l := range n.layers {
		if t, ok := l.(layer.Trainable); ok {
			t.SetTraining(training)
		}
	}
}

// lossGrad computes the scaled loss gradient into the reusable buffer.
func (n *Network) lossGrad(yPred, yTrue []float64, scale float64) []float64 {
	if cap(n.lossGradBuf) < len(yPred) {
		n.lossGradBuf = make([]float64, len(yPred))
	}
	grad := n.lossGradBuf[:len(yPred)]

	if ip, ok := n.loss.(loss.BackwardInPlacer); ok {
		ip.BackwardInPlace(yPred, yTrue, grad)
	} else {
		copy(grad, n.loss.Backward(yPred, yTrue))
	}
	for i := range grad {
		grad[i] *= scale
	}
	return grad
}

// TrainBatch accumulates gradients over a batch and applies a single
// averaged optimizer step. Returns the mean loss over the batch.
func (n *Network) TrainBatch(batchX, batchY [][]float64) float64 {
	batchSize := len(batchX)
	if batchSize == 0 {
		return 0
	}

	for _, l := range n.layers {
		l.ClearGradients()
	}

	// Scaling the loss gradient by 1/batch is equivalent to averaging
	// the accumulated parameter gradients afterwards.
	scale := 1.0 / float64(batchSize)
	var totalLoss float64
	for i := 0; i < batchSize; i++ {
		yPred := n.Forward(batchX[i])
		totalLoss += n.loss.Forward(yPred, batchY[i])
		n.Backward(n.lossGrad(yPred, batchY[i], scale))
	}

	n.Step()
	return totalLoss / float64(batchSize)
}

// Fit trains for the given number of epochs over mini-batches in
// order (the examples are chronological; shuffling is the caller's
// decision and the forecasting pipeline deliberately keeps order).
// Validation loss is computed per epoch when valX is non-empty and
// reported to callbacks as NaN otherwise.
func (n *Network) Fit(x, y, valX, valY [][]float64, epochs, batchSize int, callbacks ...Callback) error {
	if len(x) != len(y) {
		return fmt.Errorf("net: %d inputs but %d targets", len(x), len(y))
	}
	if len(x) == 0 {
		return fmt.Errorf("net: no training examples")
	}
	if batchSize <= 0 {
		return fmt.Errorf("net: batch size must be positive, got %d", batchSize)
	}

	n.SetTraining(true)
	for _, cb := range callbacks {
		cb.OnTrainBegin(n)
	}

	for epoch := 0; epoch < epochs; epoch++ {
		var totalLoss float64
		batches := 0

		for start := 0; start < len(x); start += batchSize {
			end := start + batchSize
			if end > len(x) {
				end = len(x)
			}
			totalLoss += n.TrainBatch(x[start:end], y[start:end])
			batches++
		}

		trainLoss := totalLoss / float64(batches)
		valLoss := math.NaN()
		if len(valX) > 0 {
			valLoss = n.Evaluate(valX, valY)
		}

		stopped := false
		for _, cb := range callbacks {
			cb.OnEpochEnd(epoch, trainLoss, valLoss, n)
			if es, ok := cb.(*EarlyStopping); ok && es.Stopped {
				stopped = true
			}
		}
		if stopped {
			break
		}
	}

	for _, cb := range callbacks {
		cb.OnTrainEnd(n)
	}
	n.SetTraining(false)
	return nil
}

// Evaluate computes the mean loss over a dataset in inference mode,
// restoring the previous mode afterwards.
func (n *Network) Evaluate(x, y [][]float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}

	wasTraining := n.training
	n.SetTraining(false)
	defer n.SetTraining(wasTraining)

	var total float64
	for i := range x {
		pred := n.Forward(x[i])
		total += n.loss.Forward(pred, y[i])
	}
	return total / float64(len(x))
}

// Params returns all network parameters flattened (copy).
func (n *Network) Params() []float64 {
	var params []float64
	for _, l := range n.layers {
		params = append(params, l.Params()...)
	}
	return params
}

// Layers returns the network's layers slice.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}
