package opt

import "math"

// Scheduler adjusts an optimizer's learning rate as training evolves.
type Scheduler interface {
	// StepWithLoss observes one epoch's validation (or training) loss.
	StepWithLoss(loss float64)
}

// ReduceLROnPlateau multiplies the learning rate by Factor when the
// observed loss has not improved by Threshold for Patience epochs.
// The rate never drops below MinLR.
type ReduceLROnPlateau struct {
	Factor    float64
	Patience  int
	Threshold float64
	MinLR     float64

	opt          Optimizer
	bestLoss     float64
	numBadEpochs int
}

// NewReduceLROnPlateau creates a plateau scheduler driving the given
// optimizer.
func NewReduceLROnPlateau(optimizer Optimizer, factor float64, patience int, threshold, minLR float64) *ReduceLROnPlateau {
	return &ReduceLROnPlateau{
		Factor:    factor,
		Patience:  patience,
		Threshold: threshold,
		MinLR:     minLR,
		opt:       optimizer,
		bestLoss:  math.MaxFloat64,
	}
}

// StepWithLoss observes one epoch's loss and lowers the learning rate
// after a plateau.
func (s *ReduceLROnPlateau) StepWithLoss(loss float64) {
	if loss < s.bestLoss-s.Threshold {
		s.bestLoss = loss
		s.numBadEpochs = 0
		return
	}

	s.numBadEpochs++
	if s.numBadEpochs < s.Patience {
		return
	}

	lr := s.opt.LearningRate() * s.Factor
	if lr < s.MinLR {
		lr = s.MinLR
	}
	s.opt.SetLearningRate(lr)
	s.numBadEpochs = 0
}
