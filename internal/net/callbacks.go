package net

import (
	"fmt"
	"math"

	"github.com/wattcast/wattcast/internal/opt"
)

// Callback hooks into the training loop.
type Callback interface {
	OnTrainBegin(n *Network)
	OnEpochEnd(epoch int, trainLoss, valLoss float64, n *Network)
	OnTrainEnd(n *Network)
}

// BaseCallback provides no-op implementations so callbacks only need
// to override the hooks they care about.
type BaseCallback struct{}

func (BaseCallback) OnTrainBegin(*Network)                      {}
func (BaseCallback) OnEpochEnd(int, float64, float64, *Network) {}
func (BaseCallback) OnTrainEnd(*Network)                        {}

// Logger prints one line per epoch.
type Logger struct {
	BaseCallback

	// Epochs is the total number of epochs, used for the progress
	// prefix. Zero disables the prefix.
	Epochs int
}

// OnEpochEnd prints the epoch's train and validation loss.
func (l *Logger) OnEpochEnd(epoch int, trainLoss, valLoss float64, _ *Network) {
	prefix := fmt.Sprintf("epoch %d", epoch+1)
	if l.Epochs > 0 {
		prefix = fmt.Sprintf("epoch %d/%d", epoch+1, l.Epochs)
	}
	if math.IsNaN(valLoss) {
		fmt.Printf("%s  loss=%.6f\n", prefix, trainLoss)
		return
	}
	fmt.Printf("%s  loss=%.6f  val_loss=%.6f\n", prefix, trainLoss, valLoss)
}

// EarlyStopping halts training when the monitored loss has not
// improved by MinDelta for Patience consecutive epochs. Validation
// loss is monitored when available, training loss otherwise.
type EarlyStopping struct {
	BaseCallback

	Patience int
	MinDelta float64

	// Stopped is set once the patience runs out; Fit checks it after
	// every epoch.
	Stopped bool

	best float64
	bad  int
}

// NewEarlyStopping creates an early-stopping callback.
func NewEarlyStopping(patience int, minDelta float64) *EarlyStopping {
	return &EarlyStopping{Patience: patience, MinDelta: minDelta, best: math.MaxFloat64}
}

// OnEpochEnd tracks the monitored loss and flips Stopped on a stall.
func (e *EarlyStopping) OnEpochEnd(_ int, trainLoss, valLoss float64, _ *Network) {
	monitored := valLoss
	if math.IsNaN(monitored) {
		monitored = trainLoss
	}

	if monitored < e.best-e.MinDelta {
		e.best = monitored
		e.bad = 0
		return
	}

	e.bad++
	if e.bad >= e.Patience {
		e.Stopped = true
	}
}

// ModelCheckpoint saves the network whenever the monitored loss
// improves.
type ModelCheckpoint struct {
	BaseCallback

	Path string

	best float64
	// Err holds the last save failure, if any.
	Err error
}

// NewModelCheckpoint creates a checkpoint callback writing to path.
func NewModelCheckpoint(path string) *ModelCheckpoint {
	return &ModelCheckpoint{Path: path, best: math.MaxFloat64}
}

// OnEpochEnd saves the model when the monitored loss improved.
func (m *ModelCheckpoint) OnEpochEnd(_ int, trainLoss, valLoss float64, n *Network) {
	monitored := valLoss
	if math.IsNaN(monitored) {
		monitored = trainLoss
	}
	if monitored >= m.best {
		return
	}
	m.best = monitored
	if err := n.Save(m.Path); err != nil {
		m.Err = err
	}
}

// LRScheduler feeds the epoch loss to a learning-rate scheduler.
type LRScheduler struct {
	BaseCallback

	Scheduler opt.Scheduler
}

// OnEpochEnd forwards the monitored loss to the scheduler.
func (s *LRScheduler) OnEpochEnd(_ int, trainLoss, valLoss float64, _ *Network) {
	monitored := valLoss
	if math.IsNaN(monitored) {
		monitored = trainLoss
	}
	s.Scheduler.StepWithLoss(monitored)
}
