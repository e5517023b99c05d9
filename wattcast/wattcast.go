// Package wattcast re-exports the building blocks of the hourly
// consumption forecasting pipeline for external use.
package wattcast

import (
	"time"

	"github.com/wattcast/wattcast/internal/activations"
	"github.com/wattcast/wattcast/internal/forecast"
	"github.com/wattcast/wattcast/internal/layer"
	"github.com/wattcast/wattcast/internal/loss"
	"github.com/wattcast/wattcast/internal/net"
	"github.com/wattcast/wattcast/internal/opt"
	"github.com/wattcast/wattcast/internal/scale"
	"github.com/wattcast/wattcast/internal/series"
	"github.com/wattcast/wattcast/internal/window"
)

// Re-export common types for easier access.
type (
	Model     = net.Network
	Layer     = layer.Layer
	Optimizer = opt.Optimizer
	Loss      = loss.Loss
	Callback  = net.Callback
	Series    = series.Series
	MinMax    = scale.MinMax
	Predictor = forecast.Predictor
)

// Model creation
func NewModel(layers []Layer, lossFn Loss, optimizer Optimizer) *Model {
	return net.New(layers, lossFn, optimizer)
}

// Activations
var (
	ReLU    = activations.ReLU{}
	Sigmoid = activations.Sigmoid{}
	Tanh    = activations.Tanh{}
	Linear  = activations.Linear{}
)

// Layers
func Dense(in, out int, act activations.Activation) Layer {
	return layer.NewDense(in, out, act)
}

func LSTM(in, out int) Layer {
	return layer.NewLSTM(in, out)
}

func GRU(in, out int) Layer {
	return layer.NewGRU(in, out)
}

func Dropout(prob float64, in int) Layer {
	return layer.NewDropout(prob, in)
}

func SequenceUnroller(l Layer, sequenceLength int, returnSequences bool) Layer {
	return layer.NewSequenceUnroller(l, sequenceLength, returnSequences)
}

// Optimizers
func SGD(lr float64) Optimizer {
	return &opt.SGD{LR: lr}
}

func Adam(lr float64) Optimizer {
	return opt.NewAdam(lr)
}

func ReduceLROnPlateau(optimizer Optimizer, factor float64, patience int, threshold, minLR float64) *opt.ReduceLROnPlateau {
	return opt.NewReduceLROnPlateau(optimizer, factor, patience, threshold, minLR)
}

// Losses
var (
	MSE = loss.MSE{}
	MAE = loss.MAE{}
)

func Huber(delta float64) Loss {
	return loss.NewHuber(delta)
}

// Callbacks
func Logger(epochs int) *net.Logger {
	return &net.Logger{Epochs: epochs}
}

func EarlyStopping(patience int, minDelta float64) *net.EarlyStopping {
	return net.NewEarlyStopping(patience, minDelta)
}

func ModelCheckpoint(path string) *net.ModelCheckpoint {
	return net.NewModelCheckpoint(path)
}

func History() *net.History {
	return &net.History{}
}

func SchedulerCallback(scheduler opt.Scheduler) Callback {
	return &net.LRScheduler{Scheduler: scheduler}
}

// Data
func GenerateSeries(start time.Time, hours int, seed uint64) *Series {
	return series.Generate(start, hours, seed)
}

func LoadSeries(path string) (*Series, error) {
	return series.Load(path)
}

func MakeWindows(data []float64, w int) ([][]float64, []float64, error) {
	return window.Make(data, w)
}

func SplitChrono(X [][]float64, y []float64, frac float64) (trainX, testX [][]float64, trainY, testY []float64, err error) {
	return window.SplitChrono(X, y, frac)
}

// Forecasting
func RecursiveForecast(p Predictor, seed []float64, steps int) ([]float64, error) {
	return forecast.Recursive(p, seed, steps)
}

// Model persistence
func LoadModel(path string, lossFn Loss, optimizer Optimizer) (*Model, error) {
	return net.Load(path, lossFn, optimizer)
}
