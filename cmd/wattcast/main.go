// Command wattcast trains a recurrent network on hourly energy
// consumption and forecasts the next week: load or synthesize the
// series, normalize and window it, train with a chronological
// holdout, report metrics and render the output charts.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wattcast/wattcast/internal/activations"
	"github.com/wattcast/wattcast/internal/forecast"
	"github.com/wattcast/wattcast/internal/layer"
	"github.com/wattcast/wattcast/internal/loss"
	"github.com/wattcast/wattcast/internal/net"
	"github.com/wattcast/wattcast/internal/opt"
	"github.com/wattcast/wattcast/internal/report"
	"github.com/wattcast/wattcast/internal/scale"
	"github.com/wattcast/wattcast/internal/series"
	"github.com/wattcast/wattcast/internal/window"
)

const hiddenUnits = 50

func main() {
	var (
		csvPath   = flag.String("csv", "", "hourly timestamp,consumption CSV; empty synthesizes a series")
		windowLen = flag.Int("window", 24, "input window length in hours")
		horizon   = flag.Int("horizon", 7, "forecast horizon in days")
		epochs    = flag.Int("epochs", 10, "training epochs")
		batch     = flag.Int("batch", 32, "mini-batch size")
		lr        = flag.Float64("lr", 0.001, "Adam learning rate")
		cell      = flag.String("cell", "lstm", "recurrent cell: lstm or gru")
		dropout   = flag.Float64("dropout", 0.2, "dropout probability after each recurrent layer")
		trainFrac = flag.Float64("train-frac", 0.8, "fraction of examples used for training")
		seed      = flag.Uint64("seed", 42, "synthetic generator seed")
		samples   = flag.Int("samples", 90*24, "synthetic series length in hours")
		outDir    = flag.String("out", ".", "directory for the output charts")
		history   = flag.String("history", "", "optional CSV path for per-epoch losses")
		modelPath = flag.String("model", "", "optional path to checkpoint the best model")
	)
	flag.Parse()

	// Step 1: obtain the series.
	s, err := loadOrGenerate(*csvPath, *samples, *seed)
	if err != nil {
		log.Fatal(err)
	}
	if err := s.Validate(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("series: %d hourly observations, %s to %s\n",
		s.Len(), s.Start.Format(time.RFC3339), s.End().Format(time.RFC3339))

	// Step 2: normalize. The scaler is fitted exactly once, on the full
	// series, and reused for every later transform and inverse.
	scaler := &scale.MinMax{}
	if err := scaler.Fit(s.Values); err != nil {
		log.Fatal(err)
	}
	normalized, err := scaler.Transform(s.Values)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("scaler: range [%.2f, %.2f] kWh\n", scaler.Min(), scaler.Max())

	// Step 3: window and split chronologically.
	X, y, err := window.Make(normalized, *windowLen)
	if err != nil {
		log.Fatal(err)
	}
	if len(X) == 0 {
		log.Fatalf("window of %d hours needs more than %d observations", *windowLen, s.Len())
	}
	trainX, testX, trainY, testY, err := window.SplitChrono(X, y, *trainFrac)
	if err != nil {
		log.Fatal(err)
	}
	if len(trainX) == 0 || len(testX) == 0 {
		log.Fatalf("split produced %d train / %d test examples; need both non-empty", len(trainX), len(testX))
	}
	fmt.Printf("examples: %d train, %d test (window=%d)\n", len(trainX), len(testX), *windowLen)

	// Step 4: build and train the network.
	model, err := buildModel(*cell, *windowLen, *dropout, *lr)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("model: %s(1->%d, sequences) -> dropout(%.1f) -> %s(%d->%d) -> dropout(%.1f) -> dense(%d->1)\n",
		*cell, hiddenUnits, *dropout, *cell, hiddenUnits, hiddenUnits, *dropout, hiddenUnits)

	callbacks := []net.Callback{&net.Logger{Epochs: *epochs}}
	hist := &net.History{}
	callbacks = append(callbacks, hist)
	var checkpoint *net.ModelCheckpoint
	if *modelPath != "" {
		checkpoint = net.NewModelCheckpoint(*modelPath)
		callbacks = append(callbacks, checkpoint)
	}

	targets := func(vals []float64) [][]float64 {
		out := make([][]float64, len(vals))
		for i, v := range vals {
			out[i] = []float64{v}
		}
		return out
	}

	if err := model.Fit(trainX, targets(trainY), testX, targets(testY), *epochs, *batch, callbacks...); err != nil {
		log.Fatal(err)
	}
	if checkpoint != nil {
		if checkpoint.Err != nil {
			log.Fatal(checkpoint.Err)
		}
		fmt.Printf("model: best checkpoint saved to %s\n", *modelPath)
	}
	if *history != "" {
		if err := hist.WriteCSV(*history); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("history: written to %s\n", *history)
	}

	// Step 5: evaluate on the held-out tail in the original unit.
	actual, predicted, err := predictTail(model, scaler, testX, testY)
	if err != nil {
		log.Fatal(err)
	}
	mse, mae := regressionErrors(actual, predicted)
	r2 := stat.RSquaredFrom(predicted, actual, nil)
	fmt.Printf("evaluation: MSE=%.4f MAE=%.4f R2=%.4f (%d held-out hours)\n", mse, mae, r2, len(actual))

	// Step 6: recursive 7-day forecast seeded from the last window.
	steps := *horizon * 24
	seedWindow := normalized[len(normalized)-*windowLen:]
	normForecast, err := forecast.Recursive(model, seedWindow, steps)
	if err != nil {
		log.Fatal(err)
	}
	forecastValues, err := scaler.Inverse(normForecast)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("forecast: %d hours from %s\n", steps, s.End().Add(time.Hour).Format(time.RFC3339))

	// Step 7: render the charts.
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	testStart := s.TimeAt(len(trainX) + *windowLen)
	evalPath := filepath.Join(*outDir, "actual_vs_predicted.png")
	if err := report.ActualVsPredicted(evalPath, testStart, actual, predicted); err != nil {
		log.Fatal(err)
	}

	recentHours := steps
	if recentHours > s.Len() {
		recentHours = s.Len()
	}
	recentStart := s.TimeAt(s.Len() - recentHours)
	forecastPath := filepath.Join(*outDir, "forecast.png")
	if err := report.Forecast(forecastPath, recentStart, s.Values[s.Len()-recentHours:], forecastValues); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("charts: %s, %s\n", evalPath, forecastPath)
}

func loadOrGenerate(csvPath string, samples int, seed uint64) (*series.Series, error) {
	if csvPath != "" {
		return series.Load(csvPath)
	}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return series.Generate(start, samples, seed), nil
}

func buildModel(cell string, windowLen int, dropout, lr float64) (*net.Network, error) {
	newCell := func(in, out int) (layer.Layer, error) {
		switch cell {
		case "lstm":
			return layer.NewLSTM(in, out), nil
		case "gru":
			return layer.NewGRU(in, out), nil
		}
		return nil, fmt.Errorf("unknown cell %q, want lstm or gru", cell)
	}

	first, err := newCell(1, hiddenUnits)
	if err != nil {
		return nil, err
	}
	second, err := newCell(hiddenUnits, hiddenUnits)
	if err != nil {
		return nil, err
	}

	layers := []layer.Layer{
		layer.NewSequenceUnroller(first, windowLen, true),
		layer.NewDropout(dropout, windowLen*hiddenUnits),
		layer.NewSequenceUnroller(second, windowLen, false),
		layer.NewDropout(dropout, hiddenUnits),
		layer.NewDense(hiddenUnits, 1, activations.Linear{}),
	}
	return net.New(layers, loss.MSE{}, opt.NewAdam(lr)), nil
}

// predictTail runs one-step predictions over the test examples and
// returns actuals and predictions in the original unit.
func predictTail(model *net.Network, scaler *scale.MinMax, testX [][]float64, testY []float64) (actual, predicted []float64, err error) {
	model.SetTraining(false)

	normPred := make([]float64, len(testX))
	for i := range testX {
		out := model.Forward(testX[i])
		if len(out) != 1 {
			return nil, nil, fmt.Errorf("prediction %d has %d values, want 1", i, len(out))
		}
		normPred[i] = out[0]
	}

	actual, err = scaler.Inverse(testY)
	if err != nil {
		return nil, nil, err
	}
	predicted, err = scaler.Inverse(normPred)
	if err != nil {
		return nil, nil, err
	}
	return actual, predicted, nil
}

func regressionErrors(actual, predicted []float64) (mse, mae float64) {
	for i := range actual {
		diff := actual[i] - predicted[i]
		mse += diff * diff
		mae += math.Abs(diff)
	}
	n := float64(len(actual))
	return mse / n, mae / n
}
