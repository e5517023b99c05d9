// Package window turns a normalized series into supervised learning
// examples and splits them chronologically.
package window

import "fmt"

// Make builds sliding-window examples from data: X[i] is a copy of
// data[i:i+w] and y[i] = data[i+w], preserving order. A series with
// len(data) <= w yields zero examples and no error; w <= 0 is an
// error. X rows never alias the input.
func Make(data []float64, w int) (X [][]float64, y []float64, err error) {
	if w <= 0 {
		return nil, nil, fmt.Errorf("window: size must be positive, got %d", w)
	}

	n := len(data) - w
	if n <= 0 {
		return nil, nil, nil
	}

	X = make([][]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, w)
		copy(row, data[i:i+w])
		X[i] = row
		y[i] = data[i+w]
	}
	return X, y, nil
}

// SplitChrono splits examples into a training head and a test tail
// without shuffling: every test example is strictly later than every
// training example. frac is the training fraction and must lie in
// (0,1).
func SplitChrono(X [][]float64, y []float64, frac float64) (trainX, testX [][]float64, trainY, testY []float64, err error) {
	if frac <= 0 || frac >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("window: train fraction must be in (0,1), got %v", frac)
	}
	if len(X) != len(y) {
		return nil, nil, nil, nil, fmt.Errorf("window: %d inputs but %d targets", len(X), len(y))
	}

	cut := int(float64(len(X)) * frac)
	return X[:cut], X[cut:], y[:cut], y[cut:], nil
}
