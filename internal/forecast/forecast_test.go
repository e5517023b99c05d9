package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// meanPredictor predicts the mean of its input window.
type meanPredictor struct{}

func (meanPredictor) Forward(x []float64) []float64 {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return []float64{sum / float64(len(x))}
}

// scriptedPredictor returns canned outputs in sequence.
type scriptedPredictor struct {
	outputs [][]float64
	call    int
}

func (s *scriptedPredictor) Forward([]float64) []float64 {
	out := s.outputs[s.call]
	s.call++
	return out
}

func TestRingSlides(t *testing.T) {
	r, err := NewRing([]float64{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 3}, r.Window())

	r.Push(4)
	assert.Equal(t, []float64{2, 3, 4}, r.Window())

	r.Push(5)
	r.Push(6)
	r.Push(7)
	assert.Equal(t, []float64{5, 6, 7}, r.Window())
}

func TestRingCopiesSeed(t *testing.T) {
	seed := []float64{1, 2, 3}
	r, err := NewRing(seed)
	require.NoError(t, err)

	seed[0] = 99
	assert.Equal(t, []float64{1, 2, 3}, r.Window())
}

func TestRingRejectsEmptySeed(t *testing.T) {
	_, err := NewRing(nil)
	require.Error(t, err)
}

func TestRecursiveLength(t *testing.T) {
	// 7 days of hourly forecasts.
	seed := make([]float64, 24)
	for i := range seed {
		seed[i] = 0.5
	}

	out, err := Recursive(meanPredictor{}, seed, 7*24)
	require.NoError(t, err)
	assert.Len(t, out, 168)
}

func TestRecursiveFeedsPredictionsBack(t *testing.T) {
	// Mean of a constant window is the constant, so the forecast must
	// stay flat; changing the seed tail must change the first output.
	out, err := Recursive(meanPredictor{}, []float64{0.4, 0.4, 0.4}, 5)
	require.NoError(t, err)
	for _, v := range out {
		assert.InDelta(t, 0.4, v, 1e-15)
	}

	out2, err := Recursive(meanPredictor{}, []float64{0.4, 0.4, 1.0}, 5)
	require.NoError(t, err)
	assert.NotEqual(t, out[0], out2[0])
}

func TestRecursiveIsDeterministic(t *testing.T) {
	seed := []float64{0.2, 0.7, 0.3, 0.9}

	a, err := Recursive(meanPredictor{}, seed, 50)
	require.NoError(t, err)
	b, err := Recursive(meanPredictor{}, seed, 50)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRecursiveAbortsOnNonFinitePrediction(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		p := &scriptedPredictor{outputs: [][]float64{{0.5}, {bad}}}
		_, err := Recursive(p, []float64{0.1, 0.2}, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-finite")
	}
}

func TestRecursiveAbortsOnWrongArity(t *testing.T) {
	p := &scriptedPredictor{outputs: [][]float64{{0.5, 0.6}}}
	_, err := Recursive(p, []float64{0.1, 0.2}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 1")
}

func TestRecursiveRejectsBadArguments(t *testing.T) {
	_, err := Recursive(meanPredictor{}, []float64{0.5}, 0)
	require.Error(t, err)

	_, err = Recursive(meanPredictor{}, nil, 5)
	require.Error(t, err)
}
