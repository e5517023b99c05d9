package layer

import (
	"math"

	"github.com/wattcast/wattcast/internal/activations"
)

// maxGradientNorm bounds recurrent gradients to keep backpropagation
// through time from exploding on long windows.
const maxGradientNorm = 1.0

// LSTM is a Long Short-Term Memory cell processing one time step per
// Forward call. SequenceUnroller drives it over a full window and
// performs backpropagation through time in reverse.
//
// Weights are stored contiguously per gate in the order
// [input, forget, cell, output]; each gate block holds out*in input
// weights and out*out recurrent weights.
type LSTM struct {
	inSize  int
	outSize int

	inputWeights     []float64 // 4 * outSize * inSize
	recurrentWeights []float64 // 4 * outSize * outSize
	biases           []float64 // 4 * outSize

	gradInputWeights     []float64
	gradRecurrentWeights []float64
	gradBiases           []float64

	gateAct activations.Activation // sigmoid on input/forget/output gates
	cellAct activations.Activation // tanh on the cell candidate

	// Per-step state saved during Forward for BPTT. Index t holds the
	// input, the four gate outputs (concatenated, 4*outSize) and the
	// cell/hidden states produced at step t.
	inputs  [][]float64
	gates   [][]float64
	cells   [][]float64
	hiddens [][]float64

	timeStep int

	// Scratch buffers for the backward pass.
	preActBuf []float64
	outputBuf []float64
	dcNext    []float64
	dGates    []float64
	dxBuf     []float64
	dhPrev    []float64
	zeroState []float64
}

// NewLSTM creates an LSTM cell with Xavier-initialized weights and the
// forget-gate bias set to 1 so early training does not erase the cell
// state.
func NewLSTM(inSize, outSize int) *LSTM {
	inputScale := math.Sqrt(2.0 / float64(inSize+4*outSize))
	recurrentScale := math.Sqrt(2.0 / float64(outSize+4*outSize))

	inputWeights := make([]float64, 4*outSize*inSize)
	recurrentWeights := make([]float64, 4*outSize*outSize)
	biases := make([]float64, 4*outSize)

	rng := NewRNG(uint64(inSize)*1000 + uint64(outSize)*100 + 142)
	for i := 0; i < 4*outSize; i++ {
		if i >= outSize && i < 2*outSize {
			biases[i] = 1.0
		}
		for j := 0; j < inSize; j++ {
			inputWeights[i*inSize+j] = rng.Float64()*2*inputScale - inputScale
		}
		for j := 0; j < outSize; j++ {
			recurrentWeights[i*outSize+j] = rng.Float64()*2*recurrentScale - recurrentScale
		}
	}

	return &LSTM{
		inSize:  inSize,
		outSize: outSize,

		inputWeights:     inputWeights,
		recurrentWeights: recurrentWeights,
		biases:           biases,

		gradInputWeights:     make([]float64, 4*outSize*inSize),
		gradRecurrentWeights: make([]float64, 4*outSize*outSize),
		gradBiases:           make([]float64, 4*outSize),

		gateAct: activations.Sigmoid{},
		cellAct: activations.Tanh{},

		preActBuf: make([]float64, 4*outSize),
		outputBuf: make([]float64, outSize),
		dcNext:    make([]float64, outSize),
		dGates:    make([]float64, 4*outSize),
		dxBuf:     make([]float64, inSize),
		dhPrev:    make([]float64, outSize),
		zeroState: make([]float64, outSize),
	}
}

// Reset clears the cell and hidden state for a new sequence.
func (l *LSTM) Reset() {
	l.timeStep = 0
	l.inputs = l.inputs[:0]
	l.gates = l.gates[:0]
	l.cells = l.cells[:0]
	l.hiddens = l.hiddens[:0]
	for i := range l.dcNext {
		l.dcNext[i] = 0
	}
}

func (l *LSTM) prevStates() (cPrev, hPrev []float64) {
	if l.timeStep == 0 {
		return l.zeroState, l.zeroState
	}
	return l.cells[l.timeStep-1], l.hiddens[l.timeStep-1]
}

// Forward advances the cell one time step.
func (l *LSTM) Forward(x []float64) []float64 {
	out := l.outSize
	cPrev, hPrev := l.prevStates()

	// Pre-activations for all four gates: b + Wx*x + Wh*h_prev.
	copy(l.preActBuf, l.biases)
	for g := 0; g < 4; g++ {
		base := g * out
		for i := 0; i < out; i++ {
			sum := 0.0
			wIn := (base + i) * l.inSize
			for j := 0; j < l.inSize; j++ {
				sum += l.inputWeights[wIn+j] * x[j]
			}
			wRec := (base + i) * out
			for j := 0; j < out; j++ {
				sum += l.recurrentWeights[wRec+j] * hPrev[j]
			}
			l.preActBuf[base+i] += sum
		}
	}

	gates := make([]float64, 4*out)
	for i := 0; i < out; i++ {
		gates[i] = l.gateAct.Activate(l.preActBuf[i])             // input
		gates[out+i] = l.gateAct.Activate(l.preActBuf[out+i])     // forget
		gates[2*out+i] = l.cellAct.Activate(l.preActBuf[2*out+i]) // candidate
		gates[3*out+i] = l.gateAct.Activate(l.preActBuf[3*out+i]) // output
	}

	cell := make([]float64, out)
	hidden := make([]float64, out)
	for i := 0; i < out; i++ {
		cell[i] = gates[out+i]*cPrev[i] + gates[i]*gates[2*out+i]
		hidden[i] = gates[3*out+i] * math.Tanh(cell[i])
	}

	xCopy := make([]float64, l.inSize)
	copy(xCopy, x)
	l.inputs = append(l.inputs, xCopy)
	l.gates = append(l.gates, gates)
	l.cells = append(l.cells, cell)
	l.hiddens = append(l.hiddens, hidden)
	l.timeStep++

	copy(l.outputBuf, hidden)
	return l.outputBuf
}

// Backward runs one step of backpropagation through time, consuming
// the most recent saved step. Parameter gradients accumulate into the
// layer buffers. grad is replaced in place with the gradient w.r.t.
// the previous hidden state so the unrolling caller can carry it to
// the earlier step (the cell-state path is carried internally); the
// returned slice is the gradient w.r.t. the input.
func (l *LSTM) Backward(grad []float64) []float64 {
	ts := l.timeStep - 1
	if ts < 0 || ts >= len(l.cells) {
		for i := range l.dxBuf {
			l.dxBuf[i] = 0
		}
		return l.dxBuf
	}

	out := l.outSize
	x := l.inputs[ts]
	gates := l.gates[ts]
	c := l.cells[ts]

	cPrev := l.zeroState
	hPrev := l.zeroState
	if ts > 0 {
		cPrev = l.cells[ts-1]
		hPrev = l.hiddens[ts-1]
	}

	// dC = dh * o * tanh'(c) + carried cell gradient from the later step.
	for i := 0; i < out; i++ {
		tanhC := math.Tanh(c[i])
		o := gates[3*out+i]
		dc := grad[i]*o*(1-tanhC*tanhC) + l.dcNext[i]

		ig, fg, gg := gates[i], gates[out+i], gates[2*out+i]
		l.dGates[i] = dc * gg * ig * (1 - ig)               // input gate
		l.dGates[out+i] = dc * cPrev[i] * fg * (1 - fg)     // forget gate
		l.dGates[2*out+i] = dc * ig * (1 - gg*gg)           // candidate
		l.dGates[3*out+i] = grad[i] * tanhC * o * (1 - o)   // output gate
		l.dcNext[i] = dc * fg                               // carried to t-1
	}

	// Accumulate parameter gradients.
	for g := 0; g < 4; g++ {
		base := g * out
		for i := 0; i < out; i++ {
			d := l.dGates[base+i]
			wIn := (base + i) * l.inSize
			for j := 0; j < l.inSize; j++ {
				l.gradInputWeights[wIn+j] += d * x[j]
			}
			wRec := (base + i) * out
			for j := 0; j < out; j++ {
				l.gradRecurrentWeights[wRec+j] += d * hPrev[j]
			}
			l.gradBiases[base+i] += d
		}
	}

	// Gradient w.r.t. the input.
	for j := 0; j < l.inSize; j++ {
		sum := 0.0
		for g := 0; g < 4; g++ {
			base := g * out
			for i := 0; i < out; i++ {
				sum += l.inputWeights[(base+i)*l.inSize+j] * l.dGates[base+i]
			}
		}
		l.dxBuf[j] = sum
	}

	// Gradient w.r.t. the previous hidden state, replacing grad.
	for j := 0; j < out; j++ {
		sum := 0.0
		for g := 0; g < 4; g++ {
			base := g * out
			for i := 0; i < out; i++ {
				sum += l.recurrentWeights[(base+i)*out+j] * l.dGates[base+i]
			}
		}
		l.dhPrev[j] = sum
	}
	copy(grad, l.dhPrev)

	clipGradients(maxGradientNorm, l.gradInputWeights, l.gradRecurrentWeights, l.gradBiases)

	l.timeStep--
	return l.dxBuf
}

// clipGradients rescales the given gradient blocks jointly when their
// L2 norm exceeds maxNorm.
func clipGradients(maxNorm float64, blocks ...[]float64) {
	normSq := 0.0
	for _, b := range blocks {
		for _, v := range b {
			normSq += v * v
		}
	}
	norm := math.Sqrt(normSq)
	if norm <= maxNorm {
		return
	}
	scale := maxNorm / norm
	for _, b := range blocks {
		for i := range b {
			b[i] *= scale
		}
	}
}

// Params returns all LSTM parameters flattened (copy).
func (l *LSTM) Params() []float64 {
	params := make([]float64, 0, len(l.inputWeights)+len(l.recurrentWeights)+len(l.biases))
	params = append(params, l.inputWeights...)
	params = append(params, l.recurrentWeights...)
	params = append(params, l.biases...)
	return params
}

// SetParams updates weights and biases from a flattened slice.
func (l *LSTM) SetParams(params []float64) {
	nIn, nRec := len(l.inputWeights), len(l.recurrentWeights)
	copy(l.inputWeights, params[:nIn])
	copy(l.recurrentWeights, params[nIn:nIn+nRec])
	copy(l.biases, params[nIn+nRec:])
}

// Gradients returns all LSTM gradients flattened (copy).
func (l *LSTM) Gradients() []float64 {
	grads := make([]float64, 0, len(l.gradInputWeights)+len(l.gradRecurrentWeights)+len(l.gradBiases))
	grads = append(grads, l.gradInputWeights...)
	grads = append(grads, l.gradRecurrentWeights...)
	grads = append(grads, l.gradBiases...)
	return grads
}

// ClearGradients zeroes the accumulated gradients.
func (l *LSTM) ClearGradients() {
	for i := range l.gradInputWeights {
		l.gradInputWeights[i] = 0
	}
	for i := range l.gradRecurrentWeights {
		l.gradRecurrentWeights[i] = 0
	}
	for i := range l.gradBiases {
		l.gradBiases[i] = 0
	}
}

// InSize returns the input size of the cell.
func (l *LSTM) InSize() int { return l.inSize }

// OutSize returns the hidden state size of the cell.
func (l *LSTM) OutSize() int { return l.outSize }

// Hidden returns the current hidden state, or zeros before the first step.
func (l *LSTM) Hidden() []float64 {
	if l.timeStep == 0 {
		return l.zeroState
	}
	return l.hiddens[l.timeStep-1]
}
