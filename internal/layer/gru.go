package layer

import (
	"math"

	"github.com/wattcast/wattcast/internal/activations"
)

// GRU is a Gated Recurrent Unit cell. Like LSTM it processes one time
// step per Forward call and is driven by SequenceUnroller; it uses two
// gates (update, reset) plus a candidate state instead of LSTM's four.
//
// Weights are stored contiguously per block in the order
// [update, reset, candidate].
type GRU struct {
	inSize  int
	outSize int

	inputWeights     []float64 // 3 * outSize * inSize
	recurrentWeights []float64 // 3 * outSize * outSize
	biases           []float64 // 3 * outSize

	gradInputWeights     []float64
	gradRecurrentWeights []float64
	gradBiases           []float64

	gateAct activations.Activation
	cellAct activations.Activation

	// Per-step state saved during Forward for BPTT.
	inputs  [][]float64
	gates   [][]float64 // z, r, candidate concatenated (3*outSize)
	hiddens [][]float64

	timeStep int

	preActBuf []float64
	outputBuf []float64
	dGates    []float64
	daBuf     []float64 // gradient w.r.t. r ⊙ h_prev
	dxBuf     []float64
	dhPrev    []float64
	zeroState []float64
}

// NewGRU creates a GRU cell with Xavier-initialized weights.
func NewGRU(inSize, outSize int) *GRU {
	inputScale := math.Sqrt(2.0 / float64(inSize+3*outSize))
	recurrentScale := math.Sqrt(2.0 / float64(outSize+3*outSize))

	inputWeights := make([]float64, 3*outSize*inSize)
	recurrentWeights := make([]float64, 3*outSize*outSize)
	biases := make([]float64, 3*outSize)

	rng := NewRNG(uint64(inSize)*1000 + uint64(outSize)*100 + 271)
	for i := 0; i < 3*outSize; i++ {
		for j := 0; j < inSize; j++ {
			inputWeights[i*inSize+j] = rng.Float64()*2*inputScale - inputScale
		}
		for j := 0; j < outSize; j++ {
			recurrentWeights[i*outSize+j] = rng.Float64()*2*recurrentScale - recurrentScale
		}
	}

	return &GRU{
		inSize:  inSize,
		outSize: outSize,

		inputWeights:     inputWeights,
		recurrentWeights: recurrentWeights,
		biases:           biases,

		gradInputWeights:     make([]float64, 3*outSize*inSize),
		gradRecurrentWeights: make([]float64, 3*outSize*outSize),
		gradBiases:           make([]float64, 3*outSize),

		gateAct: activations.Sigmoid{},
		cellAct: activations.Tanh{},

		preActBuf: make([]float64, 3*outSize),
		outputBuf: make([]float64, outSize),
		dGates:    make([]float64, 3*outSize),
		daBuf:     make([]float64, outSize),
		dxBuf:     make([]float64, inSize),
		dhPrev:    make([]float64, outSize),
		zeroState: make([]float64, outSize),
	}
}

// Reset clears the hidden state for a new sequence.
func (g *GRU) Reset() {
	g.timeStep = 0
	g.inputs = g.inputs[:0]
	g.gates = g.gates[:0]
	g.hiddens = g.hiddens[:0]
}

func (g *GRU) prevHidden() []float64 {
	if g.timeStep == 0 {
		return g.zeroState
	}
	return g.hiddens[g.timeStep-1]
}

// Forward advances the cell one time step:
//
//	z = sigmoid(Wz x + Uz h + bz)
//	r = sigmoid(Wr x + Ur h + br)
//	n = tanh(Wn x + Un (r ⊙ h) + bn)
//	h' = (1-z) ⊙ h + z ⊙ n
func (g *GRU) Forward(x []float64) []float64 {
	out := g.outSize
	hPrev := g.prevHidden()

	// Update and reset gate pre-activations: b + Wx*x + Wh*h_prev.
	copy(g.preActBuf, g.biases)
	for blk := 0; blk < 2; blk++ {
		base := blk * out
		for i := 0; i < out; i++ {
			sum := 0.0
			wIn := (base + i) * g.inSize
			for j := 0; j < g.inSize; j++ {
				sum += g.inputWeights[wIn+j] * x[j]
			}
			wRec := (base + i) * out
			for j := 0; j < out; j++ {
				sum += g.recurrentWeights[wRec+j] * hPrev[j]
			}
			g.preActBuf[base+i] += sum
		}
	}

	gates := make([]float64, 3*out)
	for i := 0; i < out; i++ {
		gates[i] = g.gateAct.Activate(g.preActBuf[i])           // update
		gates[out+i] = g.gateAct.Activate(g.preActBuf[out+i])   // reset
	}

	// Candidate uses the reset-gated hidden state.
	for i := 0; i < out; i++ {
		sum := g.preActBuf[2*out+i]
		wIn := (2*out + i) * g.inSize
		for j := 0; j < g.inSize; j++ {
			sum += g.inputWeights[wIn+j] * x[j]
		}
		wRec := (2*out + i) * out
		for j := 0; j < out; j++ {
			sum += g.recurrentWeights[wRec+j] * gates[out+j] * hPrev[j]
		}
		gates[2*out+i] = g.cellAct.Activate(sum)
	}

	hidden := make([]float64, out)
	for i := 0; i < out; i++ {
		z := gates[i]
		hidden[i] = (1-z)*hPrev[i] + z*gates[2*out+i]
	}

	xCopy := make([]float64, g.inSize)
	copy(xCopy, x)
	g.inputs = append(g.inputs, xCopy)
	g.gates = append(g.gates, gates)
	g.hiddens = append(g.hiddens, hidden)
	g.timeStep++

	copy(g.outputBuf, hidden)
	return g.outputBuf
}

// Backward runs one step of backpropagation through time, consuming
// the most recent saved step. Same contract as LSTM.Backward: grad is
// replaced in place with the gradient w.r.t. the previous hidden
// state, and the returned slice is the gradient w.r.t. the input.
func (g *GRU) Backward(grad []float64) []float64 {
	ts := g.timeStep - 1
	if ts < 0 || ts >= len(g.hiddens) {
		for i := range g.dxBuf {
			g.dxBuf[i] = 0
		}
		return g.dxBuf
	}

	out := g.outSize
	x := g.inputs[ts]
	gates := g.gates[ts]

	hPrev := g.zeroState
	if ts > 0 {
		hPrev = g.hiddens[ts-1]
	}

	// Gate deltas from the gate outputs themselves.
	for i := 0; i < out; i++ {
		z, n := gates[i], gates[2*out+i]
		g.dGates[i] = grad[i] * (n - hPrev[i]) * z * (1 - z) // update gate
		g.dGates[2*out+i] = grad[i] * z * (1 - n*n)          // candidate
	}

	// da = Un^T * d_candidate, gradient w.r.t. r ⊙ h_prev.
	for j := 0; j < out; j++ {
		sum := 0.0
		for i := 0; i < out; i++ {
			sum += g.recurrentWeights[(2*out+i)*out+j] * g.dGates[2*out+i]
		}
		g.daBuf[j] = sum
	}
	for i := 0; i < out; i++ {
		r := gates[out+i]
		g.dGates[out+i] = g.daBuf[i] * hPrev[i] * r * (1 - r) // reset gate
	}

	// Accumulate parameter gradients. The candidate's recurrent block
	// multiplies the reset-gated hidden state, not h_prev itself.
	for blk := 0; blk < 3; blk++ {
		base := blk * out
		for i := 0; i < out; i++ {
			d := g.dGates[base+i]
			wIn := (base + i) * g.inSize
			for j := 0; j < g.inSize; j++ {
				g.gradInputWeights[wIn+j] += d * x[j]
			}
			wRec := (base + i) * out
			for j := 0; j < out; j++ {
				h := hPrev[j]
				if blk == 2 {
					h *= gates[out+j]
				}
				g.gradRecurrentWeights[wRec+j] += d * h
			}
			g.gradBiases[base+i] += d
		}
	}

	// Gradient w.r.t. the input.
	for j := 0; j < g.inSize; j++ {
		sum := 0.0
		for blk := 0; blk < 3; blk++ {
			base := blk * out
			for i := 0; i < out; i++ {
				sum += g.inputWeights[(base+i)*g.inSize+j] * g.dGates[base+i]
			}
		}
		g.dxBuf[j] = sum
	}

	// Gradient w.r.t. the previous hidden state.
	for j := 0; j < out; j++ {
		z := gates[j]
		sum := grad[j]*(1-z) + g.daBuf[j]*gates[out+j]
		for blk := 0; blk < 2; blk++ {
			base := blk * out
			for i := 0; i < out; i++ {
				sum += g.recurrentWeights[(base+i)*out+j] * g.dGates[base+i]
			}
		}
		g.dhPrev[j] = sum
	}
	for i := 0; i < out; i++ {
		grad[i] = g.dhPrev[i]
	}

	clipGradients(maxGradientNorm, g.gradInputWeights, g.gradRecurrentWeights, g.gradBiases)

	g.timeStep--
	return g.dxBuf
}

// Params returns all GRU parameters flattened (copy).
func (g *GRU) Params() []float64 {
	params := make([]float64, 0, len(g.inputWeights)+len(g.recurrentWeights)+len(g.biases))
	params = append(params, g.inputWeights...)
	params = append(params, g.recurrentWeights...)
	params = append(params, g.biases...)
	return params
}

// SetParams updates weights and biases from a flattened slice.
func (g *GRU) SetParams(params []float64) {
	nIn, nRec := len(g.inputWeights), len(g.recurrentWeights)
	copy(g.inputWeights, params[:nIn])
	copy(g.recurrentWeights, params[nIn:nIn+nRec])
	copy(g.biases, params[nIn+nRec:])
}

// Gradients returns all GRU gradients flattened (copy).
func (g *GRU) Gradients() []float64 {
	grads := make([]float64, 0, len(g.gradInputWeights)+len(g.gradRecurrentWeights)+len(g.gradBiases))
	grads = append(grads, g.gradInputWeights...)
	grads = append(grads, g.gradRecurrentWeights...)
	grads = append(grads, g.gradBiases...)
	return grads
}

// ClearGradients zeroes the accumulated gradients.
func (g *GRU) ClearGradients() {
	for i := range g.gradInputWeights {
		g.gradInputWeights[i] = 0
	}
	for i := range g.gradRecurrentWeights {
		g.gradRecurrentWeights[i] = 0
	}
	for i := range g.gradBiases {
		g.gradBiases[i] = 0
	}
}

// InSize returns the input size of the cell.
func (g *GRU) InSize() int { return g.inSize }

// OutSize returns the hidden state size of the cell.
func (g *GRU) OutSize() int { return g.outSize }
