package layer

import "fmt"

// SequenceUnroller drives a recurrent cell over timeSteps consecutive
// inputs packed into a single flat vector. With returnSeq the output
// concatenates the hidden state of every step; otherwise only the
// final hidden state is returned.
type SequenceUnroller struct {
	base      Layer
	timeSteps int
	returnSeq bool

	outputBuf []float64
	gradInBuf []float64
	stepBuf   []float64
}

// NewSequenceUnroller wraps base to run over timeSteps steps.
func NewSequenceUnroller(base Layer, timeSteps int, returnSeq bool) *SequenceUnroller {
	outSize := base.OutSize()
	if returnSeq {
		outSize *= timeSteps
	}
	return &SequenceUnroller{
		base:      base,
		timeSteps: timeSteps,
		returnSeq: returnSeq,
		outputBuf: make([]float64, outSize),
		gradInBuf: make([]float64, timeSteps*base.InSize()),
		stepBuf:   make([]float64, base.OutSize()),
	}
}

// Forward resets the cell and feeds it one step at a time.
func (s *SequenceUnroller) Forward(x []float64) []float64 {
	inSize := s.base.InSize()
	outSize := s.base.OutSize()

	if len(x) != s.timeSteps*inSize {
		panic(fmt.Sprintf("layer: sequence input has %d values, want %d (steps=%d, features=%d)",
			len(x), s.timeSteps*inSize, s.timeSteps, inSize))
	}

	s.base.Reset()
	for t := 0; t < s.timeSteps; t++ {
		out := s.base.Forward(x[t*inSize : (t+1)*inSize])
		if s.returnSeq {
			copy(s.outputBuf[t*outSize:(t+1)*outSize], out)
		} else if t == s.timeSteps-1 {
			copy(s.outputBuf, out)
		}
	}
	return s.outputBuf
}

// Backward runs backpropagation through time from the last step to the
// first, carrying the hidden-state gradient that the cell's Backward
// leaves in its grad argument.
func (s *SequenceUnroller) Backward(grad []float64) []float64 {
	inSize := s.base.InSize()
	outSize := s.base.OutSize()

	carried := s.stepBuf
	for i := range carried {
		carried[i] = 0
	}

	for t := s.timeSteps - 1; t >= 0; t-- {
		if s.returnSeq {
			for i := 0; i < outSize; i++ {
				carried[i] += grad[t*outSize+i]
			}
		} else if t == s.timeSteps-1 {
			for i := 0; i < outSize; i++ {
				carried[i] += grad[i]
			}
		}

		dx := s.base.Backward(carried)
		copy(s.gradInBuf[t*inSize:(t+1)*inSize], dx)
	}

	return s.gradInBuf
}

// Params returns the wrapped cell's parameters.
func (s *SequenceUnroller) Params() []float64 { return s.base.Params() }

// SetParams updates the wrapped cell's parameters.
func (s *SequenceUnroller) SetParams(p []float64) { s.base.SetParams(p) }

// Gradients returns the wrapped cell's gradients.
func (s *SequenceUnroller) Gradients() []float64 { return s.base.Gradients() }

// ClearGradients zeroes the wrapped cell's gradients.
func (s *SequenceUnroller) ClearGradients() { s.base.ClearGradients() }

// Reset clears the wrapped cell's state.
func (s *SequenceUnroller) Reset() { s.base.Reset() }

// InSize returns the flattened sequence input size.
func (s *SequenceUnroller) InSize() int { return s.timeSteps * s.base.InSize() }

// OutSize returns the output size, accounting for returnSeq.
func (s *SequenceUnroller) OutSize() int {
	if s.returnSeq {
		return s.timeSteps * s.base.OutSize()
	}
	return s.base.OutSize()
}

// Base returns the wrapped recurrent cell.
func (s *SequenceUnroller) Base() Layer { return s.base }

// TimeSteps returns the number of unrolled steps.
func (s *SequenceUnroller) TimeSteps() int { return s.timeSteps }

// ReturnSequences reports whether every step's hidden state is emitted.
func (s *SequenceUnroller) ReturnSequences() bool { return s.returnSeq }
