package layer

// Dropout implements inverted dropout regularization. During training
// each input is zeroed with probability p and survivors are scaled by
// 1/(1-p); during inference inputs pass through unchanged.
type Dropout struct {
	p        float64
	training bool
	size     int

	outputBuf []float64
	maskBuf   []float64
	gradInBuf []float64
	noParams  []float64

	rng *RNG
}

// NewDropout creates a dropout layer dropping inputs with probability p.
func NewDropout(p float64, size int) *Dropout {
	return &Dropout{
		p:         p,
		training:  true,
		size:      size,
		outputBuf: make([]float64, size),
		maskBuf:   make([]float64, size),
		gradInBuf: make([]float64, size),
		rng:       NewRNG(42),
	}
}

// SetTraining switches between training and inference behavior.
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// IsTraining reports whether the layer is in training mode.
func (d *Dropout) IsTraining() bool {
	return d.training
}

// Forward applies the dropout mask (training) or the identity (inference).
func (d *Dropout) Forward(x []float64) []float64 {
	if !d.training {
		copy(d.outputBuf, x)
		return d.outputBuf
	}

	scale := 1.0 / (1.0 - d.p)
	for i := range x {
		if d.rng.Float64() < d.p {
			d.maskBuf[i] = 0
			d.outputBuf[i] = 0
		} else {
			d.maskBuf[i] = 1
			d.outputBuf[i] = x[i] * scale
		}
	}
	return d.outputBuf
}

// Backward routes gradients through the positions kept by the last
// forward pass, with the same 1/(1-p) scaling.
func (d *Dropout) Backward(grad []float64) []float64 {
	if !d.training {
		copy(d.gradInBuf, grad)
		return d.gradInBuf
	}

	scale := 1.0 / (1.0 - d.p)
	for i := range grad {
		if d.maskBuf[i] > 0 {
			d.gradInBuf[i] = grad[i] * scale
		} else {
			d.gradInBuf[i] = 0
		}
	}
	return d.gradInBuf
}

// Params returns no parameters; dropout has none.
func (d *Dropout) Params() []float64 { return d.noParams }

// SetParams is a no-op.
func (d *Dropout) SetParams(params []float64) {}

// Gradients returns no gradients; dropout has none.
func (d *Dropout) Gradients() []float64 { return d.noParams }

// ClearGradients is a no-op.
func (d *Dropout) ClearGradients() {}

// Reset reseeds the mask generator so repeated runs are identical.
func (d *Dropout) Reset() {
	d.rng = NewRNG(42)
}

// InSize returns the layer width.
func (d *Dropout) InSize() int { return d.size }

// OutSize returns the layer width.
func (d *Dropout) OutSize() int { return d.size }

// P returns the dropout probability.
func (d *Dropout) P() float64 { return d.p }
