package layer

// RNG is a small deterministic xorshift64* generator used for weight
// initialization and dropout masks. Layers seed it from their shape so
// repeated runs build identical networks.
type RNG struct {
	state uint64
}

// NewRNG creates a generator with the given seed. A zero seed is
// remapped, since xorshift is stuck at zero.
func NewRNG(seed uint64) *RNG {
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	return &RNG{state: seed}
}

// Uint64 returns the next value of the sequence.
func (r *RNG) Uint64() uint64 {
	x := r.state
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	r.state = x
	return x * 0x2545f4914f6cdd1d
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}
