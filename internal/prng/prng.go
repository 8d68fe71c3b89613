// Package prng is the seeded pseudo-random stream that fills the impulse
// table.
//
// The generator is a pure multiplicative congruential generator,
// state = state * 3039177861 mod 2^32, with no additive increment. It is
// kept bit-compatible with the stimulus it replaces so that a recorded seed
// reproduces the same noise field. Known weaknesses:
//   - seed 0 is absorbing: every draw returns 0 and Gaussian draws are -Inf;
//   - the multiplier is 5 mod 8, so odd seeds have period 2^30 and even
//     seeds lose one bit of period per trailing zero;
//   - consecutive pairs lie on a lattice, which Box-Muller inherits.
//
// None of this matters for visual noise, but do not use it for statistics.
package prng

import (
	"math"
	"time"
)

// Multiplier is the fixed odd multiplier of the generator.
const Multiplier uint32 = 3039177861

const twoPow32 = 4294967296.0

// Stream is a single 32-bit generator state. The zero value is seeded with 0
// and therefore degenerate; call Reseed first.
type Stream struct {
	state uint32
}

// New returns a stream seeded with seed.
func New(seed uint32) *Stream {
	return &Stream{state: seed}
}

// TimeSeed is the default per-load seed: wall-clock seconds truncated to 32
// bits.
func TimeSeed() uint32 {
	return uint32(time.Now().Unix())
}

// Reseed sets the internal state.
func (s *Stream) Reseed(seed uint32) {
	s.state = seed
}

// State returns the current internal state.
func (s *Stream) State() uint32 {
	return s.state
}

func (s *Stream) advance() uint32 {
	s.state *= Multiplier
	return s.state
}

// Uniform01 advances the state and returns state/2^32 in [0,1).
func (s *Stream) Uniform01() float64 {
	return float64(s.advance()) / twoPow32
}

// Uniform returns a value in [min,max).
func (s *Stream) Uniform(min, max float64) float64 {
	return min + s.Uniform01()*(max-min)
}

// Gaussian draws from N(mean, variance) with the Box-Muller transform over
// two consecutive uniform draws.
func (s *Stream) Gaussian(mean, variance float64) float64 {
	x1 := s.Uniform01()
	x2 := s.Uniform01()
	z := math.Sqrt(-2*math.Log(x1)) * math.Cos(2*math.Pi*x2)
	return mean + math.Sqrt(variance)*z
}
