package params

import (
	"math"
	"sync/atomic"
)

// Source is a readable scalar. Fixed values never change; bound variables
// may be updated by the host at any time and are re-read by whoever needs
// the current value.
type Source interface {
	Float() float64
}

// Fixed is a value resolved once.
type Fixed float64

func (f Fixed) Float() float64 { return float64(f) }

// Variable is a bound variable that is safe to read and write from
// different goroutines.
type Variable struct {
	bits atomic.Uint64
}

// NewVariable returns a variable holding v.
func NewVariable(v float64) *Variable {
	x := &Variable{}
	x.Set(v)
	return x
}

func (x *Variable) Float() float64 {
	return math.Float64frombits(x.bits.Load())
}

// Set stores v.
func (x *Variable) Set(v float64) {
	x.bits.Store(math.Float64bits(v))
}

// Add adds delta and returns the new value.
func (x *Variable) Add(delta float64) float64 {
	for {
		old := x.bits.Load()
		next := math.Float64frombits(old) + delta
		if x.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// Int reads a source as an integer, truncating toward zero the way an
// integer-typed experiment variable would.
func Int(s Source) int {
	return int(s.Float())
}
