// Package function implements the one-input PDF functions used by shadings
// to compute paint colors from a parameter: exponential interpolation
// (type 2), stitching (type 3) and linearly interpolated samples (type 0
// with one input).
//
// Every function reports per-output monotonicity over an interval, which
// lets a shading fill decide when the colors of a region are bounded by the
// colors at its corners.
package function

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalid reports an inconsistent function definition.
	ErrInvalid = errors.New("function: invalid definition")

	// ErrOutputs reports an output buffer of the wrong size.
	ErrOutputs = errors.New("function: wrong output count")
)

// MaxOutputs bounds the output count so a monotonicity mask fits in 32 bits.
const MaxOutputs = 32

// Func is a one-input function.
type Func interface {
	NumOutputs() int
	Domain() (lo, hi float64)
	Evaluate(t float64, out []float64) error

	// IsMonotonic returns a mask with bit i set when output i is not
	// monotonic on [t0, t1].
	IsMonotonic(t0, t1 float64) (uint32, error)
}

func allOutputs(n int) uint32 {
	if n >= 32 {
		return math.MaxUint32
	}
	return 1<<n - 1
}

func checkDomain(lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		return fmt.Errorf("%w: domain [%v, %v]", ErrInvalid, lo, hi)
	}
	return nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func ordered(t0, t1 float64) (float64, float64) {
	if t0 > t1 {
		return t1, t0
	}
	return t0, t1
}
