package function

import (
	"fmt"
	"math"
)

// Exponential interpolates between C0 and C1 as C0 + t^N × (C1 − C0).
type Exponential struct {
	c0, c1 []float64
	n      float64
	lo, hi float64
}

// NewExponential returns a type 2 function. A nil c0 defaults to 0 and a nil
// c1 to 1, with one output. Non-integer exponents need a domain in t ≥ 0
// and negative exponents one that excludes 0.
func NewExponential(c0, c1 []float64, n, lo, hi float64) (*Exponential, error) {
	if err := checkDomain(lo, hi); err != nil {
		return nil, err
	}
	if c0 == nil {
		c0 = []float64{0}
	}
	if c1 == nil {
		c1 = []float64{1}
	}
	if len(c0) != len(c1) || len(c0) == 0 || len(c0) > MaxOutputs {
		return nil, fmt.Errorf("%w: C0 has %d values, C1 %d", ErrInvalid, len(c0), len(c1))
	}
	if n != math.Trunc(n) && lo < 0 {
		return nil, fmt.Errorf("%w: exponent %v on negative domain", ErrInvalid, n)
	}
	if n < 0 && lo <= 0 && hi >= 0 {
		return nil, fmt.Errorf("%w: exponent %v with 0 in domain", ErrInvalid, n)
	}
	return &Exponential{
		c0: append([]float64(nil), c0...),
		c1: append([]float64(nil), c1...),
		n:  n,
		lo: lo,
		hi: hi,
	}, nil
}

// NumOutputs returns the length of C0.
func (e *Exponential) NumOutputs() int { return len(e.c0) }

// Domain returns the input range.
func (e *Exponential) Domain() (lo, hi float64) { return e.lo, e.hi }

// Evaluate clamps t to the domain and stores the outputs.
func (e *Exponential) Evaluate(t float64, out []float64) error {
	if len(out) < len(e.c0) {
		return fmt.Errorf("%w: %d < %d", ErrOutputs, len(out), len(e.c0))
	}
	t = clamp(t, e.lo, e.hi)
	f := math.Pow(t, e.n)
	for i := range e.c0 {
		out[i] = e.c0[i] + f*(e.c1[i]-e.c0[i])
	}
	return nil
}

// IsMonotonic reports the outputs that change direction on [t0, t1]. t^N is
// monotonic except for an even exponent across 0.
func (e *Exponential) IsMonotonic(t0, t1 float64) (uint32, error) {
	t0, t1 = ordered(clamp(t0, e.lo, e.hi), clamp(t1, e.lo, e.hi))
	even := e.n == math.Trunc(e.n) && math.Mod(e.n, 2) == 0 && e.n != 0
	if !even || t0 >= 0 || t1 <= 0 {
		return 0, nil
	}
	var mask uint32
	for i := range e.c0 {
		if e.c0[i] != e.c1[i] {
			mask |= 1 << i
		}
	}
	return mask, nil
}
