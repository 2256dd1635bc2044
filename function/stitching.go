package function

import (
	"fmt"
	"sort"
)

// Stitching joins k functions over adjacent subdomains of its domain.
type Stitching struct {
	funcs  []Func
	bounds []float64
	encode []float64
	lo, hi float64
	n      int
}

// NewStitching returns a type 3 function. bounds holds the k−1 interior
// breakpoints in increasing order, encode the 2k values each subdomain maps
// onto in its function's input.
func NewStitching(funcs []Func, bounds, encode []float64, lo, hi float64) (*Stitching, error) {
	if err := checkDomain(lo, hi); err != nil {
		return nil, err
	}
	k := len(funcs)
	if k == 0 || len(bounds) != k-1 || len(encode) != 2*k {
		return nil, fmt.Errorf("%w: %d functions, %d bounds, %d encode values", ErrInvalid, k, len(bounds), len(encode))
	}
	n := funcs[0].NumOutputs()
	for i, f := range funcs {
		if f == nil || f.NumOutputs() != n {
			return nil, fmt.Errorf("%w: function %d output count", ErrInvalid, i)
		}
	}
	prev := lo
	for _, b := range bounds {
		if b < prev || b > hi {
			return nil, fmt.Errorf("%w: bounds %v outside domain [%v, %v]", ErrInvalid, bounds, lo, hi)
		}
		prev = b
	}
	return &Stitching{
		funcs:  append([]Func(nil), funcs...),
		bounds: append([]float64(nil), bounds...),
		encode: append([]float64(nil), encode...),
		lo:     lo,
		hi:     hi,
		n:      n,
	}, nil
}

// NumOutputs returns the common output count of the parts.
func (s *Stitching) NumOutputs() int { return s.n }

// Domain returns the input range.
func (s *Stitching) Domain() (lo, hi float64) { return s.lo, s.hi }

// piece returns the subfunction index for t. Subdomains are half-open on the
// right except the last.
func (s *Stitching) piece(t float64) int {
	return sort.Search(len(s.bounds), func(i int) bool { return t < s.bounds[i] })
}

func (s *Stitching) subdomain(i int) (lo, hi float64) {
	lo, hi = s.lo, s.hi
	if i > 0 {
		lo = s.bounds[i-1]
	}
	if i < len(s.bounds) {
		hi = s.bounds[i]
	}
	return lo, hi
}

func (s *Stitching) encodeInput(i int, t float64) float64 {
	lo, hi := s.subdomain(i)
	e0, e1 := s.encode[2*i], s.encode[2*i+1]
	if hi == lo {
		return e0
	}
	return e0 + (t-lo)*(e1-e0)/(hi-lo)
}

// Evaluate maps t into its subfunction's input and evaluates it.
func (s *Stitching) Evaluate(t float64, out []float64) error {
	t = clamp(t, s.lo, s.hi)
	i := s.piece(t)
	return s.funcs[i].Evaluate(s.encodeInput(i, t), out)
}

// IsMonotonic delegates to the subfunction when [t0, t1] lies in one
// subdomain. An interval crossing a breakpoint reports every output.
func (s *Stitching) IsMonotonic(t0, t1 float64) (uint32, error) {
	t0, t1 = ordered(clamp(t0, s.lo, s.hi), clamp(t1, s.lo, s.hi))
	i := s.piece(t0)
	if _, hi := s.subdomain(i); t1 > hi {
		return allOutputs(s.n), nil
	}
	return s.funcs[i].IsMonotonic(s.encodeInput(i, t0), s.encodeInput(i, t1))
}
