package function

import (
	"fmt"
	"math"
)

// Sampled is a one-input sample table with linear interpolation.
type Sampled struct {
	samples [][]float64
	lo, hi  float64
	n       int
}

// NewSampled returns a function through samples spread evenly over
// [lo, hi]. Every sample holds one value per output.
func NewSampled(samples [][]float64, lo, hi float64) (*Sampled, error) {
	if err := checkDomain(lo, hi); err != nil {
		return nil, err
	}
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: %d samples", ErrInvalid, len(samples))
	}
	n := len(samples[0])
	if n == 0 || n > MaxOutputs {
		return nil, fmt.Errorf("%w: %d outputs", ErrInvalid, n)
	}
	cp := make([][]float64, len(samples))
	for i, s := range samples {
		if len(s) != n {
			return nil, fmt.Errorf("%w: sample %d has %d values, want %d", ErrInvalid, i, len(s), n)
		}
		cp[i] = append([]float64(nil), s...)
	}
	return &Sampled{samples: cp, lo: lo, hi: hi, n: n}, nil
}

// NumOutputs returns the values per sample.
func (s *Sampled) NumOutputs() int { return s.n }

// Domain returns the input range.
func (s *Sampled) Domain() (lo, hi float64) { return s.lo, s.hi }

// index maps t to a fractional sample position.
func (s *Sampled) index(t float64) float64 {
	if s.hi == s.lo {
		return 0
	}
	return (clamp(t, s.lo, s.hi) - s.lo) / (s.hi - s.lo) * float64(len(s.samples)-1)
}

// Evaluate interpolates between the samples around t.
func (s *Sampled) Evaluate(t float64, out []float64) error {
	if len(out) < s.n {
		return fmt.Errorf("%w: %d < %d", ErrOutputs, len(out), s.n)
	}
	x := s.index(t)
	i := min(int(x), len(s.samples)-2)
	f := x - float64(i)
	a, b := s.samples[i], s.samples[i+1]
	for j := 0; j < s.n; j++ {
		out[j] = a[j] + (b[j]-a[j])*f
	}
	return nil
}

// IsMonotonic checks the samples bracketing [t0, t1]. The test is
// sufficient: an output may be reported although the interpolated part
// inside the interval is monotonic.
func (s *Sampled) IsMonotonic(t0, t1 float64) (uint32, error) {
	x0, x1 := ordered(s.index(t0), s.index(t1))
	i0 := int(math.Floor(x0))
	i1 := min(int(math.Ceil(x1)), len(s.samples)-1)
	var mask uint32
	for j := 0; j < s.n; j++ {
		var up, down bool
		for i := i0; i < i1; i++ {
			d := s.samples[i+1][j] - s.samples[i][j]
			up = up || d > 0
			down = down || d < 0
		}
		if up && down {
			mask |= 1 << j
		}
	}
	return mask, nil
}
