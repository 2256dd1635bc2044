package meshshade

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/meshshade/devcolor"
	"github.com/gogpu/meshshade/internal/colorstack"
)

// linearitySamples are the interior fractions at which colors are
// compared against linear interpolation.
var linearitySamples = [2]float64{0.3, 0.7}

func abs(x float64) float64 {
	return math.Abs(x)
}

// reserve claims k colors from the color stack.
func (fs *fillState) reserve(k int) (colorstack.Frame, error) {
	fr, err := fs.stack.Reserve(k)
	if err != nil {
		return colorstack.Frame{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return fr, nil
}

// span returns the largest component difference between a and b relative
// to the component ranges.
func (fs *fillState) span(a, b *colorstack.Color) float64 {
	var d float64
	for i, w := range fs.width {
		d = max(d, abs(a.CC[i]-b.CC[i])/w)
	}
	return d
}

// spread returns the largest relative component range over cs.
func (fs *fillState) spread(cs ...*colorstack.Color) float64 {
	var d float64
	for i, w := range fs.width {
		lo, hi := cs[0].CC[i], cs[0].CC[i]
		for _, c := range cs[1:] {
			lo, hi = min(lo, c.CC[i]), max(hi, c.CC[i])
		}
		d = max(d, (hi-lo)/w)
	}
	return d
}

// evaluate recomputes the components of c from its parameter when the
// shading has a function.
func (fs *fillState) evaluate(c *colorstack.Color) error {
	if fs.fn == nil {
		return nil
	}
	if err := fs.fn.Evaluate(c.T[0], c.CC); err != nil {
		return fmt.Errorf("%w: evaluate function at %v: %w", ErrColorConversion, c.T[0], err)
	}
	fs.cs.RestrictColor(c.CC)
	return nil
}

// interpolate stores the color at t between a and b into dst.
func (fs *fillState) interpolate(dst, a, b *colorstack.Color, t float64) error {
	dst.Lerp(a, b, t)
	return fs.evaluate(dst)
}

// resolve returns the device color of c, converting it at most once per
// distinct paint color through the cache. The slot identifies the cache
// entry until it is evicted.
func (fs *fillState) resolve(c *colorstack.Color) (devcolor.Color, int, error) {
	r := fs.cache.Lookup(c.CC)
	if r.Hit {
		return r.Color, r.Slot, nil
	}
	dc, err := fs.cs.RemapColor(c.CC, fs.layout)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: remap color %v: %w", ErrColorConversion, c.CC, err)
	}
	if dc == nil {
		return nil, 0, fmt.Errorf("%w: remap color %v: no device color", ErrColorConversion, c.CC)
	}
	if err := fs.cache.Store(r.Slot, dc); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return dc, r.Slot, nil
}

// fractional stores the 31-bit device components of c into out. Colors
// without a fractional form yield devcolor.ErrNotPureOrDevN.
func (fs *fillState) fractional(c *colorstack.Color, out []int32) error {
	_, slot, err := fs.resolve(c)
	if err != nil {
		return err
	}
	f, err := fs.cache.Fractional(slot)
	if err != nil {
		if errors.Is(err, devcolor.ErrNotPureOrDevN) {
			return err
		}
		return fmt.Errorf("%w: fractional color: %w", ErrColorConversion, err)
	}
	copy(out, f)
	return nil
}

// checkMonotonic asks the function whether it is monotonic over the
// parameter range of cs.
func (fs *fillState) checkMonotonic(cs ...*colorstack.Color) (bool, error) {
	t0, t1 := cs[0].T[0], cs[0].T[0]
	for _, c := range cs[1:] {
		t0, t1 = min(t0, c.T[0]), max(t1, c.T[0])
	}
	fs.stats.MonotonicChecks++
	mask, err := fs.fn.IsMonotonic(t0, t1)
	if err != nil {
		return false, fmt.Errorf("%w: monotonicity on [%v, %v]: %w", ErrColorConversion, t0, t1, err)
	}
	return mask == 0, nil
}

// checkLinear reports whether the colors of q are close enough to linear
// for the linear-color path. With a function, colors are sampled along the
// edges and diagonals and compared against linear interpolation; the
// color space then checks both corner triangles.
func (fs *fillState) checkLinear(q *quadrangle) (bool, error) {
	fs.stats.LinearityChecks++
	c00, c01, c10, c11 := q.c[0][0], q.c[0][1], q.c[1][0], q.c[1][1]

	if fs.fn != nil {
		fr, err := fs.reserve(2)
		if err != nil {
			return false, err
		}
		defer fr.Release()
		lerp, exact := fr.At(0), fr.At(1)
		pairs := [6][2]*colorstack.Color{
			{c00, c01}, {c10, c11}, {c00, c10}, {c01, c11}, {c00, c11}, {c01, c10},
		}
		for _, pr := range pairs {
			for _, t := range linearitySamples {
				lerp.Lerp(pr[0], pr[1], t)
				exact.CopyFrom(lerp)
				if err := fs.evaluate(exact); err != nil {
					return false, err
				}
				if fs.span(lerp, exact) > fs.smooth {
					return false, nil
				}
			}
		}
	}

	for _, tri := range [2][3]*colorstack.Color{{c00, c01, c11}, {c00, c11, c10}} {
		ok, err := fs.cs.IsLinear(tri[0].CC, tri[1].CC, tri[2].CC, fs.smooth)
		if err != nil {
			return false, fmt.Errorf("%w: linearity: %w", ErrColorConversion, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
