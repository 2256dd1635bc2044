package meshshade

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/devcolor"
	"github.com/gogpu/meshshade/internal/colorstack"
	"github.com/gogpu/meshshade/raster"
)

// linearOutcome is what a linear-color attempt leaves to the caller.
type linearOutcome uint8

const (
	linearDone  linearOutcome = iota // painted
	linearSplit                      // decompose further
	linearFlat                       // paint one constant color
)

// linearQuad sends q to the linear-color device as two triangles.
func (fs *fillState) linearQuad(q *quadrangle) error {
	p00, p01, p10, p11 := q.p[0][0], q.p[0][1], q.p[1][0], q.p[1][1]
	c00, c01, c10, c11 := q.c[0][0], q.c[0][1], q.c[1][0], q.c[1][1]
	if err := fs.linearTrapezoids([3]fixed.Point26_6{p00, p01, p11}, [3]*colorstack.Color{c00, c01, c11}); err != nil {
		return err
	}
	return fs.linearTrapezoids([3]fixed.Point26_6{p00, p11, p10}, [3]*colorstack.Color{c00, c11, c10})
}

// vertexFractions resolves the triangle colors into fs.vertexFrac. It
// reports false when a color has no fractional form.
func (fs *fillState) vertexFractions(c [3]*colorstack.Color) (bool, error) {
	for i := range c {
		if err := fs.fractional(c[i], fs.vertexFrac[i]); err != nil {
			if errors.Is(err, devcolor.ErrNotPureOrDevN) {
				if !fs.warned {
					fs.warned = true
					slogger().Warn("meshshade: linear color path skipped", "err", err)
				}
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

// linearTrapezoids emits the trapezoids of triangle p and hands each to
// the device with colors interpolated at its corners.
func (fs *fillState) linearTrapezoids(p [3]fixed.Point26_6, c [3]*colorstack.Color) error {
	ok, err := fs.vertexFractions(c)
	if err != nil {
		return err
	}
	return fs.em.Triangle(p[0], p[1], p[2], func(t *raster.Trapezoid) error {
		if !ok {
			return fs.decomposeTrapezoid(t, p, c)
		}
		return fs.linearTrapezoid(t, p, c)
	})
}

func (fs *fillState) linearTrapezoid(t *raster.Trapezoid, p [3]fixed.Point26_6, c [3]*colorstack.Color) error {
	bc := newBarycentric(p)
	corners := t.DeviceCorners()
	var cf [4][]int32
	for k, pt := range corners {
		w := bc.weights(pt)
		out := fs.cornerFrac[k]
		for j := range out {
			v := w[0]*float64(fs.vertexFrac[0][j]) +
				w[1]*float64(fs.vertexFrac[1][j]) +
				w[2]*float64(fs.vertexFrac[2][j])
			out[j] = int32(math.Round(math.Max(0, math.Min(devcolor.FracOne, v))))
		}
		cf[k] = out
	}

	res, err := fs.linDev.FillLinearColorTrapezoid(t, cf, fs.op)
	if err != nil {
		return fmt.Errorf("%w: linear color trapezoid: %w", ErrDeviceFill, err)
	}
	switch res {
	case raster.LinearFilled:
		fs.stats.LinearFilled++
		return nil
	case raster.LinearConstant:
		fs.stats.LinearConstant++
		return fs.fillTrapezoidAverage(t, p, c)
	default:
		fs.stats.LinearDecomposed++
		return fs.decomposeTrapezoid(t, p, c)
	}
}

// linearTriangle offers triangle p to the linear-color device.
func (fs *fillState) linearTriangle(p [3]fixed.Point26_6, c [3]*colorstack.Color) (linearOutcome, error) {
	ok, err := fs.vertexFractions(c)
	if err != nil || !ok {
		return linearSplit, err
	}
	res, err := fs.linDev.FillLinearColorTriangle(p, [3][]int32{fs.vertexFrac[0], fs.vertexFrac[1], fs.vertexFrac[2]}, fs.op)
	if err != nil {
		return linearSplit, fmt.Errorf("%w: linear color triangle: %w", ErrDeviceFill, err)
	}
	switch res {
	case raster.LinearFilled:
		fs.stats.LinearFilled++
		return linearDone, nil
	case raster.LinearConstant:
		fs.stats.LinearConstant++
		return linearFlat, nil
	default:
		fs.stats.LinearDecomposed++
		return linearSplit, nil
	}
}

// cornerColors stores the paint colors at the device corners of t, in
// Corners order, interpolated over triangle p.
func (fs *fillState) cornerColors(dst [4]*colorstack.Color, t *raster.Trapezoid, p [3]fixed.Point26_6, c [3]*colorstack.Color) error {
	bc := newBarycentric(p)
	for k, pt := range t.DeviceCorners() {
		w := bc.weights(pt)
		d := dst[k]
		d.T[0] = w[0]*c[0].T[0] + w[1]*c[1].T[0] + w[2]*c[2].T[0]
		d.T[1] = 0
		for j := range d.CC {
			d.CC[j] = w[0]*c[0].CC[j] + w[1]*c[1].CC[j] + w[2]*c[2].CC[j]
		}
		if fs.fn == nil {
			fs.cs.RestrictColor(d.CC)
		} else if err := fs.evaluate(d); err != nil {
			return err
		}
	}
	return nil
}

// decomposeTrapezoid paints t, part of triangle p, with constant colors.
func (fs *fillState) decomposeTrapezoid(t *raster.Trapezoid, p [3]fixed.Point26_6, c [3]*colorstack.Color) error {
	fr, err := fs.reserve(4)
	if err != nil {
		return err
	}
	defer fr.Release()
	cc := [4]*colorstack.Color{fr.At(0), fr.At(1), fr.At(2), fr.At(3)}
	if err := fs.cornerColors(cc, t, p, c); err != nil {
		return err
	}
	return fs.decomposeLinearColor(t, cc, 0)
}

// fillTrapezoidAverage paints t with the average of its corner colors.
func (fs *fillState) fillTrapezoidAverage(t *raster.Trapezoid, p [3]fixed.Point26_6, c [3]*colorstack.Color) error {
	fr, err := fs.reserve(5)
	if err != nil {
		return err
	}
	defer fr.Release()
	cc := [4]*colorstack.Color{fr.At(0), fr.At(1), fr.At(2), fr.At(3)}
	if err := fs.cornerColors(cc, t, p, c); err != nil {
		return err
	}
	avg := fr.At(4)
	avg.Average(cc[:]...)
	dc, _, err := fs.resolve(avg)
	if err != nil {
		return err
	}
	return fs.fillTrapezoid(t, dc)
}

// decomposeLinearColor bisects t across its y range, interpolating the
// corner colors c (in Corners order), until the colors are close enough
// or t is thinner than the decomposition limit, and paints each piece
// with the average of its corners.
func (fs *fillState) decomposeLinearColor(t *raster.Trapezoid, c [4]*colorstack.Color, depth int) error {
	h := t.Height()
	if h < max(fs.limit, 2) || depth >= maxLinearDepth || fs.spread(c[:]...) <= fs.smooth {
		fr, err := fs.reserve(1)
		if err != nil {
			return err
		}
		defer fr.Release()
		avg := fr.At(0)
		avg.Average(c[:]...)
		if err := fs.evaluate(avg); err != nil {
			return err
		}
		dc, _, err := fs.resolve(avg)
		if err != nil {
			return err
		}
		return fs.fillTrapezoid(t, dc)
	}

	ym := t.YBottom + h/2
	f := float64(ym-t.YBottom) / float64(h)
	fr, err := fs.reserve(2)
	if err != nil {
		return err
	}
	defer fr.Release()
	lm, rm := fr.At(0), fr.At(1)
	if err := fs.interpolate(lm, c[0], c[3], f); err != nil {
		return err
	}
	if err := fs.interpolate(rm, c[1], c[2], f); err != nil {
		return err
	}

	lo, hi := *t, *t
	lo.YTop = ym
	hi.YBottom = ym
	if err := fs.decomposeLinearColor(&lo, [4]*colorstack.Color{c[0], c[1], rm, lm}, depth+1); err != nil {
		return err
	}
	return fs.decomposeLinearColor(&hi, [4]*colorstack.Color{lm, rm, c[2], c[3]}, depth+1)
}

// barycentric computes triangle coordinates in device space.
type barycentric struct {
	x0, y0         float64
	ax, ay, bx, by float64
	det            float64
}

func newBarycentric(p [3]fixed.Point26_6) barycentric {
	b := barycentric{
		x0: float64(p[0].X),
		y0: float64(p[0].Y),
		ax: float64(p[1].X - p[0].X),
		ay: float64(p[1].Y - p[0].Y),
		bx: float64(p[2].X - p[0].X),
		by: float64(p[2].Y - p[0].Y),
	}
	b.det = b.ax*b.by - b.ay*b.bx
	return b
}

// weights returns the barycentric weights of pt, clamped to the triangle.
func (b barycentric) weights(pt fixed.Point26_6) [3]float64 {
	if b.det == 0 {
		return [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	}
	dx, dy := float64(pt.X)-b.x0, float64(pt.Y)-b.y0
	w1 := (dx*b.by - dy*b.bx) / b.det
	w2 := (b.ax*dy - b.ay*dx) / b.det
	w := [3]float64{max(0, 1-w1-w2), max(0, w1), max(0, w2)}
	s := w[0] + w[1] + w[2]
	return [3]float64{w[0] / s, w[1] / s, w[2] / s}
}
