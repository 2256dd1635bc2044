package meshshade

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/internal/colorstack"
	"github.com/gogpu/meshshade/internal/wedge"
	"github.com/gogpu/meshshade/raster"
)

func wedgeError(err error) error {
	if errors.Is(err, wedge.ErrExhausted) || errors.Is(err, wedge.ErrMismatch) {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return err
}

// createList starts a wedge list for an edge from p0 to p1. Without lazy
// wedges it returns the zero Span.
func (fs *fillState) createList(p0, p1 fixed.Point26_6, bounds raster.Rect) (wedge.Span, error) {
	if !fs.cfg.LazyWedges {
		return wedge.Span{}, nil
	}
	s, err := fs.arena.CreateList(p0, p1, bounds)
	if err != nil {
		return wedge.Span{}, wedgeError(err)
	}
	return s, nil
}

// sideOf returns the side of the directed edge p0 p1 that q0 and q1 lie
// on, as the sign of raster.Orient, or 0 when they disagree.
func sideOf(p0, p1, q0, q1 fixed.Point26_6) int {
	return sign(int64(sign(raster.Orient(p0, p1, q0)) + sign(raster.Orient(p0, p1, q1))))
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// median records the bisection of the edge p0 p1 at mid in s by a region
// on the given side of it, and returns the halves of s and the point to
// use, which is the other side's point when it split the edge first.
func (fs *fillState) median(s wedge.Span, p0, p1, mid fixed.Point26_6, side int) (wedge.Span, wedge.Span, fixed.Point26_6, error) {
	if !s.Valid() {
		return wedge.Span{}, wedge.Span{}, mid, nil
	}
	m, err := fs.arena.OpenMedian(s, p0, p1, mid, side)
	if err != nil {
		return wedge.Span{}, wedge.Span{}, mid, wedgeError(err)
	}
	s0, s1 := s.Split(m)
	return s0, s1, fs.arena.Point(m), nil
}

// prefill bisects the boundary curve c into s down to k segments, so that
// s starts from the polyline every patch sharing c computes. side is the
// side of c away from the patch.
func (fs *fillState) prefill(s wedge.Span, c curve, k, side int) error {
	if k <= 1 {
		return nil
	}
	l, r := splitCurve(c)
	s0, s1, _, err := fs.median(s, c[0], c[3], l[3], side)
	if err != nil {
		return err
	}
	if err := fs.prefill(s0, l, k/2, side); err != nil {
		return err
	}
	return fs.prefill(s1, r, k/2, side)
}

// terminate fills the wedges of the list s and releases it. c0 and c1 are
// the colors at the list ends.
func (fs *fillState) terminate(s wedge.Span, c0, c1 *colorstack.Color) error {
	if !s.Valid() {
		return nil
	}
	err := fs.arena.Terminate(s, func(w wedge.Wedge) error {
		return fs.fillWedge(w, c0, c1)
	})
	if err != nil {
		return wedgeError(err)
	}
	return nil
}

func (fs *fillState) fillWedge(w wedge.Wedge, c0, c1 *colorstack.Color) error {
	if raster.Orient(w.P[0], w.P[1], w.P[2]) == 0 {
		return nil
	}
	fs.stats.Wedges++
	fr, err := fs.reserve(3)
	if err != nil {
		return err
	}
	defer fr.Release()
	var c [3]*colorstack.Color
	for i := range c {
		c[i] = fr.At(i)
		if err := fs.interpolate(c[i], c0, c1, w.T[i]); err != nil {
			return err
		}
	}
	return fs.fillTriangle(w.P, c, 0)
}

// fillWedges fills, without lists, the gaps between the curve c flattened
// to k0 segments and the patch on the given side of it, whose edge is c
// flattened to k1 segments. c0 and c1 are the colors at the curve ends.
func (fs *fillState) fillWedges(c curve, k0, k1, side int, c0, c1 *colorstack.Color) error {
	if k0 >= k1 {
		return nil
	}
	if k0 <= 1 {
		return fs.wedgeByTriangles(c, k1, side, c0, c1)
	}
	fr, err := fs.reserve(1)
	if err != nil {
		return err
	}
	defer fr.Release()
	cm := fr.At(0)
	if err := fs.interpolate(cm, c0, c1, 0.5); err != nil {
		return err
	}
	l, r := splitCurve(c)
	if err := fs.fillWedges(l, k0/2, k1/2, side, c0, cm); err != nil {
		return err
	}
	return fs.fillWedges(r, k0/2, k1/2, side, cm, c1)
}

// wedgeByTriangles fills the parts of the region between the chord of c
// and c flattened to k segments that the patch on the given side of the
// chord leaves open.
func (fs *fillState) wedgeByTriangles(c curve, k, side int, c0, c1 *colorstack.Color) error {
	if k < 2 {
		return nil
	}
	l, r := splitCurve(c)
	tri := [3]fixed.Point26_6{c[0], l[3], c[3]}
	o := sign(raster.Orient(c[0], c[3], l[3]))
	if o != 0 && side != 0 && o != side {
		// The patch already covers this triangle and everything nested in it.
		return nil
	}
	fr, err := fs.reserve(1)
	if err != nil {
		return err
	}
	defer fr.Release()
	cm := fr.At(0)
	if err := fs.interpolate(cm, c0, c1, 0.5); err != nil {
		return err
	}
	if o != 0 {
		fs.stats.Wedges++
		if err := fs.fillTriangle(tri, [3]*colorstack.Color{c0, cm, c1}, 0); err != nil {
			return err
		}
	}
	if err := fs.wedgeByTriangles(l, k/2, side, c0, cm); err != nil {
		return err
	}
	return fs.wedgeByTriangles(r, k/2, side, cm, c1)
}

// fillTriangle paints a triangle with colors at its vertices, bisecting
// its longest edge until the colors are close enough.
func (fs *fillState) fillTriangle(p [3]fixed.Point26_6, c [3]*colorstack.Color, depth int) error {
	b := raster.Bounds(p[:]...)
	big := b.Max.X-b.Min.X >= fs.limit || b.Max.Y-b.Min.Y >= fs.limit
	if !big || depth >= maxTriangleDepth || fs.spread(c[:]...) <= fs.smooth {
		return fs.fillTriangleConstant(p, c)
	}

	if fs.linDev != nil && fs.linear && fs.clip.ContainsRect(b) {
		res, err := fs.linearTriangle(p, c)
		if err != nil {
			return err
		}
		switch res {
		case linearDone:
			return nil
		case linearFlat:
			return fs.fillTriangleConstant(p, c)
		}
	}

	// Bisect the longest edge i -> j; k is the opposite vertex.
	i, best := 0, fixed.Int26_6(-1)
	for e := 0; e < 3; e++ {
		if d := extent(p[e], p[(e+1)%3]); d > best {
			i, best = e, d
		}
	}
	j, k := (i+1)%3, (i+2)%3

	fr, err := fs.reserve(1)
	if err != nil {
		return err
	}
	defer fr.Release()
	cm := fr.At(0)
	if err := fs.interpolate(cm, c[i], c[j], 0.5); err != nil {
		return err
	}
	pm := midPoint(p[i], p[j])
	if err := fs.fillTriangle([3]fixed.Point26_6{p[i], pm, p[k]}, [3]*colorstack.Color{c[i], cm, c[k]}, depth+1); err != nil {
		return err
	}
	return fs.fillTriangle([3]fixed.Point26_6{pm, p[j], p[k]}, [3]*colorstack.Color{cm, c[j], c[k]}, depth+1)
}

func (fs *fillState) fillTriangleConstant(p [3]fixed.Point26_6, c [3]*colorstack.Color) error {
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
	return fs.fillPolygon(avg, p[:]...)
}
