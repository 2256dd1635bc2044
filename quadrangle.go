package meshshade

import (
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/internal/colorstack"
	"github.com/gogpu/meshshade/internal/wedge"
	"github.com/gogpu/meshshade/raster"
)

// quadrangle is a leaf region with straight edges. p and c are indexed
// [v][u]; e holds the bottom, right, top and left edge lists.
type quadrangle struct {
	p [2][2]fixed.Point26_6
	c [2][2]*colorstack.Color
	e [4]wedge.Span
}

func (q *quadrangle) bounds() raster.Rect {
	return raster.Bounds(q.p[0][0], q.p[0][1], q.p[1][0], q.p[1][1])
}

// extent returns the larger coordinate difference between a and b.
func extent(a, b fixed.Point26_6) fixed.Int26_6 {
	return max(abs26(a.X-b.X), abs26(a.Y-b.Y))
}

func abs26(v fixed.Int26_6) fixed.Int26_6 {
	if v < 0 {
		return -v
	}
	return v
}

// spanU returns the geometric size of q along u.
func (q *quadrangle) spanU() fixed.Int26_6 {
	return max(extent(q.p[0][0], q.p[0][1]), extent(q.p[1][0], q.p[1][1]))
}

// spanV returns the geometric size of q along v.
func (q *quadrangle) spanV() fixed.Int26_6 {
	return max(extent(q.p[0][0], q.p[1][0]), extent(q.p[0][1], q.p[1][1]))
}

type axis uint8

const (
	axisV axis = iota
	axisU
)

// colorKind classifies the color change over a quadrangle.
type colorKind uint8

const (
	colorSmall    colorKind = iota // one constant color will do
	colorLinear                    // changes along one axis only
	colorBilinear                  // changes along both axes without twist
	colorGeneral                   // needs splitting
	colorGradient                  // changes along one axis, not known linear
)

type colorChange struct {
	kind   colorKind
	axis   axis
	du, dv float64
}

// fillQuadrangle fills q with constant colors, through the device's
// linear-color path, or by splitting it.
func (fs *fillState) fillQuadrangle(q *quadrangle, depth int) error {
	fs.stats.Quadrangles++
	if !q.bounds().Overlaps(fs.clip) {
		return nil
	}
	su, sv := q.spanU(), q.spanV()
	if su < fs.limit && sv < fs.limit {
		return fs.fillQuadConstant(q)
	}

	if !fs.monotonic {
		mono, err := fs.checkMonotonic(q.c[0][0], q.c[0][1], q.c[1][0], q.c[1][1])
		if err != nil {
			return err
		}
		if mono {
			fs.monotonic = true
			defer func() { fs.monotonic = false }()
		} else if ok, err := fs.trySplit(q, fs.parameterAxis(q, su, sv), depth); ok || err != nil {
			return err
		}
	}
	if fs.monotonic && !fs.linear {
		lin, err := fs.checkLinear(q)
		if err != nil {
			return err
		}
		if lin {
			fs.linear = true
			defer func() { fs.linear = false }()
		}
	}

	cc := fs.colorChange(q, su, sv)
	switch cc.kind {
	case colorSmall:
		return fs.fillQuadConstant(q)
	case colorLinear, colorBilinear:
		if fs.linear && fs.linDev != nil {
			return fs.linearQuad(q)
		}
		if max(cc.du, cc.dv) <= fs.smooth {
			return fs.fillQuadConstant(q)
		}
	}
	if ok, err := fs.trySplit(q, cc.axis, depth); ok || err != nil {
		return err
	}
	return fs.fillQuadConstant(q)
}

// parameterAxis picks the split axis of a quadrangle whose function
// parameter range is not monotonic: the one the parameter changes more
// along.
func (fs *fillState) parameterAxis(q *quadrangle, su, sv fixed.Int26_6) axis {
	t := func(v, u int) float64 { return q.c[v][u].T[0] }
	du := max(abs(t(0, 1)-t(0, 0)), abs(t(1, 1)-t(1, 0)))
	dv := max(abs(t(1, 0)-t(0, 0)), abs(t(1, 1)-t(0, 1)))
	return fs.pickAxis(du, dv, su, sv)
}

// pickAxis chooses the split axis: the larger color change, then the
// larger geometric size, then v. An axis too short to split yields to the
// other one.
func (fs *fillState) pickAxis(du, dv float64, su, sv fixed.Int26_6) axis {
	a := axisV
	switch {
	case du > dv:
		a = axisU
	case dv > du:
		a = axisV
	case su > sv:
		a = axisU
	}
	if a == axisU && su < fs.limit && sv >= fs.limit {
		a = axisV
	} else if a == axisV && sv < fs.limit && su >= fs.limit {
		a = axisU
	}
	return a
}

// colorChange compares the corner colors of q against the smoothness.
func (fs *fillState) colorChange(q *quadrangle, su, sv fixed.Int26_6) colorChange {
	c00, c01, c10, c11 := q.c[0][0], q.c[0][1], q.c[1][0], q.c[1][1]
	du := max(fs.span(c00, c01), fs.span(c10, c11))
	dv := max(fs.span(c00, c10), fs.span(c01, c11))
	r := colorChange{du: du, dv: dv, axis: fs.pickAxis(du, dv, su, sv)}
	s := fs.smooth

	if !fs.linear {
		switch {
		case du <= s && dv <= s && fs.span(c00, c11) <= s && fs.span(c01, c10) <= s:
			r.kind = colorSmall
		case du <= s:
			r.kind, r.axis = colorGradient, axisV
		case dv <= s:
			r.kind, r.axis = colorGradient, axisU
		default:
			r.kind = colorGeneral
		}
		return r
	}

	switch {
	case du <= s/8 && dv <= s/8:
		r.kind = colorSmall
	case du <= s/8 || dv <= s/8:
		r.kind = colorLinear
	case fs.twist(q) <= s:
		r.kind = colorBilinear
	default:
		r.kind = colorGeneral
	}
	return r
}

// twist measures how far q's colors are from a parallelogram.
func (fs *fillState) twist(q *quadrangle) float64 {
	c00, c01, c10, c11 := q.c[0][0].CC, q.c[0][1].CC, q.c[1][0].CC, q.c[1][1].CC
	var d float64
	for i := range c00 {
		d = max(d, abs((c01[i]-c00[i])-(c11[i]-c10[i]))/fs.width[i])
	}
	return d
}

// canSplit reports whether q may be bisected along a.
func (fs *fillState) canSplit(q *quadrangle, a axis, depth int) bool {
	if depth >= fs.maxDepth {
		return false
	}
	if a == axisU {
		if q.spanU() < fs.limit {
			return false
		}
		return !fs.cfg.LazyWedges || fs.arena.CanSplit(q.e[0]) && fs.arena.CanSplit(q.e[2]) && fs.arena.CanCreate()
	}
	if q.spanV() < fs.limit {
		return false
	}
	return !fs.cfg.LazyWedges || fs.arena.CanSplit(q.e[1]) && fs.arena.CanSplit(q.e[3]) && fs.arena.CanCreate()
}

// trySplit bisects q along a and fills both halves. It reports false
// without doing anything when q cannot be split.
func (fs *fillState) trySplit(q *quadrangle, a axis, depth int) (bool, error) {
	if !fs.canSplit(q, a, depth) {
		return false, nil
	}
	return true, fs.splitQuadrangle(q, a, depth)
}

func (fs *fillState) splitQuadrangle(q *quadrangle, a axis, depth int) error {
	fs.stats.Splits++
	fr, err := fs.reserve(2)
	if err != nil {
		return err
	}
	defer fr.Release()
	m0, m1 := fr.At(0), fr.At(1)

	var q0, q1 quadrangle
	if a == axisU {
		// m0 on the bottom edge, m1 on the top edge.
		if err := fs.interpolate(m0, q.c[0][0], q.c[0][1], 0.5); err != nil {
			return err
		}
		if err := fs.interpolate(m1, q.c[1][0], q.c[1][1], 0.5); err != nil {
			return err
		}
		b0, b1, pb, err := fs.median(q.e[0], q.p[0][0], q.p[0][1], midPoint(q.p[0][0], q.p[0][1]),
			sideOf(q.p[0][0], q.p[0][1], q.p[1][0], q.p[1][1]))
		if err != nil {
			return err
		}
		t0, t1, pt, err := fs.median(q.e[2], q.p[1][0], q.p[1][1], midPoint(q.p[1][0], q.p[1][1]),
			sideOf(q.p[1][0], q.p[1][1], q.p[0][0], q.p[0][1]))
		if err != nil {
			return err
		}
		mid, err := fs.createList(pb, pt, raster.Bounds(pb, pt))
		if err != nil {
			return err
		}
		q0 = quadrangle{
			p: [2][2]fixed.Point26_6{{q.p[0][0], pb}, {q.p[1][0], pt}},
			c: [2][2]*colorstack.Color{{q.c[0][0], m0}, {q.c[1][0], m1}},
			e: [4]wedge.Span{b0, mid, t0, q.e[3]},
		}
		q1 = quadrangle{
			p: [2][2]fixed.Point26_6{{pb, q.p[0][1]}, {pt, q.p[1][1]}},
			c: [2][2]*colorstack.Color{{m0, q.c[0][1]}, {m1, q.c[1][1]}},
			e: [4]wedge.Span{b1, q.e[1], t1, mid},
		}
		if err := fs.fillQuadrangle(&q0, depth+1); err != nil {
			return err
		}
		if err := fs.fillQuadrangle(&q1, depth+1); err != nil {
			return err
		}
		return fs.terminate(mid, m0, m1)
	}

	// m0 on the left edge, m1 on the right edge.
	if err := fs.interpolate(m0, q.c[0][0], q.c[1][0], 0.5); err != nil {
		return err
	}
	if err := fs.interpolate(m1, q.c[0][1], q.c[1][1], 0.5); err != nil {
		return err
	}
	l0, l1, pl, err := fs.median(q.e[3], q.p[0][0], q.p[1][0], midPoint(q.p[0][0], q.p[1][0]),
		sideOf(q.p[0][0], q.p[1][0], q.p[0][1], q.p[1][1]))
	if err != nil {
		return err
	}
	r0, r1, pr, err := fs.median(q.e[1], q.p[0][1], q.p[1][1], midPoint(q.p[0][1], q.p[1][1]),
		sideOf(q.p[0][1], q.p[1][1], q.p[0][0], q.p[1][0]))
	if err != nil {
		return err
	}
	mid, err := fs.createList(pl, pr, raster.Bounds(pl, pr))
	if err != nil {
		return err
	}
	q0 = quadrangle{
		p: [2][2]fixed.Point26_6{{q.p[0][0], q.p[0][1]}, {pl, pr}},
		c: [2][2]*colorstack.Color{{q.c[0][0], q.c[0][1]}, {m0, m1}},
		e: [4]wedge.Span{q.e[0], r0, mid, l0},
	}
	q1 = quadrangle{
		p: [2][2]fixed.Point26_6{{pl, pr}, {q.p[1][0], q.p[1][1]}},
		c: [2][2]*colorstack.Color{{m0, m1}, {q.c[1][0], q.c[1][1]}},
		e: [4]wedge.Span{mid, r1, q.e[2], l1},
	}
	if err := fs.fillQuadrangle(&q0, depth+1); err != nil {
		return err
	}
	if err := fs.fillQuadrangle(&q1, depth+1); err != nil {
		return err
	}
	return fs.terminate(mid, m0, m1)
}

// fillQuadConstant paints q with the average of its corner colors.
func (fs *fillState) fillQuadConstant(q *quadrangle) error {
	fr, err := fs.reserve(1)
	if err != nil {
		return err
	}
	defer fr.Release()
	avg := fr.At(0)
	avg.Average(q.c[0][0], q.c[0][1], q.c[1][1], q.c[1][0])
	if err := fs.evaluate(avg); err != nil {
		return err
	}
	return fs.fillPolygon(avg, q.p[0][0], q.p[0][1], q.p[1][1], q.p[1][0])
}
