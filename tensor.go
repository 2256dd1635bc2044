package meshshade

import (
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/internal/colorstack"
	"github.com/gogpu/meshshade/internal/wedge"
	"github.com/gogpu/meshshade/raster"
)

// tensorPatch is a device-space tensor-product patch. pole and c are
// indexed [v][u].
type tensorPatch struct {
	pole [4][4]fixed.Point26_6
	c    [2][2]*colorstack.Color
}

func (p *tensorPatch) row(v int) curve {
	return curve(p.pole[v])
}

func (p *tensorPatch) column(u int) curve {
	return curve{p.pole[0][u], p.pole[1][u], p.pole[2][u], p.pole[3][u]}
}

func (p *tensorPatch) bounds() raster.Rect {
	r := raster.Bounds(p.pole[0][:]...)
	for v := 1; v < 4; v++ {
		r = union(r, raster.Bounds(p.pole[v][:]...))
	}
	return r
}

func union(a, b raster.Rect) raster.Rect {
	return raster.Rect{
		Min: fixed.Point26_6{X: min(a.Min.X, b.Min.X), Y: min(a.Min.Y, b.Min.Y)},
		Max: fixed.Point26_6{X: max(a.Max.X, b.Max.X), Y: max(a.Max.Y, b.Max.Y)},
	}
}

// splitV bisects every column, giving the lower half in s0. Colors are
// left for the caller.
func (p *tensorPatch) splitV(s0, s1 *tensorPatch) {
	for u := 0; u < 4; u++ {
		l, r := splitCurve(p.column(u))
		for v := 0; v < 4; v++ {
			s0.pole[v][u] = l[v]
			s1.pole[v][u] = r[v]
		}
	}
}

// splitU bisects every row, giving the left half in s0.
func (p *tensorPatch) splitU(s0, s1 *tensorPatch) {
	for v := 0; v < 4; v++ {
		l, r := splitCurve(p.row(v))
		s0.pole[v] = l
		s1.pole[v] = r
	}
}

// narrowV reports whether every column fits in a limit-sized box.
func (p *tensorPatch) narrowV(limit fixed.Int26_6) bool {
	for u := 0; u < 4; u++ {
		c := p.column(u)
		b := raster.Bounds(c[:]...)
		if b.Max.X-b.Min.X > limit || b.Max.Y-b.Min.Y > limit {
			return false
		}
	}
	return true
}

// bended reports whether the control grid folds: its cells do not all
// turn the same way.
func (p *tensorPatch) bended() bool {
	var pos, neg bool
	for v := 0; v < 3; v++ {
		for u := 0; u < 3; u++ {
			o0 := raster.Orient(p.pole[v][u], p.pole[v][u+1], p.pole[v+1][u])
			o1 := raster.Orient(p.pole[v+1][u+1], p.pole[v+1][u], p.pole[v][u+1])
			for _, o := range [2]int64{o0, o1} {
				switch {
				case o > 0:
					pos = true
				case o < 0:
					neg = true
				}
			}
			if pos && neg {
				return true
			}
		}
	}
	return false
}

// tiny reports whether the patch fits in a limit-sized box.
func (p *tensorPatch) tiny(limit fixed.Int26_6) bool {
	b := p.bounds()
	return b.Max.X-b.Min.X < limit && b.Max.Y-b.Min.Y < limit
}

// quadrangle returns the corner quadrangle of p with edges e.
func (p *tensorPatch) quadrangle(e [4]wedge.Span) quadrangle {
	return quadrangle{
		p: [2][2]fixed.Point26_6{
			{p.pole[0][0], p.pole[0][3]},
			{p.pole[3][0], p.pole[3][3]},
		},
		c: p.c,
		e: e,
	}
}

// vDone reports whether decomposeV should stop and fill p as a stripe.
func (fs *fillState) vDone(p *tensorPatch, kv int, e [4]wedge.Span, depth int) bool {
	if depth >= fs.maxDepth || p.tiny(fs.limit) {
		return true
	}
	if !fs.cfg.LazyWedges {
		// Boundary wedges were filled against exactly kv segments.
		return kv <= 1
	}
	if !fs.arena.CanSplit(e[1]) || !fs.arena.CanSplit(e[3]) || !fs.arena.CanCreate() {
		return true
	}
	return kv <= 1 && (p.narrowV(fs.limit) || !p.bended())
}

// decomposeV bisects p along v until its columns are flat. kv is the
// remaining column sample count, ku the row sample count for immediate
// wedge mode. e holds the bottom, right, top and left edge lists.
func (fs *fillState) decomposeV(p *tensorPatch, kv, ku int, e [4]wedge.Span, depth int) error {
	if fs.vDone(p, kv, e, depth) {
		return fs.fillStripe(p, ku, e, depth)
	}

	fr, err := fs.reserve(2)
	if err != nil {
		return err
	}
	defer fr.Release()
	m0, m1 := fr.At(0), fr.At(1)
	if err := fs.interpolate(m0, p.c[0][0], p.c[1][0], 0.5); err != nil {
		return err
	}
	if err := fs.interpolate(m1, p.c[0][1], p.c[1][1], 0.5); err != nil {
		return err
	}

	var s0, s1 tensorPatch
	p.splitV(&s0, &s1)
	s0.c = [2][2]*colorstack.Color{{p.c[0][0], p.c[0][1]}, {m0, m1}}
	s1.c = [2][2]*colorstack.Color{{m0, m1}, {p.c[1][0], p.c[1][1]}}

	l0, l1, pt, err := fs.median(e[3], p.pole[0][0], p.pole[3][0], s0.pole[3][0],
		sideOf(p.pole[0][0], p.pole[3][0], p.pole[0][3], p.pole[3][3]))
	if err != nil {
		return err
	}
	s0.pole[3][0], s1.pole[0][0] = pt, pt
	r0, r1, pt, err := fs.median(e[1], p.pole[0][3], p.pole[3][3], s0.pole[3][3],
		sideOf(p.pole[0][3], p.pole[3][3], p.pole[0][0], p.pole[3][0]))
	if err != nil {
		return err
	}
	s0.pole[3][3], s1.pole[0][3] = pt, pt

	mid, err := fs.createList(s0.pole[3][0], s0.pole[3][3], raster.Bounds(s0.pole[3][:]...))
	if err != nil {
		return err
	}
	if err := fs.decomposeV(&s0, kv/2, ku, [4]wedge.Span{e[0], r0, mid, l0}, depth+1); err != nil {
		return err
	}
	if err := fs.decomposeV(&s1, kv/2, ku, [4]wedge.Span{mid, r1, e[2], l1}, depth+1); err != nil {
		return err
	}
	return fs.terminate(mid, m0, m1)
}

// fillStripe fills a patch whose columns are flat. With lazy wedges the
// row sample count is recomputed for the stripe; otherwise the patch
// count is kept so that every stripe flattens its rows alike.
func (fs *fillState) fillStripe(p *tensorPatch, ku int, e [4]wedge.Span, depth int) error {
	if fs.cfg.LazyWedges {
		ku = max(curveSamples(p.row(0), fs.flat, fs.cfg.MaxLevel),
			curveSamples(p.row(3), fs.flat, fs.cfg.MaxLevel))
	}
	return fs.decomposeU(p, ku, e, depth)
}

// decomposeU bisects a stripe along u until its rows are flat, then
// fills the remaining quadrangles.
func (fs *fillState) decomposeU(p *tensorPatch, ku int, e [4]wedge.Span, depth int) error {
	done := ku <= 1 || depth >= fs.maxDepth ||
		fs.cfg.LazyWedges && (!fs.arena.CanSplit(e[0]) || !fs.arena.CanSplit(e[2]) || !fs.arena.CanCreate())
	if done {
		q := p.quadrangle(e)
		return fs.fillQuadrangle(&q, depth)
	}

	fr, err := fs.reserve(2)
	if err != nil {
		return err
	}
	defer fr.Release()
	cb, ct := fr.At(0), fr.At(1)
	if err := fs.interpolate(cb, p.c[0][0], p.c[0][1], 0.5); err != nil {
		return err
	}
	if err := fs.interpolate(ct, p.c[1][0], p.c[1][1], 0.5); err != nil {
		return err
	}

	var s0, s1 tensorPatch
	p.splitU(&s0, &s1)
	s0.c = [2][2]*colorstack.Color{{p.c[0][0], cb}, {p.c[1][0], ct}}
	s1.c = [2][2]*colorstack.Color{{cb, p.c[0][1]}, {ct, p.c[1][1]}}

	b0, b1, pt, err := fs.median(e[0], p.pole[0][0], p.pole[0][3], s0.pole[0][3],
		sideOf(p.pole[0][0], p.pole[0][3], p.pole[3][0], p.pole[3][3]))
	if err != nil {
		return err
	}
	s0.pole[0][3], s1.pole[0][0] = pt, pt
	t0, t1, pt, err := fs.median(e[2], p.pole[3][0], p.pole[3][3], s0.pole[3][3],
		sideOf(p.pole[3][0], p.pole[3][3], p.pole[0][0], p.pole[0][3]))
	if err != nil {
		return err
	}
	s0.pole[3][3], s1.pole[3][0] = pt, pt

	col := s0.column(3)
	mid, err := fs.createList(col[0], col[3], raster.Bounds(col[:]...))
	if err != nil {
		return err
	}
	if err := fs.decomposeU(&s0, ku/2, [4]wedge.Span{b0, mid, t0, e[3]}, depth+1); err != nil {
		return err
	}
	if err := fs.decomposeU(&s1, ku/2, [4]wedge.Span{b1, e[1], t1, mid}, depth+1); err != nil {
		return err
	}
	return fs.terminate(mid, cb, ct)
}
