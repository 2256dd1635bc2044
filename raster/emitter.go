// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"math"
	"slices"

	"golang.org/x/image/math/fixed"
)

// swapRatio is the width/height ratio above which SwapAxes transposes a
// polygon so that the long side is scan-converted along y.
const swapRatio = 4

// Emitter decomposes triangles and quadrangles into clipped trapezoids.
// The zero Clip means unbounded.
//
// The fill callback receives a pointer that is only valid during the call.
type Emitter struct {
	// Clip is the device clip rectangle.
	Clip Rect

	// SelfIntersecting enables crossing detection for quadrangles whose
	// opposite edges intersect.
	SelfIntersecting bool

	// SwapAxes transposes polygons much wider than tall.
	SwapAxes bool
}

// Triangle emits the trapezoids covering triangle abc.
// Collinear triangles produce nothing.
func (em *Emitter) Triangle(a, b, c fixed.Point26_6, fill func(*Trapezoid) error) error {
	if Orient(a, b, c) == 0 {
		return nil
	}
	pts := [3]fixed.Point26_6{a, b, c}
	return em.polygon(pts[:], fill)
}

// Quadrangle emits the trapezoids covering the quadrangle p0 p1 p2 p3,
// given in cyclic order. Quadrangles of zero area produce nothing.
func (em *Emitter) Quadrangle(p0, p1, p2, p3 fixed.Point26_6, fill func(*Trapezoid) error) error {
	if Orient(p0, p1, p2) == 0 && Orient(p0, p2, p3) == 0 {
		return nil
	}
	pts := [4]fixed.Point26_6{p0, p1, p2, p3}
	return em.polygon(pts[:], fill)
}

func (em *Emitter) clipRect() Rect {
	if em.Clip == (Rect{}) {
		return Unbounded()
	}
	return em.Clip
}

func (em *Emitter) polygon(pts []fixed.Point26_6, fill func(*Trapezoid) error) error {
	clip := em.clipRect()
	bounds := Bounds(pts...)
	if bounds.Max.X < clip.Min.X || bounds.Min.X > clip.Max.X ||
		bounds.Max.Y <= clip.Min.Y || bounds.Min.Y >= clip.Max.Y {
		return nil
	}

	var local [4]fixed.Point26_6
	n := copy(local[:], pts)

	swap := false
	if em.SwapAxes {
		dx := int64(bounds.Max.X - bounds.Min.X)
		dy := int64(bounds.Max.Y - bounds.Min.Y)
		swap = dy*swapRatio < dx
	}
	if swap {
		for i := 0; i < n; i++ {
			local[i].X, local[i].Y = local[i].Y, local[i].X
		}
		clip = clip.transposed()
	}

	var yb [6]fixed.Int26_6
	ny := 0
	for i := 0; i < n; i++ {
		yb[ny] = local[i].Y
		ny++
	}
	if em.SelfIntersecting && n == 4 {
		if y, ok := crossingY(local[0], local[1], local[2], local[3]); ok {
			yb[ny] = y
			ny++
		}
		if y, ok := crossingY(local[1], local[2], local[3], local[0]); ok {
			yb[ny] = y
			ny++
		}
	}
	ys := yb[:ny]
	slices.Sort(ys)
	ys = slices.Compact(ys)

	var edges [4]Edge
	for b := 0; b+1 < len(ys); b++ {
		y0, y1 := ys[b], ys[b+1]
		ne := 0
		for i := 0; i < n; i++ {
			p, q := local[i], local[(i+1)%n]
			if p.Y == q.Y {
				continue
			}
			e := NewEdge(p, q)
			if e.Start.Y <= y0 && e.End.Y >= y1 {
				edges[ne] = e
				ne++
			}
		}
		sortEdges(edges[:ne], y0, y1)
		for k := 0; k+1 < ne; k += 2 {
			t := Trapezoid{
				Left:     edges[k],
				Right:    edges[k+1],
				YBottom:  y0,
				YTop:     y1,
				SwapAxes: swap,
			}
			if err := clipTrapezoid(&t, clip, fill); err != nil {
				return err
			}
		}
	}
	return nil
}

// sortEdges orders the edges active in [y0, y1] by x at the band middle.
// Ties are broken by x at the band ends, then by slope through a cross
// product of the edge directions.
func sortEdges(edges []Edge, y0, y1 fixed.Int26_6) {
	ym := y0 + (y1-y0)/2
	less := func(a, b Edge) bool {
		for _, y := range [...]fixed.Int26_6{ym, y0, y1} {
			if xa, xb := a.XAt(y), b.XAt(y); xa != xb {
				return xa < xb
			}
		}
		// Both edges point towards larger y; a has the smaller dx/dy.
		return Cross(a.End.Sub(a.Start), b.End.Sub(b.Start)) < 0
	}
	for i := 1; i < len(edges); i++ {
		e := edges[i]
		j := i - 1
		for j >= 0 && less(e, edges[j]) {
			edges[j+1] = edges[j]
			j--
		}
		edges[j+1] = e
	}
}

// crossingY returns the y of the proper intersection of segments p0p1 and
// q0q1, solving the 2x2 system in floating point.
func crossingY(p0, p1, q0, q1 fixed.Point26_6) (fixed.Int26_6, bool) {
	rx, ry := float64(p1.X-p0.X), float64(p1.Y-p0.Y)
	sx, sy := float64(q1.X-q0.X), float64(q1.Y-q0.Y)
	den := rx*sy - ry*sx
	if den == 0 {
		return 0, false
	}
	wx, wy := float64(q0.X-p0.X), float64(q0.Y-p0.Y)
	s := (wx*sy - wy*sx) / den
	u := (wx*ry - wy*rx) / den
	if s <= 0 || s >= 1 || u <= 0 || u >= 1 {
		return 0, false
	}
	return p0.Y + fixed.Int26_6(math.Round(s*ry)), true
}
