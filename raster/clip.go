// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"slices"

	"golang.org/x/image/math/fixed"
)

// ClipTrapezoid clips t against clip and passes the surviving pieces to
// fill. t is modified. Trapezoids with SwapAxes set get their right edge
// widened by one fixed unit so that transposed and upright spans meet
// without a seam.
func ClipTrapezoid(t *Trapezoid, clip Rect, fill func(*Trapezoid) error) error {
	return clipTrapezoid(t, clip, fill)
}

func clipTrapezoid(t *Trapezoid, clip Rect, fill func(*Trapezoid) error) error {
	if t.SwapAxes {
		t.Right.Start.X++
		t.Right.End.X++
	}
	ybot, ytop := max(t.YBottom, clip.Min.Y), min(t.YTop, clip.Max.Y)
	if ybot >= ytop {
		return nil
	}
	t.YBottom, t.YTop = ybot, ytop

	lb, lt := t.Left.XAt(ybot), t.Left.XAt(ytop)
	rb, rt := t.Right.XAt(ybot), t.Right.XAt(ytop)
	if lb >= rb && lt >= rt {
		return nil
	}
	if min(lb, lt) >= clip.Min.X && max(rb, rt) <= clip.Max.X {
		return fill(t)
	}
	if min(lb, lt) >= clip.Max.X || max(rb, rt) <= clip.Min.X {
		return nil
	}
	return clipX(t, clip, fill)
}

// clipX splits t at the heights where its edges cross the vertical clip
// lines. Crossing heights are rounded so that the piece with the larger
// coverage grows: for the left edge that is the side where it lies further
// left, for the right edge the side where it lies further right.
func clipX(t *Trapezoid, clip Rect, fill func(*Trapezoid) error) error {
	var cb [6]fixed.Int26_6
	cuts := append(cb[:0], t.YBottom, t.YTop)
	for _, x := range [...]fixed.Int26_6{clip.Min.X, clip.Max.X} {
		if y, ok := crossing(t.Left, x, t.YBottom, t.YTop, t.Left.DX() > 0); ok {
			cuts = append(cuts, y)
		}
		if y, ok := crossing(t.Right, x, t.YBottom, t.YTop, t.Right.DX() < 0); ok {
			cuts = append(cuts, y)
		}
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	for i := 0; i+1 < len(cuts); i++ {
		ya, yb := cuts[i], cuts[i+1]
		ym := ya + (yb-ya)/2
		left, right := t.Left, t.Right
		xl, xr := left.XAt(ym), right.XAt(ym)
		if xl >= clip.Max.X || xr <= clip.Min.X {
			continue
		}
		if xl < clip.Min.X {
			left = VerticalEdge(clip.Min.X, ya, yb)
		}
		if xr > clip.Max.X {
			right = VerticalEdge(clip.Max.X, ya, yb)
		}
		sub := Trapezoid{Left: left, Right: right, YBottom: ya, YTop: yb, SwapAxes: t.SwapAxes}
		if err := fill(&sub); err != nil {
			return err
		}
	}
	return nil
}

// crossing returns the height in (ybot, ytop) where e crosses x.
func crossing(e Edge, x, ybot, ytop fixed.Int26_6, roundUp bool) (fixed.Int26_6, bool) {
	if e.DX() == 0 {
		return 0, false
	}
	xb, xt := e.XAt(ybot), e.XAt(ytop)
	if x <= min(xb, xt) || x >= max(xb, xt) {
		return 0, false
	}
	y := e.yAtX(x, roundUp)
	if y <= ybot || y >= ytop {
		return 0, false
	}
	return y, true
}
