// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "golang.org/x/image/math/fixed"

// Edge is a trapezoid side. Start.Y <= End.Y.
type Edge struct {
	Start, End fixed.Point26_6
}

// NewEdge creates an edge between a and b, ordered by y.
func NewEdge(a, b fixed.Point26_6) Edge {
	if a.Y > b.Y {
		a, b = b, a
	}
	return Edge{Start: a, End: b}
}

// VerticalEdge returns an edge at x spanning [y0, y1].
func VerticalEdge(x, y0, y1 fixed.Int26_6) Edge {
	return Edge{
		Start: fixed.Point26_6{X: x, Y: y0},
		End:   fixed.Point26_6{X: x, Y: y1},
	}
}

// Horizontal reports whether the edge has no y extent.
func (e Edge) Horizontal() bool {
	return e.Start.Y == e.End.Y
}

// DX returns the x delta from Start to End.
func (e Edge) DX() fixed.Int26_6 {
	return e.End.X - e.Start.X
}

// DY returns the y delta from Start to End.
func (e Edge) DY() fixed.Int26_6 {
	return e.End.Y - e.Start.Y
}

// XAt returns the x coordinate at y, rounded down.
func (e Edge) XAt(y fixed.Int26_6) fixed.Int26_6 {
	dy := int64(e.End.Y - e.Start.Y)
	if dy == 0 {
		return e.Start.X
	}
	num := int64(y-e.Start.Y) * int64(e.End.X-e.Start.X)
	return e.Start.X + fixed.Int26_6(floorDiv(num, dy))
}

// XAtFloat returns the unrounded x coordinate at y in pixels.
func (e Edge) XAtFloat(y fixed.Int26_6) float64 {
	dy := float64(e.End.Y - e.Start.Y)
	if dy == 0 {
		return toFloat(e.Start.X)
	}
	t := float64(y-e.Start.Y) / dy
	return toFloat(e.Start.X) + t*toFloat(e.End.X-e.Start.X)
}

// yAtX returns the y coordinate where the edge crosses x, rounded up or
// down. The edge must not be vertical.
func (e Edge) yAtX(x fixed.Int26_6, roundUp bool) fixed.Int26_6 {
	num := int64(x-e.Start.X) * int64(e.End.Y-e.Start.Y)
	den := int64(e.End.X - e.Start.X)
	if den < 0 {
		num, den = -num, -den
	}
	if roundUp {
		return e.Start.Y + fixed.Int26_6(ceilDiv(num, den))
	}
	return e.Start.Y + fixed.Int26_6(floorDiv(num, den))
}

// Cross returns the cross product of two fixed-point vectors in 64 bits.
// Deltas must stay below 2^31 in magnitude; the emitter keeps coordinates
// within ±2^29 so the difference of the two products cannot overflow.
func Cross(a, b fixed.Point26_6) int64 {
	return int64(a.X)*int64(b.Y) - int64(a.Y)*int64(b.X)
}

// Orient returns the sign of the turn a→b→c: positive for one winding,
// negative for the other, zero when collinear.
func Orient(a, b, c fixed.Point26_6) int64 {
	return Cross(b.Sub(a), c.Sub(a))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
