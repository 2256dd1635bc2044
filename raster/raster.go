// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster turns flat-colored device-space polygons into trapezoids
// for scanline fill primitives.
//
// Coordinates are 26.6 fixed point ([fixed.Int26_6]). A [Trapezoid] is
// bounded by two edges over the half-open y range [YBottom, YTop): devices
// must not paint the trailing boundary so that trapezoids sharing a
// boundary never paint the same pixel twice.
//
// The [Emitter] splits triangles and quadrangles into y-bands, resolves
// self-intersecting quadrangles when asked to, optionally transposes flat
// polygons for precision, and clips against a rectangle.
package raster

import (
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/devcolor"
)

// Op is the compositing code passed to fill primitives.
type Op uint8

const (
	// OpCopy replaces the destination.
	OpCopy Op = iota
	// OpOver composites the source over the destination.
	OpOver
)

// LinearResult is the outcome of a linear-color fast path.
type LinearResult uint8

const (
	// LinearFilled means the device painted the primitive.
	LinearFilled LinearResult = iota
	// LinearDecompose asks the caller to decompose the primitive into
	// constant-colored trapezoids using the same colors and geometry.
	LinearDecompose
	// LinearConstant asks the caller to fill the primitive with one
	// constant color.
	LinearConstant
)

// String returns the result name.
func (r LinearResult) String() string {
	switch r {
	case LinearFilled:
		return "Filled"
	case LinearDecompose:
		return "Decompose"
	case LinearConstant:
		return "Constant"
	default:
		return "Unknown"
	}
}

// Filler is the constant-color trapezoid fill primitive.
type Filler interface {
	FillTrapezoid(t *Trapezoid, c devcolor.Color, op Op) error
}

// Rect is a device-space rectangle in fixed point. Max is exclusive.
type Rect struct {
	Min, Max fixed.Point26_6
}

// maxCoord keeps coordinate differences within int32.
const maxCoord = fixed.Int26_6(1 << 29)

// Unbounded returns the largest rectangle the emitter handles.
func Unbounded() Rect {
	return Rect{
		Min: fixed.Point26_6{X: -maxCoord, Y: -maxCoord},
		Max: fixed.Point26_6{X: maxCoord, Y: maxCoord},
	}
}

// RectFromInts builds a rectangle from integer pixel bounds.
func RectFromInts(x0, y0, x1, y1 int) Rect {
	return Rect{
		Min: fixed.P(x0, y0),
		Max: fixed.P(x1, y1),
	}
}

// Empty reports whether r contains no area.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Intersect returns the intersection of r and s.
func (r Rect) Intersect(s Rect) Rect {
	return Rect{
		Min: fixed.Point26_6{X: max(r.Min.X, s.Min.X), Y: max(r.Min.Y, s.Min.Y)},
		Max: fixed.Point26_6{X: min(r.Max.X, s.Max.X), Y: min(r.Max.Y, s.Max.Y)},
	}
}

// Overlaps reports whether r and s share any area.
func (r Rect) Overlaps(s Rect) bool {
	return !r.Intersect(s).Empty()
}

// ContainsRect reports whether s lies entirely inside r.
func (r Rect) ContainsRect(s Rect) bool {
	return s.Min.X >= r.Min.X && s.Min.Y >= r.Min.Y && s.Max.X <= r.Max.X && s.Max.Y <= r.Max.Y
}

// transposed swaps the axes of r.
func (r Rect) transposed() Rect {
	return Rect{
		Min: fixed.Point26_6{X: r.Min.Y, Y: r.Min.X},
		Max: fixed.Point26_6{X: r.Max.Y, Y: r.Max.X},
	}
}

// Bounds returns the bounding box of pts.
func Bounds(pts ...fixed.Point26_6) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}
