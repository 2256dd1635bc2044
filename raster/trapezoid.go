// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "golang.org/x/image/math/fixed"

// Trapezoid is the fundamental fill primitive: the region between Left and
// Right over [YBottom, YTop). When SwapAxes is set the coordinates are
// transposed and the device scan-converts along x instead of y.
type Trapezoid struct {
	Left, Right   Edge
	YBottom, YTop fixed.Int26_6
	SwapAxes      bool
}

// Height returns YTop - YBottom.
func (t *Trapezoid) Height() fixed.Int26_6 {
	return t.YTop - t.YBottom
}

// Corners returns the four corners in trapezoid space:
// left-bottom, right-bottom, right-top, left-top.
func (t *Trapezoid) Corners() [4]fixed.Point26_6 {
	return [4]fixed.Point26_6{
		{X: t.Left.XAt(t.YBottom), Y: t.YBottom},
		{X: t.Right.XAt(t.YBottom), Y: t.YBottom},
		{X: t.Right.XAt(t.YTop), Y: t.YTop},
		{X: t.Left.XAt(t.YTop), Y: t.YTop},
	}
}

// DeviceCorners returns Corners with the axes restored to device space.
func (t *Trapezoid) DeviceCorners() [4]fixed.Point26_6 {
	c := t.Corners()
	if t.SwapAxes {
		for i := range c {
			c[i].X, c[i].Y = c[i].Y, c[i].X
		}
	}
	return c
}

// Area returns the area in square pixels, computed from the unrounded
// edge positions.
func (t *Trapezoid) Area() float64 {
	h := toFloat(t.YTop - t.YBottom)
	wb := t.Right.XAtFloat(t.YBottom) - t.Left.XAtFloat(t.YBottom)
	wt := t.Right.XAtFloat(t.YTop) - t.Left.XAtFloat(t.YTop)
	return h * (wb + wt) / 2
}
