// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/devcolor"
	"github.com/gogpu/meshshade/raster"
)

func frac8(v float64) uint8 {
	return to8(v / devcolor.FracOne)
}

// FillLinearColorTrapezoid paints a trapezoid with Gouraud shading. The
// colors are interpolated along the left and right edges first, then
// across each scanline. Devices without the linear path ask for a constant
// fill.
func (t *PixmapTarget) FillLinearColorTrapezoid(tz *raster.Trapezoid, c [4][]int32, _ raster.Op) (raster.LinearResult, error) {
	if !t.linear {
		return raster.LinearConstant, nil
	}
	for i := range c {
		if len(c[i]) < 3 {
			return raster.LinearDecompose, nil
		}
	}
	h := float64(tz.Height()) / 64
	if h <= 0 {
		return raster.LinearFilled, nil
	}
	yb := float64(tz.YBottom) / 64
	var left, right [3]float64
	t.scan(tz, func(x, y int, u, v float64) {
		s := (v - yb) / h
		yc := fixed.Int26_6(v * 64)
		xl, xr := tz.Left.XAtFloat(yc), tz.Right.XAtFloat(yc)
		r := 0.0
		if xr > xl {
			r = (u - xl) / (xr - xl)
		}
		for i := 0; i < 3; i++ {
			left[i] = lerp(float64(c[0][i]), float64(c[3][i]), s)
			right[i] = lerp(float64(c[1][i]), float64(c[2][i]), s)
		}
		t.img.SetRGBA(x, y, color.RGBA{
			R: frac8(lerp(left[0], right[0], r)),
			G: frac8(lerp(left[1], right[1], r)),
			B: frac8(lerp(left[2], right[2], r)),
			A: 0xff,
		})
	})
	return raster.LinearFilled, nil
}

// FillLinearColorTriangle paints a triangle with barycentric color
// interpolation at pixel centers.
func (t *PixmapTarget) FillLinearColorTriangle(p [3]fixed.Point26_6, c [3][]int32, _ raster.Op) (raster.LinearResult, error) {
	if !t.linear {
		return raster.LinearConstant, nil
	}
	for i := range c {
		if len(c[i]) < 3 {
			return raster.LinearDecompose, nil
		}
	}
	var x, y [3]float64
	for i := range p {
		x[i], y[i] = float64(p[i].X)/64, float64(p[i].Y)/64
	}
	det := (x[1]-x[0])*(y[2]-y[0]) - (x[2]-x[0])*(y[1]-y[0])
	if det == 0 {
		return raster.LinearFilled, nil
	}
	r := raster.Bounds(p[:]...)
	box := image.Rect(int(r.Min.X>>6), int(r.Min.Y>>6), int((r.Max.X+63)>>6), int((r.Max.Y+63)>>6)).
		Intersect(t.img.Bounds())
	for py := box.Min.Y; py < box.Max.Y; py++ {
		cy := float64(py) + 0.5
		for px := box.Min.X; px < box.Max.X; px++ {
			cx := float64(px) + 0.5
			w1 := ((cx-x[0])*(y[2]-y[0]) - (x[2]-x[0])*(cy-y[0])) / det
			w2 := ((x[1]-x[0])*(cy-y[0]) - (cx-x[0])*(y[1]-y[0])) / det
			w0 := 1 - w1 - w2
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			var rgb [3]uint8
			for i := range rgb {
				rgb[i] = frac8(w0*float64(c[0][i]) + w1*float64(c[1][i]) + w2*float64(c[2][i]))
			}
			t.img.SetRGBA(px, py, color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff})
		}
	}
	return raster.LinearFilled, nil
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
