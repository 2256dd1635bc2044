// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/meshshade/devcolor"
	"github.com/gogpu/meshshade/raster"
	"github.com/gogpu/meshshade/recording"
)

func init() {
	recording.Register("pixmap", func() recording.Backend {
		return NewPixmapTarget(0, 0)
	})
}

// PixmapTarget is a CPU-backed fill device using *image.RGBA.
//
// Constant trapezoids are scan-converted by pixel center: a pixel is
// painted when its center lies in [YBottom, YTop) and between the edges,
// left inclusive. Abutting trapezoids therefore never paint a pixel twice
// and never leave one unpainted.
//
// Example:
//
//	target := render.NewPixmapTarget(800, 600)
//	err := meshshade.FillCoons(sh, src, target)
//	err = target.SavePNG("out.png")
type PixmapTarget struct {
	img       *image.RGBA
	layout    devcolor.Layout
	antialias bool
	linear    bool
	ras       vector.Rasterizer
	buf       [3]float64
}

// TargetOption configures a PixmapTarget.
type TargetOption func(*PixmapTarget)

// WithAntialias rasterizes constant trapezoids with x/image/vector area
// coverage instead of pixel-center sampling. Shared edges then blend.
func WithAntialias(on bool) TargetOption {
	return func(t *PixmapTarget) {
		t.antialias = on
	}
}

// WithLinearColor enables the linear-color fast path.
func WithLinearColor(on bool) TargetOption {
	return func(t *PixmapTarget) {
		t.linear = on
	}
}

// NewPixmapTarget creates a new CPU-backed target. The linear-color path is
// on by default.
func NewPixmapTarget(width, height int, opts ...TargetOption) *PixmapTarget {
	t := &PixmapTarget{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		layout: devcolor.RGB8(),
		linear: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewPixmapTargetFromImage wraps an existing *image.RGBA as a target.
// The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.RGBA, opts ...TargetOption) *PixmapTarget {
	t := NewPixmapTarget(0, 0, opts...)
	t.img = img
	return t
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int {
	return t.img.Bounds().Dy()
}

// Bounds returns the drawable area.
func (t *PixmapTarget) Bounds() image.Rectangle {
	return t.img.Bounds()
}

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// ColorLayout returns the packed 8-bit RGB layout.
func (t *PixmapTarget) ColorLayout() devcolor.Layout {
	return t.layout
}

// Halftoned reports false when the linear-color path is enabled.
func (t *PixmapTarget) Halftoned() bool {
	return !t.linear
}

// Pixels returns direct access to the pixel data.
func (t *PixmapTarget) Pixels() []byte {
	return t.img.Pix
}

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int {
	return t.img.Stride
}

// RGBA returns the underlying *image.RGBA.
// The returned image shares memory with the target.
func (t *PixmapTarget) RGBA() *image.RGBA {
	return t.img
}

// Image returns the underlying image.
func (t *PixmapTarget) Image() image.Image {
	return t.img
}

// Clear fills the entire target with the given color.
func (t *PixmapTarget) Clear(c color.Color) {
	draw.Draw(t.img, t.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Begin resizes the target when needed and clears it to opaque white.
func (t *PixmapTarget) Begin(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("render: invalid size %dx%d", width, height)
	}
	if t.Width() != width || t.Height() != height {
		t.img = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	t.Clear(color.White)
	return nil
}

// End does nothing; the image is complete after the last fill.
func (t *PixmapTarget) End() error {
	return nil
}

func (t *PixmapTarget) rgba(c devcolor.Color) (color.RGBA, error) {
	if err := t.layout.Decode(c, t.buf[:]); err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: to8(t.buf[0]), G: to8(t.buf[1]), B: to8(t.buf[2]), A: 0xff}, nil
}

func to8(v float64) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

// FillTrapezoid paints a trapezoid with a constant color.
func (t *PixmapTarget) FillTrapezoid(tz *raster.Trapezoid, c devcolor.Color, _ raster.Op) error {
	col, err := t.rgba(c)
	if err != nil {
		return err
	}
	if t.antialias {
		t.fillCoverage(tz, col)
		return nil
	}
	t.scan(tz, func(x, y int, _, _ float64) {
		t.img.SetRGBA(x, y, col)
	})
	return nil
}

// scan calls pix for every pixel whose center lies inside tz, in device
// coordinates, with the center's position along the scanline and across
// scanlines in trapezoid space.
func (t *PixmapTarget) scan(tz *raster.Trapezoid, pix func(x, y int, u, v float64)) {
	b := t.img.Bounds()
	lo, hi := b.Min.Y, b.Max.Y
	xlo, xhi := b.Min.X, b.Max.X
	if tz.SwapAxes {
		lo, hi, xlo, xhi = b.Min.X, b.Max.X, b.Min.Y, b.Max.Y
	}
	// Rows whose center k+0.5 lies in [YBottom, YTop).
	k0 := max(lo, int((tz.YBottom-32+63)>>6))
	k1 := min(hi, int((tz.YTop-32+63)>>6))
	for k := k0; k < k1; k++ {
		yc := fixed.Int26_6(k<<6 + 32)
		xl := tz.Left.XAtFloat(yc)
		xr := tz.Right.XAtFloat(yc)
		j0 := max(xlo, ceilCenter(xl))
		j1 := min(xhi, ceilCenter(xr))
		for j := j0; j < j1; j++ {
			if tz.SwapAxes {
				pix(k, j, float64(j)+0.5, float64(k)+0.5)
			} else {
				pix(j, k, float64(j)+0.5, float64(k)+0.5)
			}
		}
	}
}

// ceilCenter returns the first pixel index whose center is at or after x.
func ceilCenter(x float64) int {
	return int(math.Ceil(x - 0.5))
}

func (t *PixmapTarget) fillCoverage(tz *raster.Trapezoid, col color.RGBA) {
	pts := tz.DeviceCorners()
	box := image.Rect(
		int(min(pts[0].X, pts[1].X, pts[2].X, pts[3].X)>>6),
		int(min(pts[0].Y, pts[1].Y, pts[2].Y, pts[3].Y)>>6),
		int((max(pts[0].X, pts[1].X, pts[2].X, pts[3].X)+63)>>6),
		int((max(pts[0].Y, pts[1].Y, pts[2].Y, pts[3].Y)+63)>>6),
	).Intersect(t.img.Bounds())
	if box.Empty() {
		return
	}
	t.ras.Reset(box.Dx(), box.Dy())
	// Src would clear the uncovered part of box; colors are opaque, so
	// Over copies where coverage is full for both ops.
	t.ras.DrawOp = draw.Over
	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	for i, p := range pts {
		x, y := float32(p.X)/64-ox, float32(p.Y)/64-oy
		if i == 0 {
			t.ras.MoveTo(x, y)
		} else {
			t.ras.LineTo(x, y)
		}
	}
	t.ras.ClosePath()
	t.ras.Draw(t.img, box, image.NewUniform(col), image.Point{})
}

// SavePNG saves the target to a PNG file.
func (t *PixmapTarget) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, t.img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SaveToFile implements recording.FileBackend.
func (t *PixmapTarget) SaveToFile(path string) error {
	return t.SavePNG(path)
}

// WriteTo encodes the target as PNG.
func (t *PixmapTarget) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := png.Encode(cw, t.img)
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

var (
	_ recording.LinearBackend = (*PixmapTarget)(nil)
	_ recording.FileBackend   = (*PixmapTarget)(nil)
	_ recording.WriterBackend = (*PixmapTarget)(nil)
	_ recording.ImageBackend  = (*PixmapTarget)(nil)
)
