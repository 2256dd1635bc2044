package meshshade

import (
	"math"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/raster"
)

// Point is a point in shading space.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Mul returns the point scaled by s.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Lerp interpolates between p and q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// finite reports whether both coordinates are finite.
func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// maxDeviceCoord is the coordinate range accepted by the raster package.
var maxDeviceCoord = float64(raster.Unbounded().Max.X)

// toFixed converts a device-space point to 26.6 fixed point, clamping to
// the range the emitter handles.
func toFixed(p Point) fixed.Point26_6 {
	return fixed.Point26_6{X: toFixed1(p.X), Y: toFixed1(p.Y)}
}

func toFixed1(v float64) fixed.Int26_6 {
	f := math.Round(v * 64)
	f = math.Max(-maxDeviceCoord, math.Min(maxDeviceCoord, f))
	return fixed.Int26_6(f)
}
