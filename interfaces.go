package meshshade

import (
	"image"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/devcolor"
	"github.com/gogpu/meshshade/raster"
)

// ColorSpace converts paint colors to device colors.
type ColorSpace interface {
	// NumComponents returns the number of paint components.
	NumComponents() int

	// Range returns the domain of component i.
	Range(i int) (lo, hi float64)

	// RestrictColor clamps v to the domain in place.
	RestrictColor(v []float64)

	// RemapColor converts v to a device color with the given layout.
	RemapColor(v []float64, layout devcolor.Layout) (devcolor.Color, error)

	// IsLinear reports whether device colors vary linearly between the
	// paint colors a and b, or over the triangle a, b, c when c is not
	// nil, within tol.
	IsLinear(a, b, c []float64, tol float64) (bool, error)
}

// Function computes paint colors from a shading parameter.
type Function interface {
	// NumOutputs returns the number of color components produced.
	NumOutputs() int

	// Domain returns the parameter range.
	Domain() (lo, hi float64)

	// Evaluate stores the color at t into out.
	Evaluate(t float64, out []float64) error

	// IsMonotonic reports, per output, whether the function is monotonic
	// on [t0, t1]. Bit i of the mask is set when output i is not.
	IsMonotonic(t0, t1 float64) (uint32, error)
}

// Device receives the trapezoids of a fill. FillTrapezoid must not paint
// the trailing boundary of its y range.
type Device interface {
	raster.Filler
	ColorLayout() devcolor.Layout
}

// LinearColorDevice is implemented by devices that interpolate colors
// themselves. Colors are 31-bit fractions per device component, given at
// the trapezoid corners in raster.Trapezoid.Corners order or at the
// triangle vertices.
type LinearColorDevice interface {
	FillLinearColorTrapezoid(t *raster.Trapezoid, c [4][]int32, op raster.Op) (raster.LinearResult, error)
	FillLinearColorTriangle(p [3]fixed.Point26_6, c [3][]int32, op raster.Op) (raster.LinearResult, error)
}

// Halftoner is implemented by devices that halftone. A halftoning device
// never gets linear-color primitives.
type Halftoner interface {
	Halftoned() bool
}

// ShadingAreaHinter is implemented by devices that want the device-space
// box of each patch before it is filled.
type ShadingAreaHinter interface {
	ShadingArea(r raster.Rect)
}

// Bounder is implemented by devices with a fixed drawable area. The area
// is the default clip of a fill.
type Bounder interface {
	Bounds() image.Rectangle
}
