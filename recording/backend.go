package recording

import (
	"image"
	"io"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/devcolor"
	"github.com/gogpu/meshshade/raster"
)

// Backend is a device that recordings can be played back to and that
// meshshade can fill directly.
//
// Backends are created via the registry using NewBackend(name) and
// registered via Register() in their init() functions.
//
// # Implementation Contract
//
// Each backend must:
//  1. Register in init() using recording.Register()
//  2. Accept Begin before any fill and End after the last one
//  3. Not paint the trailing y boundary of a trapezoid
type Backend interface {
	// Begin initializes the backend for rendering at the given dimensions.
	Begin(width, height int) error

	// End finalizes the rendering and prepares the output.
	End() error

	// FillTrapezoid paints a trapezoid with one device color.
	FillTrapezoid(t *raster.Trapezoid, c devcolor.Color, op raster.Op) error

	// ColorLayout returns the device color layout.
	ColorLayout() devcolor.Layout
}

// LinearBackend extends Backend with linear-color fills.
type LinearBackend interface {
	Backend
	FillLinearColorTrapezoid(t *raster.Trapezoid, c [4][]int32, op raster.Op) (raster.LinearResult, error)
	FillLinearColorTriangle(p [3]fixed.Point26_6, c [3][]int32, op raster.Op) (raster.LinearResult, error)
}

// WriterBackend extends Backend with the ability to write output to an io.Writer.
type WriterBackend interface {
	Backend

	// WriteTo writes the rendered content to the given writer.
	// This should only be called after End().
	WriteTo(w io.Writer) (int64, error)
}

// FileBackend extends Backend with the ability to save output directly to a file.
type FileBackend interface {
	Backend

	// SaveToFile saves the rendered content to a file at the given path.
	// This should only be called after End().
	SaveToFile(path string) error
}

// ImageBackend extends Backend with access to the rendered image.
type ImageBackend interface {
	Backend

	// Image returns the rendered image, or nil before End().
	Image() image.Image
}
