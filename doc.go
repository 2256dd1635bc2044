// Package meshshade decomposes smooth-shading mesh patches into
// flat-colored trapezoids for scanline devices.
//
// # Overview
//
// Coons patches (12 control points) and tensor-product patches (16 control
// points), as found in PDF shading types 6 and 7, are subdivided until each
// piece is flat enough in device space and its color varies little enough
// to be painted with one device color, or linearly enough for a device
// that interpolates colors itself.
//
// # Quick Start
//
//	sh := &meshshade.Shading{ColorSpace: colorspace.DeviceRGB()}
//	src := meshshade.NewSliceSource(patches...)
//	target := render.NewPixmapTarget(256, 256)
//
//	err := meshshade.FillCoons(sh, src, target,
//	    meshshade.WithMatrix(meshshade.Scale(256, 256)),
//	    meshshade.WithSmoothness(0.01),
//	)
//
// # Architecture
//
// The library is organized into:
//   - Public API: FillCoons, FillTensor, Shading, Patch, Config, Matrix
//   - devcolor: device color representation and layouts
//   - raster: trapezoids, polygon emission, clipping
//   - cache: the per-fill device color cache
//   - colorspace, function: color spaces and shading functions
//   - recording, render: a recording device and a software pixmap device
//
// # Watertightness
//
// Neighboring regions that flatten a shared curve to different depths are
// reconciled by wedges: thin triangles between the two polylines. With
// lazy wedges (the default) both sides record their bisection points in a
// shared list and the difference is filled once the list is complete.
// Patches flatten their boundary curves to a depth computed from the curve
// alone, so adjacent patches of a mesh meet without gaps.
//
// # Coordinate System
//
// Patch points are in shading space and mapped to device space by the
// fill matrix. Device coordinates are 26.6 fixed point internally.
//
// # Concurrency
//
// A fill call is synchronous and owns all its working state. Independent
// fills may run on separate goroutines.
package meshshade
