// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the software device that meshshade fills paint
// into.
//
// # Key Principle
//
// The shading engine only ever hands a device trapezoids, and optionally
// linear-color trapezoids and triangles. [PixmapTarget] implements both on
// an *image.RGBA, so a fill can be inspected pixel by pixel or saved as PNG.
//
// # Devices
//
//   - PixmapTarget: CPU-backed *image.RGBA with packed 8-bit RGB colors
//
// PixmapTarget implements meshshade.Device, meshshade.LinearColorDevice,
// meshshade.Bounder, and the recording backend interfaces. Importing the
// package registers it as the "pixmap" backend.
//
// # Usage
//
// Direct fill:
//
//	target := render.NewPixmapTarget(800, 600)
//	_ = target.Begin(800, 600)
//	err := meshshade.FillTensor(sh, src, target)
//	err = target.SavePNG("out.png")
//
// Playback of a recording:
//
//	backend, _ := recording.NewBackend("pixmap")
//	err := rec.FinishRecording().Playback(backend)
//	err = backend.(recording.FileBackend).SaveToFile("out.png")
//
// # Scan Conversion
//
//	           pixel center sampling (default)
//	                       │
//	     ┌─────────────────┼─────────────────┐
//	     │                                   │
//	     ▼                                   ▼
//	 constant color                  linear color (Gouraud)
//	 FillTrapezoid               FillLinearColorTrapezoid/Triangle
//	     │
//	     ▼
//	 WithAntialias: x/image/vector area coverage
//
// Pixel center sampling paints [YBottom, YTop) and [left, right), so a
// decomposition into abutting trapezoids covers every pixel exactly once.
//
// # Thread Safety
//
// Targets are NOT thread-safe. Each target should be filled from a single
// goroutine, or external synchronization must be used.
package render
