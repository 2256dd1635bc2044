// Package recording provides a device that records the fill commands of a
// mesh shading fill instead of painting pixels.
//
// The recording system captures trapezoid and linear-color fills as typed
// commands that can be inspected, counted, or played back to any backend.
//
// # Architecture
//
// The system follows a Command Pattern with three main components:
//
//   - Recorder: a meshshade device capturing fills as commands
//   - Recording: stores commands and device colors for playback
//   - Backend: a device that can be created by name and played back to
//
// # Basic Usage
//
//	rec := recording.NewRecorder(256, 256, devcolor.RGB8())
//	err := meshshade.FillCoons(sh, src, rec)
//	r := rec.FinishRecording()
//	fmt.Println(len(r.Trapezoids()), r.Area())
//
// # Playback to Backends
//
//	import _ "github.com/gogpu/meshshade/render" // registers "pixmap"
//
//	b, _ := recording.NewBackend("pixmap")
//	r.Playback(b)
//	b.(recording.FileBackend).SaveToFile("output.png")
//
// # Linear Colors
//
// By default the Recorder reports itself as halftoned, so fills never use
// the linear-color path. [WithLinearResult] enables the path and fixes the
// answer the Recorder gives, which lets tests drive every outcome.
//
// # Thread Safety
//
// Recorder and Recording are not safe for concurrent use. The backend
// registry is.
package recording
