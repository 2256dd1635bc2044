package recording

import (
	"image"
	"slices"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/devcolor"
	"github.com/gogpu/meshshade/raster"
)

// Recorder is a device that captures fill calls as commands. Use
// FinishRecording to obtain the Recording.
//
// Example:
//
//	rec := recording.NewRecorder(800, 600, devcolor.RGB8())
//	_ = meshshade.FillTensor(sh, src, rec)
//	recording := rec.FinishRecording()
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	width, height int
	layout        devcolor.Layout
	commands      []Command
	colors        *ColorPool

	linear       bool
	linearResult raster.LinearResult

	failAfter int
	failErr   error
	fills     int
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithLinearResult enables the linear-color path. Every linear fill is
// recorded and answered with res.
func WithLinearResult(res raster.LinearResult) RecorderOption {
	return func(r *Recorder) {
		r.linear = true
		r.linearResult = res
	}
}

// WithFailAfter makes every fill call after the first n fail with err.
func WithFailAfter(n int, err error) RecorderOption {
	return func(r *Recorder) {
		r.failAfter = n
		r.failErr = err
	}
}

// NewRecorder creates a Recorder for a width x height device with the
// given color layout.
func NewRecorder(width, height int, layout devcolor.Layout, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		width:    width,
		height:   height,
		layout:   layout,
		commands: make([]Command, 0, 256),
		colors:   NewColorPool(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FinishRecording returns a Recording containing all recorded commands.
// After calling FinishRecording, the Recorder should not be used again.
func (r *Recorder) FinishRecording() *Recording {
	return &Recording{
		width:    r.width,
		height:   r.height,
		layout:   r.layout,
		commands: r.commands,
		colors:   r.colors,
	}
}

// Width returns the device width.
func (r *Recorder) Width() int {
	return r.width
}

// Height returns the device height.
func (r *Recorder) Height() int {
	return r.height
}

// ColorLayout returns the device color layout.
func (r *Recorder) ColorLayout() devcolor.Layout {
	return r.layout
}

// Bounds returns the device area.
func (r *Recorder) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// Halftoned reports true unless the linear-color path is enabled.
func (r *Recorder) Halftoned() bool {
	return !r.linear
}

// ShadingArea records a patch area hint.
func (r *Recorder) ShadingArea(rect raster.Rect) {
	r.commands = append(r.commands, ShadingAreaCommand{Rect: rect})
}

func (r *Recorder) fail() error {
	r.fills++
	if r.failErr != nil && r.fills > r.failAfter {
		return r.failErr
	}
	return nil
}

// FillTrapezoid records a constant-color trapezoid.
func (r *Recorder) FillTrapezoid(t *raster.Trapezoid, c devcolor.Color, op raster.Op) error {
	if err := r.fail(); err != nil {
		return err
	}
	r.commands = append(r.commands, FillTrapezoidCommand{
		Trapezoid: *t,
		Color:     r.colors.Add(c),
		Op:        op,
	})
	return nil
}

// FillLinearColorTrapezoid records a trapezoid with corner colors.
func (r *Recorder) FillLinearColorTrapezoid(t *raster.Trapezoid, c [4][]int32, op raster.Op) (raster.LinearResult, error) {
	if err := r.fail(); err != nil {
		return raster.LinearDecompose, err
	}
	cmd := FillLinearTrapezoidCommand{Trapezoid: *t, Op: op, Result: r.linearResult}
	for i := range c {
		cmd.Colors[i] = slices.Clone(c[i])
	}
	r.commands = append(r.commands, cmd)
	return r.linearResult, nil
}

// FillLinearColorTriangle records a triangle with vertex colors.
func (r *Recorder) FillLinearColorTriangle(p [3]fixed.Point26_6, c [3][]int32, op raster.Op) (raster.LinearResult, error) {
	if err := r.fail(); err != nil {
		return raster.LinearDecompose, err
	}
	cmd := FillLinearTriangleCommand{Points: p, Op: op, Result: r.linearResult}
	for i := range c {
		cmd.Colors[i] = slices.Clone(c[i])
	}
	r.commands = append(r.commands, cmd)
	return r.linearResult, nil
}

// Recording is the result of a recorded fill.
type Recording struct {
	width, height int
	layout        devcolor.Layout
	commands      []Command
	colors        *ColorPool
}

// Width returns the width of the recording canvas.
func (r *Recording) Width() int {
	return r.width
}

// Height returns the height of the recording canvas.
func (r *Recording) Height() int {
	return r.height
}

// Layout returns the color layout the commands were recorded with.
func (r *Recording) Layout() devcolor.Layout {
	return r.layout
}

// Commands returns the recorded commands.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Colors returns the color pool.
func (r *Recording) Colors() *ColorPool {
	return r.colors
}

// Count returns the number of commands of type t.
func (r *Recording) Count(t CommandType) int {
	n := 0
	for _, c := range r.commands {
		if c.Type() == t {
			n++
		}
	}
	return n
}

// Trapezoids returns the constant-color trapezoid commands in order.
func (r *Recording) Trapezoids() []FillTrapezoidCommand {
	var out []FillTrapezoidCommand
	for _, c := range r.commands {
		if t, ok := c.(FillTrapezoidCommand); ok {
			out = append(out, t)
		}
	}
	return out
}

// Area returns the total area in square pixels of all recorded
// trapezoids and linear triangles.
func (r *Recording) Area() float64 {
	var a float64
	for _, c := range r.commands {
		switch c := c.(type) {
		case FillTrapezoidCommand:
			a += c.Trapezoid.Area()
		case FillLinearTrapezoidCommand:
			a += c.Trapezoid.Area()
		case FillLinearTriangleCommand:
			a += triangleArea(c.Points)
		}
	}
	return a
}

func triangleArea(p [3]fixed.Point26_6) float64 {
	o := float64(raster.Orient(p[0], p[1], p[2])) / (64 * 64 * 2)
	if o < 0 {
		o = -o
	}
	return o
}

// Playback replays the recording to the given backend. Linear-color
// commands go to backends implementing LinearBackend; other backends get
// them as constant fills with the average color.
func (r *Recording) Playback(backend Backend) error {
	if err := backend.Begin(r.width, r.height); err != nil {
		return err
	}
	lin, _ := backend.(LinearBackend)
	em := raster.Emitter{Clip: raster.RectFromInts(0, 0, r.width, r.height)}

	for _, cmd := range r.commands {
		switch c := cmd.(type) {
		case FillTrapezoidCommand:
			t := c.Trapezoid
			if err := backend.FillTrapezoid(&t, r.colors.Get(c.Color), c.Op); err != nil {
				return err
			}
		case FillLinearTrapezoidCommand:
			t := c.Trapezoid
			if lin != nil {
				if _, err := lin.FillLinearColorTrapezoid(&t, c.Colors, c.Op); err != nil {
					return err
				}
				continue
			}
			if err := backend.FillTrapezoid(&t, r.average(c.Colors[:]), c.Op); err != nil {
				return err
			}
		case FillLinearTriangleCommand:
			if lin != nil {
				if _, err := lin.FillLinearColorTriangle(c.Points, c.Colors, c.Op); err != nil {
					return err
				}
				continue
			}
			col := r.average(c.Colors[:])
			err := em.Triangle(c.Points[0], c.Points[1], c.Points[2], func(t *raster.Trapezoid) error {
				return backend.FillTrapezoid(t, col, c.Op)
			})
			if err != nil {
				return err
			}
		case ShadingAreaCommand:
			// Hints carry no paint.
		}
	}
	return backend.End()
}

// average encodes the mean of fractional colors in the recording layout.
func (r *Recording) average(cs [][]int32) devcolor.Color {
	v := make([]float64, r.layout.NumComponents)
	for _, c := range cs {
		for i := range v {
			if i < len(c) {
				v[i] += float64(c[i]) / devcolor.FracOne / float64(len(cs))
			}
		}
	}
	return r.layout.Encode(v)
}
