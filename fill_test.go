package meshshade

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"io"
	"math"
	"math/rand"
	"strings"
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/colorspace"
	"github.com/gogpu/meshshade/devcolor"
	"github.com/gogpu/meshshade/function"
	"github.com/gogpu/meshshade/internal/colorstack"
	"github.com/gogpu/meshshade/raster"
	"github.com/gogpu/meshshade/recording"
)

// unitSquare returns a Coons patch over [0,1]² with straight edges.
func unitSquare(colors [4][]float64) Patch {
	const a, b = 1.0 / 3, 2.0 / 3
	return Patch{
		Points: []Point{
			{0, 0}, {0, a}, {0, b}, {0, 1},
			{a, 1}, {b, 1}, {1, 1},
			{1, b}, {1, a}, {1, 0},
			{b, 0}, {a, 0},
		},
		Colors: colors,
	}
}

// curvedSquare bulges the bottom edge of the unit square down by 0.225
// and the top edge up by 0.0375 at their middles.
func curvedSquare(colors [4][]float64) Patch {
	p := unitSquare(colors)
	p.Points[4].Y, p.Points[5].Y = 1.05, 1.05
	p.Points[10].Y, p.Points[11].Y = -0.3, -0.3
	return p
}

var (
	red  = []float64{1, 0, 0}
	blue = []float64{0, 0, 1}
)

// redToBlue varies from red at v = 0 to blue at v = 1.
var redToBlue = [4][]float64{red, blue, blue, red}

func rgbShading() *Shading {
	return &Shading{ColorSpace: colorspace.DeviceRGB()}
}

func fillRecorded(t *testing.T, sh *Shading, rec *recording.Recorder, patches []Patch, opts ...Option) (*recording.Recording, FillStats) {
	t.Helper()
	var st FillStats
	opts = append([]Option{WithStats(&st)}, opts...)
	if err := FillCoons(sh, NewSliceSource(patches...), rec, opts...); err != nil {
		t.Fatalf("FillCoons() error = %v", err)
	}
	return rec.FinishRecording(), st
}

func decodeRGB(t *testing.T, r *recording.Recording, ref recording.ColorRef) [3]float64 {
	t.Helper()
	var out [3]float64
	if err := r.Layout().Decode(r.Colors().Get(ref), out[:]); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestFillUniformRect(t *testing.T) {
	rec := recording.NewRecorder(64, 64, devcolor.RGB8())
	r, st := fillRecorded(t, rgbShading(), rec,
		[]Patch{unitSquare([4][]float64{red, red, red, red})},
		WithMatrix(Scale(64, 64)))

	traps := r.Trapezoids()
	if len(traps) != 1 {
		t.Fatalf("trapezoids = %d, want 1", len(traps))
	}
	tz := traps[0].Trapezoid
	if tz.YBottom != 0 || tz.YTop != fixed.I(64) {
		t.Errorf("trapezoid y range = [%v, %v]", tz.YBottom, tz.YTop)
	}
	if got := r.Area(); math.Abs(got-4096) > 1e-6 {
		t.Errorf("area = %v, want 4096", got)
	}
	if c := decodeRGB(t, r, traps[0].Color); c != [3]float64{1, 0, 0} {
		t.Errorf("color = %v, want red", c)
	}
	if st.Patches != 1 || st.Splits != 0 || st.Wedges != 0 {
		t.Errorf("stats = %+v", st)
	}
	if r.Count(recording.CmdShadingArea) != 1 {
		t.Errorf("shading area hints = %d, want 1", r.Count(recording.CmdShadingArea))
	}
}

func TestFillGradientBands(t *testing.T) {
	rec := recording.NewRecorder(64, 64, devcolor.RGB8())
	r, st := fillRecorded(t, rgbShading(), rec,
		[]Patch{unitSquare(redToBlue)},
		WithMatrix(Scale(64, 64)), WithSmoothness(0.3))

	traps := r.Trapezoids()
	if len(traps) != 4 {
		t.Fatalf("trapezoids = %d, want 4", len(traps))
	}
	if st.Splits != 3 {
		t.Errorf("splits = %d, want 3", st.Splits)
	}
	prevR := 2.0
	for i, tc := range traps {
		if tc.Trapezoid.YBottom != fixed.I(16*i) || tc.Trapezoid.YTop != fixed.I(16*(i+1)) {
			t.Errorf("band %d spans [%v, %v]", i, tc.Trapezoid.YBottom, tc.Trapezoid.YTop)
		}
		c := decodeRGB(t, r, tc.Color)
		if c[0] >= prevR {
			t.Errorf("band %d red = %v, not below %v", i, c[0], prevR)
		}
		prevR = c[0]
	}
	if got := r.Area(); math.Abs(got-4096) > 1e-6 {
		t.Errorf("area = %v, want 4096", got)
	}
}

func TestFillTinyPatch(t *testing.T) {
	rec := recording.NewRecorder(8, 8, devcolor.RGB8())
	_, st := fillRecorded(t, rgbShading(), rec,
		[]Patch{unitSquare(redToBlue)},
		WithMatrix(Translate(2, 2).Multiply(Scale(0.2, 0.2))))
	if st.Trapezoids != 1 || st.Splits != 0 {
		t.Errorf("trapezoids = %d, splits = %d, want 1 and 0", st.Trapezoids, st.Splits)
	}
}

func TestFillLinearPath(t *testing.T) {
	tests := []struct {
		name      string
		res       raster.LinearResult
		check     func(FillStats) bool
		constants bool
	}{
		{"filled", raster.LinearFilled, func(s FillStats) bool { return s.LinearFilled == 2 }, false},
		{"decompose", raster.LinearDecompose, func(s FillStats) bool { return s.LinearDecomposed == 2 }, true},
		{"constant", raster.LinearConstant, func(s FillStats) bool { return s.LinearConstant == 2 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recording.NewRecorder(64, 64, devcolor.RGB8(), recording.WithLinearResult(tt.res))
			r, st := fillRecorded(t, rgbShading(), rec,
				[]Patch{unitSquare(redToBlue)},
				WithMatrix(Scale(64, 64)), WithSmoothness(0.3))

			if !tt.check(st) {
				t.Errorf("stats = %+v", st)
			}
			if n := r.Count(recording.CmdFillLinearTrapezoid); n != 2 {
				t.Errorf("linear trapezoids = %d, want 2", n)
			}
			if got := r.Count(recording.CmdFillTrapezoid) > 0; got != tt.constants {
				t.Errorf("constant trapezoids present = %v, want %v", got, tt.constants)
			}
			if st.Splits != 0 {
				t.Errorf("splits = %d, want 0", st.Splits)
			}
		})
	}
}

// pureRGB remaps every color to a packed index regardless of the layout.
type pureRGB struct{ *colorspace.Device }

func (pureRGB) RemapColor(v []float64, _ devcolor.Layout) (devcolor.Color, error) {
	return devcolor.Pure(0), nil
}

// warnCounter counts records at warn level and above.
type warnCounter struct{ n int }

func (h *warnCounter) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelWarn }

func (h *warnCounter) Handle(context.Context, slog.Record) error {
	h.n++
	return nil
}

func (h *warnCounter) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *warnCounter) WithGroup(string) slog.Handler      { return h }

func TestFillLinearWithoutFractionalColors(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	warns := &warnCounter{}
	SetLogger(slog.New(warns))

	rec := recording.NewRecorder(64, 64, devcolor.DevNLayout(devcolor.ModelDevN, 3),
		recording.WithLinearResult(raster.LinearFilled))
	sh := &Shading{ColorSpace: pureRGB{colorspace.DeviceRGB()}}
	r, st := fillRecorded(t, sh, rec, []Patch{unitSquare(redToBlue)},
		WithMatrix(Scale(64, 64)), WithSmoothness(0.3))

	if warns.n != 1 {
		t.Errorf("warnings = %d, want 1", warns.n)
	}
	if n := r.Count(recording.CmdFillLinearTrapezoid); n != 0 {
		t.Errorf("linear trapezoids = %d, want 0", n)
	}
	if st.LinearFilled != 0 || r.Count(recording.CmdFillTrapezoid) == 0 {
		t.Errorf("stats = %+v, constant trapezoids = %d", st, r.Count(recording.CmdFillTrapezoid))
	}
	if got := r.Area(); math.Abs(got-4096) > 1e-3 {
		t.Errorf("area = %v, want 4096", got)
	}
}

func TestFillMonotonicFunction(t *testing.T) {
	fn, err := function.NewExponential(red, blue, 1, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	sh := &Shading{ColorSpace: colorspace.DeviceRGB(), Function: fn}
	rec := recording.NewRecorder(64, 64, devcolor.RGB8())
	_, st := fillRecorded(t, sh, rec,
		[]Patch{unitSquare([4][]float64{{0}, {1}, {1}, {0}})},
		WithMatrix(Scale(64, 64)), WithSmoothness(0.3))

	if st.MonotonicChecks != 1 {
		t.Errorf("monotonic checks = %d, want 1", st.MonotonicChecks)
	}
	if st.Splits != 3 {
		t.Errorf("splits = %d, want 3", st.Splits)
	}
}

func TestFillNonMonotonicFunction(t *testing.T) {
	fn, err := function.NewExponential(red, blue, 2, -1, 1)
	if err != nil {
		t.Fatal(err)
	}
	sh := &Shading{ColorSpace: colorspace.DeviceRGB(), Function: fn}
	rec := recording.NewRecorder(64, 64, devcolor.RGB8())
	r, st := fillRecorded(t, sh, rec,
		[]Patch{unitSquare([4][]float64{{-1}, {1}, {1}, {-1}})},
		WithMatrix(Scale(64, 64)), WithSmoothness(0.3))

	// Patch, whole quadrangle, then each half of the split at t = 0.
	if st.MonotonicChecks != 4 {
		t.Errorf("monotonic checks = %d, want 4", st.MonotonicChecks)
	}
	if st.Splits < 1 {
		t.Errorf("splits = %d, want at least 1", st.Splits)
	}
	if got := r.Area(); math.Abs(got-4096) > 1e-6 {
		t.Errorf("area = %v, want 4096", got)
	}
}

func TestFillCurvedPatch(t *testing.T) {
	// dented pulls the top edge inward: the interior, flattened finer than
	// the top edge, leaves gaps below its chords.
	dented := curvedSquare([4][]float64{red, red, red, red})
	dented.Points[4].Y, dented.Points[5].Y = 0.95, 0.95

	tests := []struct {
		name  string
		patch Patch
		exact float64 // unit area of the curved patch
	}{
		// Bottom bulge 0.15 and top bulge 0.025 of the unit area.
		{"outward", curvedSquare([4][]float64{red, red, red, red}), 1.175},
		{"dented", dented, 1.125},
	}
	m := Translate(16, 16).Multiply(Scale(64, 64))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exact := tt.exact * 4096
			areas := map[bool]float64{}
			for _, lazy := range []bool{true, false} {
				rec := recording.NewRecorder(96, 96, devcolor.RGB8())
				r, st := fillRecorded(t, rgbShading(), rec, []Patch{tt.patch},
					WithMatrix(m), WithLazyWedges(lazy))

				if lazy && st.PeakWedgeNodes == 0 {
					t.Error("lazy fill used no wedge nodes")
				}
				if !lazy && st.PeakWedgeNodes != 0 {
					t.Errorf("immediate fill used %d wedge nodes", st.PeakWedgeNodes)
				}
				a := r.Area()
				if a < exact*0.99 || a > exact*1.03 {
					t.Errorf("lazy=%v: area = %v, want about %v", lazy, a, exact)
				}
				areas[lazy] = a
			}
			if d := math.Abs(areas[true] - areas[false]); d > areas[true]*0.005 {
				t.Errorf("lazy area %v, immediate area %v", areas[true], areas[false])
			}
		})
	}
}

func TestFillImmediateWedgeSides(t *testing.T) {
	m := Translate(16, 16).Multiply(Scale(64, 64))
	fill := func(p Patch) FillStats {
		rec := recording.NewRecorder(96, 96, devcolor.RGB8())
		_, st := fillRecorded(t, rgbShading(), rec, []Patch{p}, WithMatrix(m), WithLazyWedges(false))
		return st
	}

	// The top edge needs 4 segments and the interior uses 8. Bulging out,
	// the interior covers the triangles off the 4-segment chords.
	if st := fill(curvedSquare([4][]float64{red, red, red, red})); st.Wedges != 0 {
		t.Errorf("outward top edge: %d wedges, want 0", st.Wedges)
	}
	dented := curvedSquare([4][]float64{red, red, red, red})
	dented.Points[4].Y, dented.Points[5].Y = 0.95, 0.95
	if st := fill(dented); st.Wedges == 0 {
		t.Error("dented top edge: no wedges filled")
	}
}

func TestFillLowMaxLevel(t *testing.T) {
	rec := recording.NewRecorder(96, 96, devcolor.RGB8())
	_, st := fillRecorded(t, rgbShading(), rec,
		[]Patch{curvedSquare(redToBlue)},
		WithMatrix(Translate(16, 16).Multiply(Scale(64, 64))), WithMaxLevel(1))
	if st.Trapezoids == 0 {
		t.Error("nothing painted")
	}
}

// sharedEdgePatches returns curvedSquare and a patch above it whose bottom
// edge is curvedSquare's top edge.
func sharedEdgePatches() []Patch {
	lower := curvedSquare([4][]float64{red, red, red, red})
	upper := unitSquare([4][]float64{blue, blue, blue, blue})
	for i := range upper.Points {
		upper.Points[i].Y++
	}
	upper.Points[11] = Point{1.0 / 3, 1.05}
	upper.Points[10] = Point{2.0 / 3, 1.05}
	return []Patch{lower, upper}
}

func TestFillSharedEdge(t *testing.T) {
	rec := recording.NewRecorder(96, 160, devcolor.RGB8())
	r, st := fillRecorded(t, rgbShading(), rec, sharedEdgePatches(),
		WithMatrix(Translate(16, 16).Multiply(Scale(64, 64))))
	if st.Patches != 2 {
		t.Errorf("patches = %d, want 2", st.Patches)
	}
	if a := r.Area(); a < 4096*2.15*0.99 {
		t.Errorf("area = %v, want at least %v", a, 4096*2.15*0.99)
	}
}

// coverageDevice counts, per pixel, the trapezoids whose interior holds
// the pixel center, with trailing edges excluded.
type coverageDevice struct {
	w, h int
	hits []int
}

func newCoverageDevice(w, h int) *coverageDevice {
	return &coverageDevice{w: w, h: h, hits: make([]int, w*h)}
}

func (d *coverageDevice) ColorLayout() devcolor.Layout { return devcolor.RGB8() }

func (d *coverageDevice) Bounds() image.Rectangle { return image.Rect(0, 0, d.w, d.h) }

func (d *coverageDevice) FillTrapezoid(t *raster.Trapezoid, _ devcolor.Color, _ raster.Op) error {
	if t.SwapAxes {
		return errors.New("swapped trapezoid")
	}
	center := func(v float64) int { return int(math.Ceil(v - 0.5)) }
	y0 := max(0, center(float64(t.YBottom)/64))
	y1 := min(d.h, center(float64(t.YTop)/64))
	for y := y0; y < y1; y++ {
		yc := fixed.Int26_6(y<<6 + 32)
		x0 := max(0, center(t.Left.XAtFloat(yc)))
		x1 := min(d.w, center(t.Right.XAtFloat(yc)))
		for x := x0; x < x1; x++ {
			d.hits[y*d.w+x]++
		}
	}
	return nil
}

func (d *coverageDevice) count() (painted, twice int) {
	for _, n := range d.hits {
		if n > 0 {
			painted++
		}
		if n > 1 {
			twice++
		}
	}
	return painted, twice
}

func TestFillCoversOnce(t *testing.T) {
	tests := []struct {
		name    string
		patches []Patch
		h       int
		area    float64 // unit area
	}{
		{"curved", []Patch{curvedSquare([4][]float64{red, red, red, red})}, 400, 1.175},
		{"shared edge", sharedEdgePatches(), 660, 2.15},
	}
	m := Translate(64, 64).Multiply(Scale(256, 256))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newCoverageDevice(400, tt.h)
			var st FillStats
			if err := FillCoons(rgbShading(), NewSliceSource(tt.patches...), dev,
				WithMatrix(m), WithStats(&st)); err != nil {
				t.Fatal(err)
			}
			painted, twice := dev.count()
			if twice != 0 {
				t.Errorf("%d pixels painted more than once", twice)
			}
			want := tt.area * 256 * 256
			if math.Abs(float64(painted)-want) > want*0.01 {
				t.Errorf("painted %d pixels, want about %v", painted, want)
			}
		})
	}
}

func TestFillClip(t *testing.T) {
	rec := recording.NewRecorder(64, 64, devcolor.RGB8())
	r, _ := fillRecorded(t, rgbShading(), rec,
		[]Patch{unitSquare([4][]float64{red, red, red, red})},
		WithMatrix(Scale(64, 64)), WithClip(image.Rect(0, 0, 32, 64)))
	if got := r.Area(); math.Abs(got-2048) > 1e-6 {
		t.Errorf("clipped area = %v, want 2048", got)
	}

	rec = recording.NewRecorder(64, 64, devcolor.RGB8())
	r, st := fillRecorded(t, rgbShading(), rec,
		[]Patch{unitSquare([4][]float64{red, red, red, red})},
		WithMatrix(Translate(100, 100)))
	if len(r.Commands()) != 0 || st.Patches != 1 {
		t.Errorf("outside patch: %d commands, %d patches", len(r.Commands()), st.Patches)
	}

	rec = recording.NewRecorder(64, 64, devcolor.RGB8())
	_, st = fillRecorded(t, rgbShading(), rec,
		[]Patch{unitSquare([4][]float64{red, red, red, red})},
		WithClip(image.Rect(70, 0, 80, 10)))
	if st.Patches != 0 {
		t.Errorf("empty clip read %d patches", st.Patches)
	}
}

type errSource struct{ err error }

func (s errSource) NextPatch() (*Patch, error) { return nil, s.err }

func TestFillErrors(t *testing.T) {
	errBoom := errors.New("boom")
	gray, _ := function.NewExponential(nil, nil, 1, 0, 1)
	square := unitSquare([4][]float64{red, red, red, red})
	nan := unitSquare(redToBlue)
	nan.Points[3].X = math.NaN()

	tests := []struct {
		name string
		sh   *Shading
		src  PatchSource
		dev  Device
		opts []Option
		want error
	}{
		{"nil shading", nil, NewSliceSource(square), recording.NewRecorder(64, 64, devcolor.RGB8()), nil, ErrInvalidConfig},
		{"nil source", rgbShading(), nil, recording.NewRecorder(64, 64, devcolor.RGB8()), nil, ErrInvalidConfig},
		{"bad smoothness", rgbShading(), NewSliceSource(square), recording.NewRecorder(64, 64, devcolor.RGB8()), []Option{WithSmoothness(0)}, ErrInvalidConfig},
		{"function outputs", &Shading{ColorSpace: colorspace.DeviceRGB(), Function: gray}, NewSliceSource(square), recording.NewRecorder(64, 64, devcolor.RGB8()), nil, ErrInvalidConfig},
		{"bad layout", rgbShading(), NewSliceSource(square), recording.NewRecorder(64, 64, devcolor.Layout{}), nil, ErrInvalidConfig},
		{"few points", rgbShading(), NewSliceSource(Patch{Points: square.Points[:5], Colors: square.Colors}), recording.NewRecorder(64, 64, devcolor.RGB8()), nil, ErrInvalidPatch},
		{"NaN point", rgbShading(), NewSliceSource(nan), recording.NewRecorder(64, 64, devcolor.RGB8()), nil, ErrInvalidPatch},
		{"short color", rgbShading(), NewSliceSource(unitSquare([4][]float64{red, red, {1}, red})), recording.NewRecorder(64, 64, devcolor.RGB8()), nil, ErrInvalidPatch},
		{"source error", rgbShading(), errSource{errBoom}, recording.NewRecorder(64, 64, devcolor.RGB8()), nil, ErrInvalidPatch},
		{"device error", rgbShading(), NewSliceSource(square), recording.NewRecorder(64, 64, devcolor.RGB8(), recording.WithFailAfter(0, errBoom)), []Option{WithMatrix(Scale(64, 64))}, ErrDeviceFill},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FillCoons(tt.sh, tt.src, tt.dev, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("FillCoons() = %v, want %v", err, tt.want)
			}
			if msg := err.Error(); !strings.HasPrefix(msg, "meshshade: ") || strings.Count(msg, "meshshade:") != 1 {
				t.Errorf("error %q does not carry the package prefix exactly once", msg)
			}
		})
	}

	err := FillCoons(rgbShading(), NewSliceSource(square),
		recording.NewRecorder(64, 64, devcolor.RGB8(), recording.WithFailAfter(0, errBoom)),
		WithMatrix(Scale(64, 64)))
	if !errors.Is(err, errBoom) {
		t.Errorf("device error %v does not wrap the cause", err)
	}
}

func TestFillTensorNeedsSixteenPoints(t *testing.T) {
	err := FillTensor(rgbShading(), NewSliceSource(unitSquare(redToBlue)), recording.NewRecorder(8, 8, devcolor.RGB8()))
	if !errors.Is(err, ErrInvalidPatch) {
		t.Errorf("FillTensor() with 12 points = %v, want ErrInvalidPatch", err)
	}
}

func TestFillFoldedTensorLowMaxLevel(t *testing.T) {
	for _, level := range []int{1, 2, 3, 4} {
		rng := rand.New(rand.NewSource(int64(level)))
		for i := 0; i < 200; i++ {
			p := Patch{Points: make([]Point, 16)}
			for j := range p.Points {
				p.Points[j] = Point{rng.Float64(), rng.Float64()}
			}
			for j := range p.Colors {
				p.Colors[j] = []float64{rng.Float64(), rng.Float64(), rng.Float64()}
			}
			rec := recording.NewRecorder(80, 80, devcolor.RGB8())
			err := FillTensor(rgbShading(), NewSliceSource(p), rec,
				WithMatrix(Translate(8, 8).Multiply(Scale(64, 64))), WithMaxLevel(level))
			if err != nil {
				t.Fatalf("level %d patch %d: %v", level, i, err)
			}
		}
	}
}

func TestFillTensorMatchesCoons(t *testing.T) {
	coons := curvedSquare(redToBlue)
	g := controlGrid(&coons, false)
	tensor := Patch{Points: append([]Point(nil), coons.Points...), Colors: coons.Colors}
	for _, ix := range interiorIndex {
		tensor.Points = append(tensor.Points, g[ix[0]][ix[1]])
	}

	m := Translate(16, 16).Multiply(Scale(64, 64))
	a := recording.NewRecorder(96, 96, devcolor.RGB8())
	if err := FillCoons(rgbShading(), NewSliceSource(coons), a, WithMatrix(m)); err != nil {
		t.Fatal(err)
	}
	b := recording.NewRecorder(96, 96, devcolor.RGB8())
	if err := FillTensor(rgbShading(), NewSliceSource(tensor), b, WithMatrix(m)); err != nil {
		t.Fatal(err)
	}
	ra, rb := a.FinishRecording(), b.FinishRecording()
	if len(ra.Commands()) != len(rb.Commands()) || ra.Area() != rb.Area() {
		t.Errorf("coons: %d commands area %v; tensor: %d commands area %v",
			len(ra.Commands()), ra.Area(), len(rb.Commands()), rb.Area())
	}
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource(unitSquare(redToBlue), unitSquare(redToBlue))
	for i := 0; i < 2; i++ {
		if _, err := src.NextPatch(); err != nil {
			t.Fatalf("patch %d: %v", i, err)
		}
	}
	if _, err := src.NextPatch(); !errors.Is(err, io.EOF) {
		t.Errorf("NextPatch() after end = %v, want io.EOF", err)
	}
	src.Reset()
	if _, err := src.NextPatch(); err != nil {
		t.Errorf("NextPatch() after Reset = %v", err)
	}
}

func TestCoonsInterior(t *testing.T) {
	p := unitSquare(redToBlue)
	g := controlGrid(&p, false)
	for v := 0; v < 4; v++ {
		for u := 0; u < 4; u++ {
			want := Pt(float64(u)/3, float64(v)/3)
			if math.Abs(g[v][u].X-want.X) > 1e-9 || math.Abs(g[v][u].Y-want.Y) > 1e-9 {
				t.Errorf("g[%d][%d] = %v, want %v", v, u, g[v][u], want)
			}
		}
	}
}

func newTestFill(t *testing.T, dev Device, opts ...Option) *fillState {
	t.Helper()
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	fs, err := newFillState(rgbShading(), dev, &o)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(fs.cache.Destroy)
	return fs
}

func rectTrap(x0, y0, x1, y1 int) *raster.Trapezoid {
	return &raster.Trapezoid{
		Left:    raster.VerticalEdge(fixed.I(x0), fixed.I(y0), fixed.I(y1)),
		Right:   raster.VerticalEdge(fixed.I(x1), fixed.I(y0), fixed.I(y1)),
		YBottom: fixed.I(y0),
		YTop:    fixed.I(y1),
	}
}

func TestDecomposeLinearColor(t *testing.T) {
	rec := recording.NewRecorder(8, 64, devcolor.RGB8())
	fs := newTestFill(t, rec, WithSmoothness(0.3))

	fr, err := fs.reserve(4)
	if err != nil {
		t.Fatal(err)
	}
	cc := [4]*colorstack.Color{fr.At(0), fr.At(1), fr.At(2), fr.At(3)}
	copy(cc[0].CC, red)
	copy(cc[1].CC, red)
	copy(cc[2].CC, blue)
	copy(cc[3].CC, blue)
	if err := fs.decomposeLinearColor(rectTrap(0, 0, 8, 64), cc, 0); err != nil {
		t.Fatal(err)
	}
	fr.Release()
	if err := fs.stack.Err(); err != nil {
		t.Fatalf("color stack: %v", err)
	}

	r := rec.FinishRecording()
	traps := r.Trapezoids()
	if len(traps) != 4 {
		t.Fatalf("trapezoids = %d, want 4", len(traps))
	}
	first := decodeRGB(t, r, traps[0].Color)
	last := decodeRGB(t, r, traps[3].Color)
	if !(first[0] > last[0] && first[2] < last[2]) {
		t.Errorf("first band %v, last band %v", first, last)
	}
	if got := r.Area(); math.Abs(got-512) > 1e-6 {
		t.Errorf("area = %v, want 512", got)
	}
}

func TestPickAxis(t *testing.T) {
	fs := newTestFill(t, recording.NewRecorder(8, 8, devcolor.RGB8()))
	big, small := fixed.I(10), fixed.Int26_6(8)
	tests := []struct {
		name   string
		du, dv float64
		su, sv fixed.Int26_6
		want   axis
	}{
		{"color along u", 0.5, 0.1, big, big, axisU},
		{"color along v", 0.1, 0.5, big, big, axisV},
		{"tie wider in u", 0.2, 0.2, big + 1, big, axisU},
		{"tie taller in v", 0.2, 0.2, big, big + 1, axisV},
		{"full tie", 0.2, 0.2, big, big, axisV},
		{"u too short", 0.5, 0.1, small, big, axisV},
		{"v too short", 0.1, 0.5, big, small, axisU},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fs.pickAxis(tt.du, tt.dv, tt.su, tt.sv); got != tt.want {
				t.Errorf("pickAxis() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBarycentricWeights(t *testing.T) {
	p := [3]fixed.Point26_6{fp(0, 0), fp(640, 0), fp(0, 640)}
	bc := newBarycentric(p)
	for i, pt := range p {
		w := bc.weights(pt)
		for j := range w {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(w[j]-want) > 1e-12 {
				t.Errorf("vertex %d weight %d = %v, want %v", i, j, w[j], want)
			}
		}
	}
	flat := newBarycentric([3]fixed.Point26_6{fp(0, 0), fp(64, 0), fp(128, 0)})
	if w := flat.weights(fp(5, 5)); math.Abs(w[0]-1.0/3) > 1e-12 {
		t.Errorf("degenerate weights = %v", w)
	}
}

func TestBended(t *testing.T) {
	var p tensorPatch
	for v := 0; v < 4; v++ {
		for u := 0; u < 4; u++ {
			p.pole[v][u] = fp(64*u, 64*v)
		}
	}
	if p.bended() {
		t.Error("regular grid reported bended")
	}
	p.pole[1][1] = fp(-200, -200)
	if !p.bended() {
		t.Error("folded grid not reported bended")
	}
}
