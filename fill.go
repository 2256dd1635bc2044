package meshshade

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/cache"
	"github.com/gogpu/meshshade/devcolor"
	"github.com/gogpu/meshshade/internal/colorstack"
	"github.com/gogpu/meshshade/internal/wedge"
	"github.com/gogpu/meshshade/raster"
)

const (
	// colorStackCapacity bounds the paint colors live at once. The deepest
	// recursion reserves two per level.
	colorStackCapacity = 1024

	// maxTriangleDepth and maxLinearDepth bound the bisection of wedge
	// triangles and of trapezoids declined by a linear-color device.
	maxTriangleDepth = 32
	maxLinearDepth   = 32
)

// FillCoons fills the Coons patches read from src. Each patch carries 12
// points; see Patch for the ordering.
//
// Errors wrap one of the package error categories. The fill stops at the
// first error; trapezoids already sent to dev stay painted.
func FillCoons(sh *Shading, src PatchSource, dev Device, opts ...Option) error {
	return fill(sh, src, dev, false, opts)
}

// FillTensor fills the tensor-product patches read from src. Each patch
// carries 16 points.
func FillTensor(sh *Shading, src PatchSource, dev Device, opts ...Option) error {
	return fill(sh, src, dev, true, opts)
}

// fillState is the working state of one fill call.
type fillState struct {
	cfg    Config
	cs     ColorSpace
	fn     Function
	dev    Device
	linDev LinearColorDevice
	hinter ShadingAreaHinter
	layout devcolor.Layout
	op     raster.Op
	matrix Matrix
	clip   raster.Rect
	em     raster.Emitter

	cache *cache.Cache
	arena *wedge.Arena
	stack *colorstack.Stack

	width    []float64 // component range widths
	smooth   float64
	flat     fixed.Int26_6
	limit    fixed.Int26_6
	maxDepth int

	// monotonic and linear hold for the subtree being filled. A frame that
	// establishes one resets it on return.
	monotonic bool
	linear    bool

	fillColor devcolor.Color
	fillTrap  func(*raster.Trapezoid) error

	vertexFrac [3][]int32
	cornerFrac [4][]int32
	warned     bool

	stats FillStats
}

func fill(sh *Shading, src PatchSource, dev Device, tensor bool, opts []Option) (err error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return err
	}
	if sh == nil || sh.ColorSpace == nil {
		return fmt.Errorf("%w: shading without color space", ErrInvalidConfig)
	}
	if src == nil || dev == nil {
		return fmt.Errorf("%w: nil patch source or device", ErrInvalidConfig)
	}

	fs, err := newFillState(sh, dev, &o)
	if err != nil {
		return err
	}
	defer func() {
		fs.finish(o.stats)
		fs.cache.Destroy()
	}()

	if fs.clip.Empty() {
		return nil
	}
	for {
		p, err := src.NextPatch()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: patch %d: %w", ErrInvalidPatch, fs.stats.Patches, err)
		}
		if err := fs.fillPatch(p, tensor); err != nil {
			return err
		}
		if n := fs.arena.InUse(); n != 0 {
			return fmt.Errorf("%w: %d wedge nodes left after patch %d", ErrInternal, n, fs.stats.Patches)
		}
	}
	if err := fs.stack.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return nil
}

func newFillState(sh *Shading, dev Device, o *fillOptions) (*fillState, error) {
	cs := sh.ColorSpace
	n := cs.NumComponents()
	if n <= 0 || n > devcolor.MaxComponents {
		return nil, fmt.Errorf("%w: %d color components", ErrInvalidConfig, n)
	}
	if fn := sh.Function; fn != nil {
		if fn.NumOutputs() != n {
			return nil, fmt.Errorf("%w: function has %d outputs, color space %d components",
				ErrInvalidConfig, fn.NumOutputs(), n)
		}
		if lo, hi := fn.Domain(); !(lo <= hi) {
			return nil, fmt.Errorf("%w: function domain [%v, %v]", ErrInvalidConfig, lo, hi)
		}
	}
	layout := dev.ColorLayout()
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	fs := &fillState{
		cfg:      o.cfg,
		cs:       cs,
		fn:       sh.Function,
		dev:      dev,
		layout:   layout,
		op:       o.op,
		matrix:   o.matrix,
		smooth:   o.cfg.Smoothness,
		flat:     fixed.Int26_6(max(1, math.Round(o.cfg.Flatness*64))),
		limit:    fixed.Int26_6(max(1, math.Round(o.cfg.DecompositionLimit*64))),
		maxDepth: 8 * o.cfg.MaxLevel,
	}
	if ld, ok := dev.(LinearColorDevice); ok {
		if h, ok := dev.(Halftoner); !ok || !h.Halftoned() {
			fs.linDev = ld
		}
	}
	fs.hinter, _ = dev.(ShadingAreaHinter)

	var err error
	if fs.cache, err = cache.New(cs, dev, nil, fs.linDev != nil); err != nil {
		return nil, fmt.Errorf("%w: color cache: %w", ErrAllocation, err)
	}
	if fs.arena, err = wedge.NewArena(o.cfg.MaxLevel); err != nil {
		return nil, fmt.Errorf("%w: wedge arena: %w", ErrAllocation, err)
	}
	if fs.stack, err = colorstack.New(n, colorStackCapacity); err != nil {
		return nil, fmt.Errorf("%w: color stack: %w", ErrAllocation, err)
	}

	fs.clip = raster.Unbounded()
	if o.clip != nil {
		fs.clip = fs.clip.Intersect(rectFromImage(*o.clip))
	}
	if b, ok := dev.(Bounder); ok {
		fs.clip = fs.clip.Intersect(rectFromImage(b.Bounds()))
	}
	fs.em = raster.Emitter{
		Clip:             fs.clip,
		SelfIntersecting: o.cfg.SelfIntersecting,
		SwapAxes:         o.cfg.SwapAxesForPrecision,
	}

	fs.width = make([]float64, n)
	for i := range fs.width {
		lo, hi := cs.Range(i)
		if w := hi - lo; w > 0 && !math.IsInf(w, 0) {
			fs.width[i] = w
		} else {
			fs.width[i] = 1
		}
	}
	for i := range fs.vertexFrac {
		fs.vertexFrac[i] = make([]int32, layout.NumComponents)
	}
	for i := range fs.cornerFrac {
		fs.cornerFrac[i] = make([]int32, layout.NumComponents)
	}
	fs.fillTrap = fs.fillConstantTrapezoid
	fs.monotonic = fs.fn == nil
	return fs, nil
}

// finish logs the fill summary and publishes the counters.
func (fs *fillState) finish(dst *FillStats) {
	fs.stats.Cache = fs.cache.Stats()
	fs.stats.PeakWedgeNodes = fs.arena.Peak()
	slogger().Debug("meshshade: fill done", "stats", fs.stats)
	if dst != nil {
		*dst = fs.stats
	}
}

func rectFromImage(r image.Rectangle) raster.Rect {
	return raster.RectFromInts(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// fillPatch converts p to a device-space tensor patch and fills it.
func (fs *fillState) fillPatch(p *Patch, tensor bool) error {
	need := 12
	if tensor {
		need = 16
	}
	if len(p.Points) < need {
		return fmt.Errorf("%w: patch %d: %d points, want %d", ErrInvalidPatch, fs.stats.Patches, len(p.Points), need)
	}
	for _, pt := range p.Points[:need] {
		if !pt.finite() {
			return fmt.Errorf("%w: patch %d: point %v", ErrInvalidPatch, fs.stats.Patches, pt)
		}
	}

	g := controlGrid(p, tensor)
	var tp tensorPatch
	for v := range g {
		for u := range g[v] {
			d := fs.matrix.TransformPoint(g[v][u])
			if !d.finite() {
				return fmt.Errorf("%w: patch %d: device point %v", ErrInvalidPatch, fs.stats.Patches, d)
			}
			tp.pole[v][u] = toFixed(d)
		}
	}

	fr, err := fs.reserve(4)
	if err != nil {
		return err
	}
	defer fr.Release()
	for k, ix := range cornerIndex {
		c := fr.At(k)
		if err := fs.cornerColor(p.Colors[k], k, c); err != nil {
			return err
		}
		tp.c[ix[0]][ix[1]] = c
	}

	fs.stats.Patches++
	bounds := tp.bounds()
	if !bounds.Overlaps(fs.clip) {
		return nil
	}
	if fs.hinter != nil {
		fs.hinter.ShadingArea(bounds.Intersect(fs.clip))
	}
	return fs.fillTensorPatch(&tp)
}

// cornerColor sets c from the color record of corner k, evaluating the
// shading function when there is one, and clamps it to the color space.
func (fs *fillState) cornerColor(vals []float64, k int, c *colorstack.Color) error {
	c.T = [2]float64{}
	if fs.fn != nil {
		if len(vals) < 1 || math.IsNaN(vals[0]) {
			return fmt.Errorf("%w: patch %d corner %d: missing function parameter", ErrInvalidPatch, fs.stats.Patches, k)
		}
		lo, hi := fs.fn.Domain()
		c.T[0] = math.Max(lo, math.Min(hi, vals[0]))
		if err := fs.fn.Evaluate(c.T[0], c.CC); err != nil {
			return fmt.Errorf("%w: patch %d corner %d: evaluate function: %w", ErrColorConversion, fs.stats.Patches, k, err)
		}
	} else {
		if len(vals) != len(c.CC) {
			return fmt.Errorf("%w: patch %d corner %d: %d color components, want %d",
				ErrInvalidPatch, fs.stats.Patches, k, len(vals), len(c.CC))
		}
		copy(c.CC, vals)
	}
	fs.cs.RestrictColor(c.CC)
	return nil
}

// fillTensorPatch samples the boundary curves, sets up the boundary wedge
// handling and decomposes the patch.
func (fs *fillState) fillTensorPatch(p *tensorPatch) error {
	defer func() {
		fs.monotonic = fs.fn == nil
		fs.linear = false
	}()
	if fs.fn != nil {
		mono, err := fs.checkMonotonic(p.c[0][0], p.c[0][1], p.c[1][0], p.c[1][1])
		if err != nil {
			return err
		}
		fs.monotonic = mono
	}

	boundary := [4]curve{p.row(0), p.column(3), p.row(3), p.column(0)}
	var k [4]int
	for i, c := range boundary {
		k[i] = curveSamples(c, fs.flat, fs.cfg.MaxLevel)
	}
	ku, kv := max(k[0], k[2]), max(k[1], k[3])
	// Endpoint colors of each boundary, in list direction.
	ends := [4][2]*colorstack.Color{
		{p.c[0][0], p.c[0][1]},
		{p.c[0][1], p.c[1][1]},
		{p.c[1][0], p.c[1][1]},
		{p.c[0][0], p.c[1][0]},
	}

	// Side of each boundary the patch lies on.
	sides := [4]int{
		sideOf(p.pole[0][0], p.pole[0][3], p.pole[3][0], p.pole[3][3]),
		sideOf(p.pole[0][3], p.pole[3][3], p.pole[0][0], p.pole[3][0]),
		sideOf(p.pole[3][0], p.pole[3][3], p.pole[0][0], p.pole[0][3]),
		sideOf(p.pole[0][0], p.pole[3][0], p.pole[0][3], p.pole[3][3]),
	}

	var e [4]wedge.Span
	if fs.cfg.LazyWedges {
		for i, c := range boundary {
			s, err := fs.createList(c[0], c[3], raster.Bounds(c[:]...))
			if err != nil {
				return err
			}
			if err := fs.prefill(s, c, k[i], -sides[i]); err != nil {
				return err
			}
			// Neighbors sharing c agree on the prefilled polyline only.
			s.Sealed = true
			e[i] = s
		}
	} else {
		km := [4]int{ku, kv, ku, kv}
		for i, c := range boundary {
			if err := fs.fillWedges(c, k[i], km[i], sides[i], ends[i][0], ends[i][1]); err != nil {
				return err
			}
		}
	}

	if err := fs.decomposeV(p, kv, ku, e, 0); err != nil {
		return err
	}
	for i, s := range e {
		if err := fs.terminate(s, ends[i][0], ends[i][1]); err != nil {
			return err
		}
	}
	return nil
}
