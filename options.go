package meshshade

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/meshshade/internal/wedge"
	"github.com/gogpu/meshshade/raster"
)

// Config holds the tolerances and feature switches of a fill. The zero
// value is not usable; start from DefaultConfig.
type Config struct {
	// Smoothness is the largest color difference, as a fraction of each
	// component's range, painted with one constant color.
	Smoothness float64 `toml:"smoothness" yaml:"smoothness"`

	// Flatness is the largest deviation in device pixels between a curve
	// and its polyline.
	Flatness float64 `toml:"flatness" yaml:"flatness"`

	// DecompositionLimit is the device size in pixels below which regions
	// are no longer subdivided.
	DecompositionLimit float64 `toml:"decomposition_limit" yaml:"decomposition_limit"`

	// MaxLevel bounds the subdivision depth along any edge and sizes the
	// wedge arena.
	MaxLevel int `toml:"max_level" yaml:"max_level"`

	// SelfIntersecting resolves quadrangles whose opposite edges cross.
	SelfIntersecting bool `toml:"self_intersecting" yaml:"self_intersecting"`

	// SwapAxesForPrecision rasterizes flat, wide trapezoids transposed.
	SwapAxesForPrecision bool `toml:"swap_axes" yaml:"swap_axes"`

	// LazyWedges defers wedge filling until both sides of an edge have
	// been subdivided. When false, wedges are filled right away against
	// each curve's own flattening.
	LazyWedges bool `toml:"lazy_wedges" yaml:"lazy_wedges"`
}

// DefaultConfig returns the default fill configuration.
func DefaultConfig() Config {
	return Config{
		Smoothness:         0.02,
		Flatness:           0.25,
		DecompositionLimit: 1,
		MaxLevel:           9,
		LazyWedges:         true,
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case !(c.Smoothness > 0 && c.Smoothness <= 1):
		return fmt.Errorf("%w: smoothness %v not in (0, 1]", ErrInvalidConfig, c.Smoothness)
	case !(c.Flatness > 0) || math.IsInf(c.Flatness, 0):
		return fmt.Errorf("%w: flatness %v", ErrInvalidConfig, c.Flatness)
	case !(c.DecompositionLimit >= 1.0/64) || math.IsInf(c.DecompositionLimit, 0):
		return fmt.Errorf("%w: decomposition limit %v below one fixed unit", ErrInvalidConfig, c.DecompositionLimit)
	case c.MaxLevel < 1 || c.MaxLevel > wedge.MaxLevelLimit:
		return fmt.Errorf("%w: max level %d not in [1, %d]", ErrInvalidConfig, c.MaxLevel, wedge.MaxLevelLimit)
	}
	return nil
}

// Option configures a fill call.
//
// Example:
//
//	err := meshshade.FillCoons(sh, src, dev,
//	    meshshade.WithMatrix(meshshade.Scale(2, 2)),
//	    meshshade.WithSmoothness(0.01),
//	)
type Option func(*fillOptions)

// fillOptions holds the configuration of one fill call.
type fillOptions struct {
	cfg    Config
	clip   *image.Rectangle
	matrix Matrix
	op     raster.Op
	stats  *FillStats
}

// defaultOptions returns the default fill options.
func defaultOptions() fillOptions {
	return fillOptions{
		cfg:    DefaultConfig(),
		matrix: Identity(),
		op:     raster.OpCopy,
	}
}

// WithConfig replaces the whole configuration. Options after it still
// apply.
func WithConfig(c Config) Option {
	return func(o *fillOptions) {
		o.cfg = c
	}
}

// WithSmoothness sets the color tolerance.
func WithSmoothness(s float64) Option {
	return func(o *fillOptions) {
		o.cfg.Smoothness = s
	}
}

// WithFlatness sets the curve flattening tolerance in device pixels.
func WithFlatness(px float64) Option {
	return func(o *fillOptions) {
		o.cfg.Flatness = px
	}
}

// WithDecompositionLimit sets the smallest subdivided size in pixels.
func WithDecompositionLimit(px float64) Option {
	return func(o *fillOptions) {
		o.cfg.DecompositionLimit = px
	}
}

// WithMaxLevel sets the subdivision depth limit.
func WithMaxLevel(n int) Option {
	return func(o *fillOptions) {
		o.cfg.MaxLevel = n
	}
}

// WithSelfIntersecting enables self-intersecting quadrangle handling.
func WithSelfIntersecting(on bool) Option {
	return func(o *fillOptions) {
		o.cfg.SelfIntersecting = on
	}
}

// WithSwapAxes enables transposed rasterization of flat trapezoids.
func WithSwapAxes(on bool) Option {
	return func(o *fillOptions) {
		o.cfg.SwapAxesForPrecision = on
	}
}

// WithLazyWedges selects deferred (true) or immediate wedge filling.
func WithLazyWedges(on bool) Option {
	return func(o *fillOptions) {
		o.cfg.LazyWedges = on
	}
}

// WithClip restricts the fill to r in device pixels. It is intersected
// with the device bounds when the device implements Bounder.
func WithClip(r image.Rectangle) Option {
	return func(o *fillOptions) {
		o.clip = &r
	}
}

// WithMatrix sets the shading space to device space transform.
func WithMatrix(m Matrix) Option {
	return func(o *fillOptions) {
		o.matrix = m
	}
}

// WithOp sets the compositing code passed to the device.
func WithOp(op raster.Op) Option {
	return func(o *fillOptions) {
		o.op = op
	}
}

// WithStats makes the fill store its counters in s when it returns.
func WithStats(s *FillStats) Option {
	return func(o *fillOptions) {
		o.stats = s
	}
}
