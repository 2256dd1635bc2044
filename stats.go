package meshshade

import (
	"log/slog"

	"github.com/gogpu/meshshade/cache"
)

// FillStats counts the work done by one fill call.
type FillStats struct {
	Patches     int
	Quadrangles int // leaf quadrangles reached
	Splits      int // quadrangle splits
	Trapezoids  int // constant-color trapezoids sent to the device
	Wedges      int // wedges filled

	MonotonicChecks int
	LinearityChecks int

	// Outcomes of the linear-color fast path.
	LinearFilled     int
	LinearDecomposed int
	LinearConstant   int

	Cache          cache.Stats
	PeakWedgeNodes int
}

// LogValue implements slog.LogValuer.
func (s FillStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("patches", s.Patches),
		slog.Int("quadrangles", s.Quadrangles),
		slog.Int("splits", s.Splits),
		slog.Int("trapezoids", s.Trapezoids),
		slog.Int("wedges", s.Wedges),
		slog.Int("linear_filled", s.LinearFilled),
		slog.Int("cache_hits", s.Cache.Hits),
		slog.Int("cache_misses", s.Cache.Misses),
		slog.Int("cache_evictions", s.Cache.Evictions),
		slog.Int("peak_wedge_nodes", s.PeakWedgeNodes),
	)
}
