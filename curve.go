package meshshade

import (
	"math/bits"

	"golang.org/x/image/math/fixed"
)

// curve is a cubic Bezier in device space.
type curve [4]fixed.Point26_6

const (
	// smallChord is the chord length in fixed units below which the
	// flatness tolerance is halved.
	smallChord = 16 * 64

	// maxSmallCoord bounds the control polygon length of a segment so that
	// products of coordinate differences fit in 64 bits.
	maxSmallCoord = 1 << 26
)

// midPoint returns the rounded-down midpoint of a and b. It is symmetric
// in its arguments, so both sides of a shared edge compute the same point.
func midPoint(a, b fixed.Point26_6) fixed.Point26_6 {
	return fixed.Point26_6{
		X: fixed.Int26_6((int64(a.X) + int64(b.X)) >> 1),
		Y: fixed.Int26_6((int64(a.Y) + int64(b.Y)) >> 1),
	}
}

// splitCurve bisects c at t = 1/2 with De Casteljau's construction.
func splitCurve(c curve) (l, r curve) {
	p01, p12, p23 := midPoint(c[0], c[1]), midPoint(c[1], c[2]), midPoint(c[2], c[3])
	p012, p123 := midPoint(p01, p12), midPoint(p12, p23)
	m := midPoint(p012, p123)
	return curve{c[0], p01, p012, m}, curve{m, p123, p23, c[3]}
}

// reversed returns c traversed from its end.
func (c curve) reversed() curve {
	return curve{c[3], c[2], c[1], c[0]}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// ilog2 returns floor(log2(v)), and 0 for v < 2.
func ilog2(v int64) int {
	if v < 2 {
		return 0
	}
	return bits.Len64(uint64(v)) - 1
}

// curveSamples returns the number of segments, a power of two, to flatten
// c within flat. The count is raised so that no segment's control polygon
// exceeds 2^(maxLevel-1) pixels or maxSmallCoord, and capped at
// 2^maxLevel. The result depends on c only up to reversal, so patches
// sharing the curve agree on it.
func curveSamples(c curve, flat fixed.Int26_6, maxLevel int) int {
	x0, x1, x2, x3 := int64(c[0].X), int64(c[1].X), int64(c[2].X), int64(c[3].X)
	y0, y1, y2, y3 := int64(c[0].Y), int64(c[1].Y), int64(c[2].Y), int64(c[3].Y)

	d := max(abs64(x0-2*x1+x2), abs64(x1-2*x2+x3)) +
		max(abs64(y0-2*y1+y2), abs64(y1-2*y2+y3))

	f := max(int64(flat), 1)
	if abs64(x3-x0) < smallChord && abs64(y3-y0) < smallChord {
		f = max(f/2, 1)
	}

	k := 0
	for q := (d - d>>2 + f - 1) / f; q > 1 && k < maxLevel; q = (q + 3) >> 2 {
		k++
	}

	var length int64
	for i := 0; i < 3; i++ {
		length += abs64(int64(c[i+1].X-c[i].X)) + abs64(int64(c[i+1].Y-c[i].Y))
	}
	k = max(k, ilog2(length/(64<<(maxLevel-1))), ilog2(length/maxSmallCoord))
	return 1 << min(k, maxLevel)
}
