package meshshade

import (
	"io"
)

// Shading describes how patch colors become paint colors.
type Shading struct {
	// ColorSpace converts paint colors to device colors. Required.
	ColorSpace ColorSpace

	// Function, when set, maps the single parameter carried by each patch
	// corner to paint colors. Its output count must match the color space.
	Function Function
}

// Patch is one mesh patch record.
//
// Points are given in the PDF order: the 12 boundary points
// p00 p01 p02 p03 p13 p23 p33 p32 p31 p30 p20 p10 counter-clockwise from
// p00, followed for tensor patches by the interior points p11 p12 p22 p21.
// The first index of pij runs along u, the second along v.
//
// Colors belong to the corners p00, p03, p33, p30 in that order. Each holds
// one value per color space component, or a single parameter when the
// shading has a Function.
type Patch struct {
	Points []Point
	Colors [4][]float64
}

// PatchSource yields patches one at a time. NextPatch returns io.EOF after
// the last patch.
type PatchSource interface {
	NextPatch() (*Patch, error)
}

// SliceSource is a PatchSource over an in-memory slice.
type SliceSource struct {
	patches []Patch
	next    int
}

// NewSliceSource returns a source yielding patches in order.
func NewSliceSource(patches ...Patch) *SliceSource {
	return &SliceSource{patches: patches}
}

// NextPatch returns the next patch or io.EOF.
func (s *SliceSource) NextPatch() (*Patch, error) {
	if s.next >= len(s.patches) {
		return nil, io.EOF
	}
	p := &s.patches[s.next]
	s.next++
	return p, nil
}

// Reset rewinds the source.
func (s *SliceSource) Reset() {
	s.next = 0
}

// boundaryIndex maps the PDF boundary point order to [v][u] grid indices.
var boundaryIndex = [12][2]int{
	{0, 0}, {1, 0}, {2, 0}, {3, 0},
	{3, 1}, {3, 2}, {3, 3}, {2, 3},
	{1, 3}, {0, 3}, {0, 2}, {0, 1},
}

// interiorIndex maps p11 p12 p22 p21 to [v][u] grid indices.
var interiorIndex = [4][2]int{
	{1, 1}, {2, 1}, {2, 2}, {1, 2},
}

// cornerIndex maps the patch color order to [v][u] corner indices.
var cornerIndex = [4][2]int{
	{0, 0}, {1, 0}, {1, 1}, {0, 1},
}

// controlGrid assembles the 4x4 shading-space grid of p, indexed [v][u].
// Coons patches get their interior points from the boundary.
func controlGrid(p *Patch, tensor bool) (g [4][4]Point) {
	for i, ix := range boundaryIndex {
		g[ix[0]][ix[1]] = p.Points[i]
	}
	if tensor {
		for i, ix := range interiorIndex {
			g[ix[0]][ix[1]] = p.Points[12+i]
		}
		return g
	}
	coonsInterior(&g)
	return g
}

// coonsInterior fills the four interior points of a Coons patch so that
// the tensor patch describes the same surface.
func coonsInterior(g *[4][4]Point) {
	// P(i, j) is pij: i along u, j along v.
	P := func(i, j int) Point { return g[j][i] }
	// (-4a + 6(b+c) - 2(d+e) + 3(f+h) - k) / 9
	comb := func(a, b, c, d, e, f, h, k Point) Point {
		return a.Mul(-4).
			Add(b.Add(c).Mul(6)).
			Add(d.Add(e).Mul(-2)).
			Add(f.Add(h).Mul(3)).
			Add(k.Mul(-1)).
			Mul(1.0 / 9)
	}
	g[1][1] = comb(P(0, 0), P(0, 1), P(1, 0), P(0, 3), P(3, 0), P(3, 1), P(1, 3), P(3, 3))
	g[2][1] = comb(P(0, 3), P(0, 2), P(1, 3), P(0, 0), P(3, 3), P(3, 2), P(1, 0), P(3, 0))
	g[1][2] = comb(P(3, 0), P(3, 1), P(2, 0), P(3, 3), P(0, 0), P(0, 1), P(2, 3), P(0, 3))
	g[2][2] = comb(P(3, 3), P(3, 2), P(2, 3), P(3, 0), P(0, 3), P(0, 2), P(2, 0), P(0, 0))
}
