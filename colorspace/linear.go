package colorspace

import (
	"math"

	"github.com/gogpu/meshshade/devcolor"
)

type modelConverter interface {
	NumComponents() int
	toModel(v []float64, to devcolor.Model, out []float64) error
}

// Barycentric sample weights. Segments use the first column pair only.
var (
	segmentSamples = [][2]float64{{0.75, 0.25}, {0.5, 0.5}, {0.25, 0.75}}

	triangleSamples = [][3]float64{
		{1.0 / 3, 1.0 / 3, 1.0 / 3},
		{0.5, 0.5, 0},
		{0, 0.5, 0.5},
		{0.5, 0, 0.5},
		{0.6, 0.2, 0.2},
		{0.2, 0.6, 0.2},
		{0.2, 0.2, 0.6},
	}
)

func remap(s modelConverter, v []float64, layout devcolor.Layout) (devcolor.Color, error) {
	var out [maxModelComponents]float64
	if err := s.toModel(v, layout.Model, out[:]); err != nil {
		return nil, err
	}
	return layout.Encode(out[:modelComponents(layout.Model)]), nil
}

// isLinear compares the converted color at interior samples with the
// interpolation of the converted corners.
func isLinear(s modelConverter, to devcolor.Model, a, b, c []float64, tol float64) (bool, error) {
	n := s.NumComponents()
	m := modelComponents(to)
	var corners [3][maxModelComponents]float64
	verts := [3][]float64{a, b, c}
	nv := 3
	if c == nil {
		nv = 2
	}
	for i := 0; i < nv; i++ {
		if err := s.toModel(verts[i], to, corners[i][:]); err != nil {
			return false, err
		}
	}

	paint := make([]float64, n)
	var exact [maxModelComponents]float64
	check := func(w [3]float64) (bool, error) {
		for j := 0; j < n; j++ {
			paint[j] = 0
			for i := 0; i < nv; i++ {
				paint[j] += w[i] * verts[i][j]
			}
		}
		if err := s.toModel(paint, to, exact[:]); err != nil {
			return false, err
		}
		for j := 0; j < m; j++ {
			var lin float64
			for i := 0; i < nv; i++ {
				lin += w[i] * corners[i][j]
			}
			if math.Abs(lin-exact[j]) > tol {
				return false, nil
			}
		}
		return true, nil
	}

	if nv == 2 {
		for _, w := range segmentSamples {
			if ok, err := check([3]float64{w[0], w[1], 0}); !ok || err != nil {
				return false, err
			}
		}
		return true, nil
	}
	for _, w := range triangleSamples {
		if ok, err := check(w); !ok || err != nil {
			return false, err
		}
	}
	return true, nil
}
