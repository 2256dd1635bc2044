package colorspace

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/meshshade/devcolor"
)

// White points accepted by NewLab.
var (
	D65 = colorful.D65
	D50 = colorful.D50
)

// Lab is a CIE 1976 L*a*b* space. L* ranges over [0, 100]; a* and b* over
// the ranges given to NewLab. Colors convert through XYZ to sRGB and then
// to the device model.
type Lab struct {
	white  [3]float64
	rng    [4]float64 // amin, amax, bmin, bmax
	target devcolor.Model
}

// NewLab returns a Lab space with the given white point and a*, b* range.
// A zero range selects [-100, 100] for both.
func NewLab(white [3]float64, rng [4]float64) (*Lab, error) {
	if white[1] <= 0 || white[0] <= 0 || white[2] <= 0 {
		return nil, fmt.Errorf("colorspace: invalid white point %v", white)
	}
	if rng == ([4]float64{}) {
		rng = [4]float64{-100, 100, -100, 100}
	}
	if rng[0] > rng[1] || rng[2] > rng[3] {
		return nil, fmt.Errorf("colorspace: invalid Lab range %v", rng)
	}
	return &Lab{white: white, rng: rng, target: devcolor.ModelRGB}, nil
}

// WithTarget returns a copy of l that measures linearity in model m.
func (l *Lab) WithTarget(m devcolor.Model) *Lab {
	c := *l
	c.target = m
	return &c
}

// String returns "Lab".
func (l *Lab) String() string { return "Lab" }

// NumComponents returns 3.
func (l *Lab) NumComponents() int { return 3 }

// Range returns the domain of component i.
func (l *Lab) Range(i int) (lo, hi float64) {
	switch i {
	case 0:
		return 0, 100
	case 1:
		return l.rng[0], l.rng[1]
	default:
		return l.rng[2], l.rng[3]
	}
}

// RestrictColor clamps v to the component ranges.
func (l *Lab) RestrictColor(v []float64) {
	for i := range v {
		lo, hi := l.Range(i)
		v[i] = clamp(v[i], lo, hi)
	}
}

func (l *Lab) toModel(v []float64, to devcolor.Model, out []float64) error {
	if len(v) != 3 {
		return fmt.Errorf("%w: Lab got %d", ErrComponents, len(v))
	}
	// go-colorful scales L* to [0, 1] and a*, b* by the same factor.
	c := colorful.LabWhiteRef(v[0]/100, v[1]/100, v[2]/100, l.white).Clamped()
	rgb := []float64{c.R, c.G, c.B}
	return convert(devcolor.ModelRGB, rgb, to, out)
}

// RemapColor converts v to the model of layout and encodes it.
func (l *Lab) RemapColor(v []float64, layout devcolor.Layout) (devcolor.Color, error) {
	return remap(l, v, layout)
}

// IsLinear samples the conversion into the target model.
func (l *Lab) IsLinear(a, b, c []float64, tol float64) (bool, error) {
	return isLinear(l, l.target, a, b, c, tol)
}
