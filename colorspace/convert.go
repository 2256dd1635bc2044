// Package colorspace provides the paint color spaces accepted by meshshade
// fills: the device families Gray, RGB and CMYK, and calibrated CIE L*a*b*.
//
// A space converts paint components to the model of the device layout it
// is asked for, then quantizes them with [devcolor.Layout.Encode]. The
// conversions between device models follow the PostScript rules: NTSC
// weights for gray, full black generation and undercolor removal for CMYK.
package colorspace

import (
	"errors"
	"fmt"

	"github.com/gogpu/meshshade/devcolor"
)

var (
	// ErrComponents reports a paint color with the wrong component count.
	ErrComponents = errors.New("colorspace: wrong component count")

	// ErrUnsupportedModel reports a device model a space cannot produce.
	ErrUnsupportedModel = errors.New("colorspace: unsupported device model")
)

// maxModelComponents is the widest device model conversions produce.
const maxModelComponents = 4

func modelComponents(m devcolor.Model) int {
	switch m {
	case devcolor.ModelGray:
		return 1
	case devcolor.ModelRGB:
		return 3
	case devcolor.ModelCMYK, devcolor.ModelDevN:
		return 4
	default:
		return 0
	}
}

// convert maps components of model from to model to. out must hold
// modelComponents(to) values. A DevN target receives the process colorants.
func convert(from devcolor.Model, v []float64, to devcolor.Model, out []float64) error {
	if to == devcolor.ModelDevN {
		to = devcolor.ModelCMYK
	}
	switch from {
	case devcolor.ModelGray:
		g := v[0]
		switch to {
		case devcolor.ModelGray:
			out[0] = g
		case devcolor.ModelRGB:
			out[0], out[1], out[2] = g, g, g
		case devcolor.ModelCMYK:
			out[0], out[1], out[2], out[3] = 0, 0, 0, 1-g
		default:
			return fmt.Errorf("%w: %v", ErrUnsupportedModel, to)
		}
	case devcolor.ModelRGB:
		r, g, b := v[0], v[1], v[2]
		switch to {
		case devcolor.ModelGray:
			out[0] = 0.3*r + 0.59*g + 0.11*b
		case devcolor.ModelRGB:
			out[0], out[1], out[2] = r, g, b
		case devcolor.ModelCMYK:
			c, m, y := 1-r, 1-g, 1-b
			k := min(c, m, y)
			out[0], out[1], out[2], out[3] = c-k, m-k, y-k, k
		default:
			return fmt.Errorf("%w: %v", ErrUnsupportedModel, to)
		}
	case devcolor.ModelCMYK:
		c, m, y, k := v[0], v[1], v[2], v[3]
		switch to {
		case devcolor.ModelGray:
			out[0] = 1 - min(1, 0.3*c+0.59*m+0.11*y+k)
		case devcolor.ModelRGB:
			out[0] = 1 - min(1, c+k)
			out[1] = 1 - min(1, m+k)
			out[2] = 1 - min(1, y+k)
		case devcolor.ModelCMYK:
			out[0], out[1], out[2], out[3] = c, m, y, k
		default:
			return fmt.Errorf("%w: %v", ErrUnsupportedModel, to)
		}
	default:
		return fmt.Errorf("%w: source %v", ErrUnsupportedModel, from)
	}
	return nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
