package colorspace

import (
	"fmt"

	"github.com/gogpu/meshshade/devcolor"
)

// Device is a device-dependent color space: DeviceGray, DeviceRGB or
// DeviceCMYK. Components range over [0, 1].
//
// The target model is the device model IsLinear measures linearity in. It
// defaults to the space's own model; use WithTarget when the fill device
// has a different one.
type Device struct {
	model  devcolor.Model
	target devcolor.Model
}

// DeviceGray returns the one-component gray space.
func DeviceGray() *Device {
	return &Device{model: devcolor.ModelGray, target: devcolor.ModelGray}
}

// DeviceRGB returns the three-component additive space.
func DeviceRGB() *Device {
	return &Device{model: devcolor.ModelRGB, target: devcolor.ModelRGB}
}

// DeviceCMYK returns the four-component subtractive space.
func DeviceCMYK() *Device {
	return &Device{model: devcolor.ModelCMYK, target: devcolor.ModelCMYK}
}

// WithTarget returns a copy of d that measures linearity in model m.
func (d *Device) WithTarget(m devcolor.Model) *Device {
	c := *d
	c.target = m
	return &c
}

// Model returns the paint color model.
func (d *Device) Model() devcolor.Model { return d.model }

// String returns the PDF family name.
func (d *Device) String() string {
	return "Device" + d.model.String()
}

// NumComponents returns 1, 3 or 4.
func (d *Device) NumComponents() int {
	return modelComponents(d.model)
}

// Range returns [0, 1] for every component.
func (d *Device) Range(int) (lo, hi float64) {
	return 0, 1
}

// RestrictColor clamps v to [0, 1].
func (d *Device) RestrictColor(v []float64) {
	for i := range v {
		v[i] = clamp(v[i], 0, 1)
	}
}

func (d *Device) toModel(v []float64, to devcolor.Model, out []float64) error {
	if len(v) != d.NumComponents() {
		return fmt.Errorf("%w: %s got %d", ErrComponents, d, len(v))
	}
	return convert(d.model, v, to, out)
}

// RemapColor converts v to the model of layout and encodes it.
func (d *Device) RemapColor(v []float64, layout devcolor.Layout) (devcolor.Color, error) {
	return remap(d, v, layout)
}

// IsLinear samples the conversion into the target model between a and b,
// or over the triangle a, b, c.
func (d *Device) IsLinear(a, b, c []float64, tol float64) (bool, error) {
	if d.model == d.target || d.model == devcolor.ModelGray {
		// Identity and gray expansion are affine.
		return true, nil
	}
	return isLinear(d, d.target, a, b, c, tol)
}
