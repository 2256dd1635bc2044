// Package devcolor defines the device color representation shared by the
// shading engine, the device color cache, and device implementations.
//
// A device color is either a packed index ([Pure]) laid out according to a
// [Layout], or explicit per-component values ([DevN]). The two variants form
// a closed sum type: [Color] cannot be implemented outside this package.
package devcolor

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotPureOrDevN reports a color that is neither a packed index nor a
// per-component value. It is a soft signal: callers switch strategy
// (for example skip a linear-color fast path) instead of aborting.
var ErrNotPureOrDevN = errors.New("devcolor: color is neither pure nor devn")

// ErrInvalidLayout is returned by Layout.Validate.
var ErrInvalidLayout = errors.New("devcolor: invalid layout")

// FracOne is the 31-bit fixed-point representation of 1.0 used for
// fractional device components.
const FracOne = math.MaxInt32

// MaxComponents bounds the number of device components in a layout.
const MaxComponents = 32

// Color is a device color. Implemented by Pure and DevN only.
type Color interface {
	deviceColor()
}

// Pure is a packed device color index.
type Pure uint64

// DevN holds one 16-bit value per device component.
type DevN []uint16

func (Pure) deviceColor() {}
func (DevN) deviceColor() {}

// Model identifies the device color model.
type Model uint8

const (
	// ModelGray is a single additive component.
	ModelGray Model = iota
	// ModelRGB is three additive components.
	ModelRGB
	// ModelCMYK is four subtractive components.
	ModelCMYK
	// ModelDevN is an arbitrary set of subtractive colorants.
	ModelDevN
)

// String returns the model name.
func (m Model) String() string {
	switch m {
	case ModelGray:
		return "Gray"
	case ModelRGB:
		return "RGB"
	case ModelCMYK:
		return "CMYK"
	case ModelDevN:
		return "DevN"
	default:
		return "Unknown"
	}
}

// Layout describes how a device encodes its colors.
type Layout struct {
	Model         Model
	NumComponents int

	// Bits is the per-component depth of a packed index.
	Bits []uint8

	// Shifts is the per-component bit offset of a packed index.
	Shifts []uint8

	// Packed selects Pure encoding. When false, Encode produces DevN.
	Packed bool
}

// Gray8 returns an 8-bit packed gray layout.
func Gray8() Layout {
	return Layout{Model: ModelGray, NumComponents: 1, Bits: []uint8{8}, Shifts: []uint8{0}, Packed: true}
}

// RGB8 returns a 24-bit packed layout with red in the high byte.
func RGB8() Layout {
	return Layout{
		Model:         ModelRGB,
		NumComponents: 3,
		Bits:          []uint8{8, 8, 8},
		Shifts:        []uint8{16, 8, 0},
		Packed:        true,
	}
}

// CMYK8 returns a 32-bit packed layout with cyan in the high byte.
func CMYK8() Layout {
	return Layout{
		Model:         ModelCMYK,
		NumComponents: 4,
		Bits:          []uint8{8, 8, 8, 8},
		Shifts:        []uint8{24, 16, 8, 0},
		Packed:        true,
	}
}

// DevNLayout returns an unpacked layout with n colorants.
func DevNLayout(model Model, n int) Layout {
	return Layout{Model: model, NumComponents: n}
}

// Validate checks component counts and that packed fields fit in 64 bits.
func (l Layout) Validate() error {
	if l.NumComponents <= 0 || l.NumComponents > MaxComponents {
		return fmt.Errorf("%w: %d components", ErrInvalidLayout, l.NumComponents)
	}
	if !l.Packed {
		return nil
	}
	if len(l.Bits) != l.NumComponents || len(l.Shifts) != l.NumComponents {
		return fmt.Errorf("%w: packed layout needs bits and shifts per component", ErrInvalidLayout)
	}
	for i := range l.Bits {
		if l.Bits[i] == 0 || l.Bits[i] > 16 || int(l.Shifts[i])+int(l.Bits[i]) > 64 {
			return fmt.Errorf("%w: component %d does not fit", ErrInvalidLayout, i)
		}
	}
	return nil
}

func (l Layout) mask(i int) uint64 {
	return 1<<l.Bits[i] - 1
}

// Encode quantizes device-model components in [0,1] into a device color.
// Values outside [0,1] are clamped.
func (l Layout) Encode(v []float64) Color {
	if !l.Packed {
		c := make(DevN, l.NumComponents)
		for i := range c {
			c[i] = uint16(math.Round(clamp01(at(v, i)) * 65535))
		}
		return c
	}
	var idx uint64
	for i := 0; i < l.NumComponents; i++ {
		m := l.mask(i)
		q := uint64(math.Round(clamp01(at(v, i)) * float64(m)))
		idx |= q << l.Shifts[i]
	}
	return Pure(idx)
}

// Decode expands a device color into components in [0,1].
// out must have room for NumComponents values.
func (l Layout) Decode(c Color, out []float64) error {
	switch c := c.(type) {
	case Pure:
		if !l.Packed {
			return fmt.Errorf("%w: pure color on devn layout", ErrNotPureOrDevN)
		}
		for i := 0; i < l.NumComponents; i++ {
			m := l.mask(i)
			out[i] = float64((uint64(c)>>l.Shifts[i])&m) / float64(m)
		}
		return nil
	case DevN:
		for i := 0; i < l.NumComponents && i < len(c); i++ {
			out[i] = float64(c[i]) / 65535
		}
		return nil
	default:
		return ErrNotPureOrDevN
	}
}

// Fractional converts a device color into 31-bit fixed-point components.
// A packed index is split with the layout's shifts and masks; DevN values
// are scaled from 16 bits. A packed index on a layout without shifts has
// no fractional form and yields [ErrNotPureOrDevN].
func (l Layout) Fractional(c Color, out []int32) error {
	switch c := c.(type) {
	case Pure:
		if !l.Packed {
			return fmt.Errorf("%w: pure color on devn layout", ErrNotPureOrDevN)
		}
		for i := 0; i < l.NumComponents; i++ {
			m := l.mask(i)
			v := (uint64(c) >> l.Shifts[i]) & m
			out[i] = int32(v * FracOne / m)
		}
		return nil
	case DevN:
		for i := 0; i < l.NumComponents; i++ {
			var v uint64
			if i < len(c) {
				v = uint64(c[i])
			}
			out[i] = int32(v * FracOne / 65535)
		}
		return nil
	default:
		return ErrNotPureOrDevN
	}
}

func at(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
