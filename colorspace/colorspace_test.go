package colorspace

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/meshshade/devcolor"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		from devcolor.Model
		v    []float64
		to   devcolor.Model
		want []float64
	}{
		{"gray to rgb", devcolor.ModelGray, []float64{0.25}, devcolor.ModelRGB, []float64{0.25, 0.25, 0.25}},
		{"gray to cmyk", devcolor.ModelGray, []float64{0.25}, devcolor.ModelCMYK, []float64{0, 0, 0, 0.75}},
		{"rgb to gray", devcolor.ModelRGB, []float64{1, 0, 0}, devcolor.ModelGray, []float64{0.3}},
		{"rgb to cmyk", devcolor.ModelRGB, []float64{1, 0.5, 0}, devcolor.ModelCMYK, []float64{0, 0.5, 1, 0}},
		{"dark rgb to cmyk", devcolor.ModelRGB, []float64{0.2, 0.2, 0.6}, devcolor.ModelCMYK, []float64{0.4, 0.4, 0, 0.4}},
		{"cmyk to rgb", devcolor.ModelCMYK, []float64{0.5, 0, 0, 0.25}, devcolor.ModelRGB, []float64{0.25, 0.75, 0.75}},
		{"cmyk to rgb saturates", devcolor.ModelCMYK, []float64{0.8, 0, 0, 0.5}, devcolor.ModelRGB, []float64{0, 0.5, 0.5}},
		{"cmyk to gray", devcolor.ModelCMYK, []float64{0, 0, 0, 1}, devcolor.ModelGray, []float64{0}},
		{"rgb to devn", devcolor.ModelRGB, []float64{0, 1, 1}, devcolor.ModelDevN, []float64{1, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out [maxModelComponents]float64
			if err := convert(tt.from, tt.v, tt.to, out[:]); err != nil {
				t.Fatalf("convert() error = %v", err)
			}
			for i, w := range tt.want {
				if math.Abs(out[i]-w) > 1e-12 {
					t.Errorf("component %d = %v, want %v", i, out[i], w)
				}
			}
		})
	}
}

func TestRemapColor(t *testing.T) {
	c, err := DeviceRGB().RemapColor([]float64{1, 0.5, 0}, devcolor.RGB8())
	if err != nil {
		t.Fatal(err)
	}
	if c != devcolor.Pure(0xff8000) {
		t.Errorf("RemapColor() = %#x, want 0xff8000", c)
	}

	c, err = DeviceGray().RemapColor([]float64{1}, devcolor.CMYK8())
	if err != nil {
		t.Fatal(err)
	}
	if c != devcolor.Pure(0) {
		t.Errorf("white on CMYK = %#x, want 0", c)
	}

	if _, err := DeviceRGB().RemapColor([]float64{1}, devcolor.RGB8()); !errors.Is(err, ErrComponents) {
		t.Errorf("short color error = %v, want ErrComponents", err)
	}
}

func TestRestrictColor(t *testing.T) {
	v := []float64{-1, 0.5, 2, 1}
	DeviceCMYK().RestrictColor(v)
	want := []float64{0, 0.5, 1, 1}
	for i := range v {
		if v[i] != want[i] {
			t.Errorf("RestrictColor()[%d] = %v, want %v", i, v[i], want[i])
		}
	}
}

func TestDeviceIsLinear(t *testing.T) {
	tests := []struct {
		name    string
		space   *Device
		a, b, c []float64
		want    bool
	}{
		{"identity", DeviceRGB(), []float64{0, 0, 0}, []float64{1, 1, 1}, nil, true},
		{"rgb to gray", DeviceRGB().WithTarget(devcolor.ModelGray), []float64{1, 0, 0}, []float64{0, 0, 1}, []float64{0, 1, 0}, true},
		{"rgb to cmyk black generation", DeviceRGB().WithTarget(devcolor.ModelCMYK), []float64{1, 0, 0}, []float64{0, 1, 0}, nil, false},
		{"cmyk to rgb saturation", DeviceCMYK().WithTarget(devcolor.ModelRGB), []float64{0.8, 0, 0, 0}, []float64{0.8, 0, 0, 0.8}, nil, false},
		{"cmyk to rgb unsaturated", DeviceCMYK().WithTarget(devcolor.ModelRGB), []float64{0.2, 0, 0, 0}, []float64{0, 0, 0, 0.3}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.space.IsLinear(tt.a, tt.b, tt.c, 0.01)
			if err != nil {
				t.Fatalf("IsLinear() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsLinear() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLab(t *testing.T) {
	lab, err := NewLab(D65, [4]float64{})
	if err != nil {
		t.Fatal(err)
	}
	if lo, hi := lab.Range(2); lo != -100 || hi != 100 {
		t.Errorf("Range(2) = [%v, %v]", lo, hi)
	}

	white, err := lab.RemapColor([]float64{100, 0, 0}, devcolor.RGB8())
	if err != nil {
		t.Fatal(err)
	}
	if white != devcolor.Pure(0xffffff) {
		t.Errorf("L*=100 = %#x, want white", white)
	}
	black, _ := lab.RemapColor([]float64{0, 0, 0}, devcolor.Gray8())
	if black != devcolor.Pure(0) {
		t.Errorf("L*=0 = %#x, want black", black)
	}

	v := []float64{120, -150, 30}
	lab.RestrictColor(v)
	if v[0] != 100 || v[1] != -100 || v[2] != 30 {
		t.Errorf("RestrictColor() = %v", v)
	}

	// Lightness ramps are far from linear in gamma-encoded RGB.
	ok, err := lab.IsLinear([]float64{0, 0, 0}, []float64{100, 0, 0}, nil, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("IsLinear() = true for a full lightness ramp")
	}

	if _, err := NewLab([3]float64{0, 1, 1}, [4]float64{}); err == nil {
		t.Error("NewLab() accepted a zero white point")
	}
}
