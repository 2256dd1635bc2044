package function

import (
	"errors"
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestExponential(t *testing.T) {
	f, err := NewExponential([]float64{0, 1}, []float64{1, 0}, 2, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]float64, 2)

	tests := []struct {
		t    float64
		want [2]float64
	}{
		{0, [2]float64{0, 1}},
		{0.5, [2]float64{0.25, 0.75}},
		{1, [2]float64{1, 0}},
		{2, [2]float64{1, 0}}, // clamped
	}
	for _, tt := range tests {
		if err := f.Evaluate(tt.t, out); err != nil {
			t.Fatal(err)
		}
		if !near(out[0], tt.want[0]) || !near(out[1], tt.want[1]) {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.t, out, tt.want)
		}
	}

	if err := f.Evaluate(0, make([]float64, 1)); !errors.Is(err, ErrOutputs) {
		t.Errorf("short output error = %v, want ErrOutputs", err)
	}
}

func TestExponentialDefaults(t *testing.T) {
	f, err := NewExponential(nil, nil, 1, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if f.NumOutputs() != 1 {
		t.Errorf("NumOutputs() = %d, want 1", f.NumOutputs())
	}
}

func TestExponentialInvalid(t *testing.T) {
	tests := []struct {
		name   string
		c0, c1 []float64
		n      float64
		lo, hi float64
	}{
		{"mismatched C", []float64{0}, []float64{0, 1}, 1, 0, 1},
		{"fractional exponent on negatives", nil, nil, 0.5, -1, 1},
		{"negative exponent at zero", nil, nil, -1, 0, 1},
		{"reversed domain", nil, nil, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewExponential(tt.c0, tt.c1, tt.n, tt.lo, tt.hi); !errors.Is(err, ErrInvalid) {
				t.Errorf("NewExponential() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestExponentialMonotonic(t *testing.T) {
	f, _ := NewExponential([]float64{0, 1, 0.5}, []float64{1, 0, 0.5}, 2, -1, 1)
	tests := []struct {
		name   string
		t0, t1 float64
		want   uint32
	}{
		{"positive side", 0.1, 0.9, 0},
		{"negative side", -0.9, -0.1, 0},
		{"across zero", -0.5, 0.5, 0b011},
		{"reversed across zero", 0.5, -0.5, 0b011},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.IsMonotonic(tt.t0, tt.t1)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("IsMonotonic() = %b, want %b", got, tt.want)
			}
		})
	}

	odd, _ := NewExponential(nil, nil, 3, -1, 1)
	if m, _ := odd.IsMonotonic(-1, 1); m != 0 {
		t.Errorf("odd exponent mask = %b, want 0", m)
	}
}

func TestStitching(t *testing.T) {
	up, _ := NewExponential([]float64{0}, []float64{1}, 1, 0, 1)
	down, _ := NewExponential([]float64{1}, []float64{0}, 1, 0, 1)
	s, err := NewStitching([]Func{up, down}, []float64{0.5}, []float64{0, 1, 0, 1}, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 1)
	tests := []struct {
		t, want float64
	}{
		{0, 0},
		{0.25, 0.5},
		{0.5, 1},
		{0.75, 0.5},
		{1, 0},
	}
	for _, tt := range tests {
		if err := s.Evaluate(tt.t, out); err != nil {
			t.Fatal(err)
		}
		if !near(out[0], tt.want) {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.t, out[0], tt.want)
		}
	}

	if m, _ := s.IsMonotonic(0.1, 0.4); m != 0 {
		t.Errorf("IsMonotonic inside first piece = %b", m)
	}
	if m, _ := s.IsMonotonic(0.6, 1); m != 0 {
		t.Errorf("IsMonotonic inside last piece = %b", m)
	}
	if m, _ := s.IsMonotonic(0.4, 0.6); m != 1 {
		t.Errorf("IsMonotonic across breakpoint = %b, want 1", m)
	}
}

func TestStitchingInvalid(t *testing.T) {
	one, _ := NewExponential(nil, nil, 1, 0, 1)
	two, _ := NewExponential([]float64{0, 0}, []float64{1, 1}, 1, 0, 1)
	tests := []struct {
		name   string
		funcs  []Func
		bounds []float64
		encode []float64
	}{
		{"no functions", nil, nil, nil},
		{"missing bound", []Func{one, one}, nil, []float64{0, 1, 0, 1}},
		{"output mismatch", []Func{one, two}, []float64{0.5}, []float64{0, 1, 0, 1}},
		{"bound outside domain", []Func{one, one}, []float64{2}, []float64{0, 1, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStitching(tt.funcs, tt.bounds, tt.encode, 0, 1); !errors.Is(err, ErrInvalid) {
				t.Errorf("NewStitching() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestSampled(t *testing.T) {
	s, err := NewSampled([][]float64{{0, 1}, {1, 0}, {0.5, 0.5}, {0, 1}}, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]float64, 2)
	if err := s.Evaluate(1.5, out); err != nil {
		t.Fatal(err)
	}
	if !near(out[0], 0.75) || !near(out[1], 0.25) {
		t.Errorf("Evaluate(1.5) = %v", out)
	}
	_ = s.Evaluate(3, out)
	if !near(out[0], 0) || !near(out[1], 1) {
		t.Errorf("Evaluate(3) = %v", out)
	}

	tests := []struct {
		name   string
		t0, t1 float64
		want   uint32
	}{
		{"rising segment", 0, 1, 0},
		{"monotonic tail", 1, 2.5, 0},
		{"peak and valley", 0.5, 2.5, 0b11},
		{"single sample gap", 1.2, 1.8, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := s.IsMonotonic(tt.t0, tt.t1)
			if got != tt.want {
				t.Errorf("IsMonotonic(%v, %v) = %b, want %b", tt.t0, tt.t1, got, tt.want)
			}
		})
	}

	if _, err := NewSampled([][]float64{{0}}, 0, 1); !errors.Is(err, ErrInvalid) {
		t.Errorf("one sample error = %v, want ErrInvalid", err)
	}
}
