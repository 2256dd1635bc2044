package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/meshshade"
	"github.com/gogpu/meshshade/colorspace"
	"github.com/gogpu/meshshade/devcolor"
	"github.com/gogpu/meshshade/function"
)

// Job is a render job: a canvas, fill settings and a list of patches in
// shading space.
type Job struct {
	Width   int    `toml:"width" yaml:"width"`
	Height  int    `toml:"height" yaml:"height"`
	Backend string `toml:"backend" yaml:"backend"`
	Output  string `toml:"output" yaml:"output"`

	// Supersample renders at this multiple of the canvas size and scales
	// the result down on save.
	Supersample int `toml:"supersample" yaml:"supersample"`

	// Kind is "coons" (12 points per patch) or "tensor" (16 points).
	Kind string `toml:"kind" yaml:"kind"`

	// ColorSpace is "gray", "rgb", "cmyk" or "lab".
	ColorSpace string `toml:"color_space" yaml:"color_space"`

	// WhitePoint selects "D65" or "D50" for Lab.
	WhitePoint string `toml:"white_point" yaml:"white_point"`

	// Matrix maps shading space to device pixels: a b c d e f.
	Matrix []float64 `toml:"matrix" yaml:"matrix"`

	Config   meshshade.Config `toml:"config" yaml:"config"`
	Function *FunctionSpec    `toml:"function" yaml:"function"`
	Patches  []PatchSpec      `toml:"patches" yaml:"patches"`
}

// FunctionSpec describes a shading function.
type FunctionSpec struct {
	Type   string    `toml:"type" yaml:"type"`
	Domain []float64 `toml:"domain" yaml:"domain"`

	// exponential
	C0 []float64 `toml:"c0" yaml:"c0"`
	C1 []float64 `toml:"c1" yaml:"c1"`
	N  float64   `toml:"n" yaml:"n"`

	// sampled
	Samples [][]float64 `toml:"samples" yaml:"samples"`

	// stitching
	Functions []FunctionSpec `toml:"functions" yaml:"functions"`
	Bounds    []float64      `toml:"bounds" yaml:"bounds"`
	Encode    []float64      `toml:"encode" yaml:"encode"`
}

// PatchSpec is one patch: points as [x, y] pairs, four corner colors.
type PatchSpec struct {
	Points [][2]float64 `toml:"points" yaml:"points"`
	Colors [][]float64  `toml:"colors" yaml:"colors"`
}

const maxSupersample = 8

func newJob() *Job {
	return &Job{
		Width:       256,
		Height:      256,
		Backend:     "pixmap",
		Output:      "meshfill.png",
		Supersample: 1,
		Kind:        "coons",
		ColorSpace:  "rgb",
		Config:      meshshade.DefaultConfig(),
	}
}

// loadJob reads a TOML or YAML job file, chosen by extension.
func loadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	job, err := decodeJob(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

func decodeJob(data []byte, format string) (*Job, error) {
	job := newJob()
	switch format {
	case "toml":
		if _, err := toml.Decode(string(data), job); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, job); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown job format %q", format)
	}
	if job.Width <= 0 || job.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", job.Width, job.Height)
	}
	if job.Supersample < 1 || job.Supersample > maxSupersample {
		return nil, fmt.Errorf("supersample %d not in [1, %d]", job.Supersample, maxSupersample)
	}
	if len(job.Patches) == 0 {
		return nil, fmt.Errorf("no patches")
	}
	return job, nil
}

// canvas returns the device size the job renders at.
func (j *Job) canvas() (w, h int) {
	return j.Width * j.Supersample, j.Height * j.Supersample
}

func (j *Job) colorSpace() (meshshade.ColorSpace, error) {
	switch strings.ToLower(j.ColorSpace) {
	case "gray":
		return colorspace.DeviceGray().WithTarget(devcolor.ModelRGB), nil
	case "rgb", "":
		return colorspace.DeviceRGB(), nil
	case "cmyk":
		return colorspace.DeviceCMYK().WithTarget(devcolor.ModelRGB), nil
	case "lab":
		wp := colorspace.D65
		if strings.EqualFold(j.WhitePoint, "D50") {
			wp = colorspace.D50
		}
		return colorspace.NewLab(wp, [4]float64{})
	default:
		return nil, fmt.Errorf("unknown color space %q", j.ColorSpace)
	}
}

func (s *FunctionSpec) build() (function.Func, error) {
	lo, hi := 0.0, 1.0
	if len(s.Domain) == 2 {
		lo, hi = s.Domain[0], s.Domain[1]
	}
	switch strings.ToLower(s.Type) {
	case "exponential":
		n := s.N
		if n == 0 {
			n = 1
		}
		return function.NewExponential(s.C0, s.C1, n, lo, hi)
	case "sampled":
		return function.NewSampled(s.Samples, lo, hi)
	case "stitching":
		parts := make([]function.Func, len(s.Functions))
		for i := range s.Functions {
			f, err := s.Functions[i].build()
			if err != nil {
				return nil, fmt.Errorf("function %d: %w", i, err)
			}
			parts[i] = f
		}
		return function.NewStitching(parts, s.Bounds, s.Encode, lo, hi)
	default:
		return nil, fmt.Errorf("unknown function type %q", s.Type)
	}
}

func (j *Job) tensor() (bool, error) {
	switch strings.ToLower(j.Kind) {
	case "coons", "":
		return false, nil
	case "tensor":
		return true, nil
	default:
		return false, fmt.Errorf("unknown patch kind %q", j.Kind)
	}
}

// shading builds the shading, its patch source and the fill options.
func (j *Job) shading() (*meshshade.Shading, *meshshade.SliceSource, []meshshade.Option, error) {
	cs, err := j.colorSpace()
	if err != nil {
		return nil, nil, nil, err
	}
	sh := &meshshade.Shading{ColorSpace: cs}
	if j.Function != nil {
		fn, err := j.Function.build()
		if err != nil {
			return nil, nil, nil, err
		}
		sh.Function = fn
	}

	patches := make([]meshshade.Patch, len(j.Patches))
	for i, ps := range j.Patches {
		if len(ps.Colors) != 4 {
			return nil, nil, nil, fmt.Errorf("patch %d: %d colors, want 4", i, len(ps.Colors))
		}
		p := meshshade.Patch{Points: make([]meshshade.Point, len(ps.Points))}
		for k, pt := range ps.Points {
			p.Points[k] = meshshade.Pt(pt[0], pt[1])
		}
		copy(p.Colors[:], ps.Colors)
		patches[i] = p
	}

	m := meshshade.Identity()
	switch len(j.Matrix) {
	case 0:
	case 6:
		v := j.Matrix
		m = meshshade.Matrix{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}
	default:
		return nil, nil, nil, fmt.Errorf("matrix has %d values, want 6", len(j.Matrix))
	}
	if ss := float64(j.Supersample); ss > 1 {
		m = meshshade.Scale(ss, ss).Multiply(m)
	}
	opts := []meshshade.Option{meshshade.WithConfig(j.Config), meshshade.WithMatrix(m)}
	return sh, meshshade.NewSliceSource(patches...), opts, nil
}
