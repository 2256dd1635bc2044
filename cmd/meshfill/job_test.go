package main

import (
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/gogpu/meshshade"
	"github.com/gogpu/meshshade/render"
)

const tomlJob = `
width = 32
height = 32
kind = "coons"
color_space = "rgb"
matrix = [32, 0, 0, 0, 32, 0]

[config]
smoothness = 0.1

[[patches]]
points = [[0,0],[0,0.33],[0,0.67],[0,1],[0.33,1],[0.67,1],[1,1],[1,0.67],[1,0.33],[1,0],[0.67,0],[0.33,0]]
colors = [[1,0,0],[1,0,0],[1,0,0],[1,0,0]]
`

const yamlJob = `
width: 16
height: 8
kind: tensor
color_space: gray
config:
  max_level: 6
function:
  type: stitching
  bounds: [0.5]
  encode: [0, 1, 0, 1]
  functions:
    - type: exponential
      c0: [0]
      c1: [1]
    - type: sampled
      samples: [[1], [0.5], [0]]
patches:
  - points: [[0,0],[0,1],[0,2],[0,3],[1,3],[2,3],[3,3],[3,2],[3,1],[3,0],[2,0],[1,0],[1,1],[1,2],[2,2],[2,1]]
    colors: [[0],[1],[1],[0]]
`

func TestDecodeJob(t *testing.T) {
	job, err := decodeJob([]byte(tomlJob), "toml")
	if err != nil {
		t.Fatal(err)
	}
	if job.Width != 32 || len(job.Patches) != 1 || len(job.Patches[0].Points) != 12 {
		t.Errorf("decoded job = %+v", job)
	}
	if job.Config.Smoothness != 0.1 {
		t.Errorf("smoothness = %v, want 0.1", job.Config.Smoothness)
	}
	// Keys absent from the file keep their defaults.
	if job.Config.MaxLevel != meshshade.DefaultConfig().MaxLevel || !job.Config.LazyWedges {
		t.Errorf("config defaults lost: %+v", job.Config)
	}
	if job.Backend != "pixmap" {
		t.Errorf("backend = %q, want pixmap", job.Backend)
	}

	job, err = decodeJob([]byte(yamlJob), "yml")
	if err != nil {
		t.Fatal(err)
	}
	if job.Kind != "tensor" || job.Config.MaxLevel != 6 || job.Function == nil {
		t.Errorf("decoded job = %+v", job)
	}
	if len(job.Function.Functions) != 2 {
		t.Errorf("stitching parts = %d, want 2", len(job.Function.Functions))
	}
}

func TestDecodeJobErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"unknown format", tomlJob, "json"},
		{"bad toml", "width = ", "toml"},
		{"no patches", "width = 4\nheight = 4\n", "toml"},
		{"bad canvas", "width: 0\npatches: [{points: [], colors: []}]\n", "yaml"},
		{"bad supersample", "supersample = 0\n[[patches]]\npoints = []\n", "toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeJob([]byte(tt.data), tt.format); err == nil {
				t.Error("decodeJob() succeeded")
			}
		})
	}
}

func TestShadingErrors(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Job)
	}{
		{"color space", func(j *Job) { j.ColorSpace = "hsv" }},
		{"function type", func(j *Job) { j.Function = &FunctionSpec{Type: "postscript"} }},
		{"matrix", func(j *Job) { j.Matrix = []float64{1, 0} }},
		{"colors", func(j *Job) { j.Patches[0].Colors = j.Patches[0].Colors[:3] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := decodeJob([]byte(tomlJob), "toml")
			if err != nil {
				t.Fatal(err)
			}
			tt.edit(job)
			if _, _, _, err := job.shading(); err == nil {
				t.Error("shading() succeeded")
			}
		})
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRender(t *testing.T) {
	for _, record := range []bool{false, true} {
		job, err := decodeJob([]byte(tomlJob), "toml")
		if err != nil {
			t.Fatal(err)
		}
		target := render.NewPixmapTarget(0, 0)
		var st meshshade.FillStats
		if err := renderJob(job, target, record, &st, discard()); err != nil {
			t.Fatalf("renderJob(record=%v) error = %v", record, err)
		}
		if st.Patches != 1 {
			t.Errorf("record=%v: patches = %d, want 1", record, st.Patches)
		}
		red := color.RGBA{R: 0xff, A: 0xff}
		for _, p := range [][2]int{{1, 1}, {16, 16}, {30, 30}} {
			if got := target.RGBA().RGBAAt(p[0], p[1]); got != red {
				t.Errorf("record=%v: pixel %v = %v, want red", record, p, got)
			}
		}
	}
}

func TestRenderTensorYAML(t *testing.T) {
	job, err := decodeJob([]byte(yamlJob), "yaml")
	if err != nil {
		t.Fatal(err)
	}
	job.Matrix = []float64{16.0 / 3, 0, 0, 0, 8.0 / 3, 0}
	target := render.NewPixmapTarget(0, 0)
	var st meshshade.FillStats
	if err := renderJob(job, target, false, &st, discard()); err != nil {
		t.Fatal(err)
	}
	if st.Trapezoids+st.LinearFilled == 0 {
		t.Error("nothing painted")
	}
}

func TestRun(t *testing.T) {
	job, err := decodeJob([]byte(tomlJob), "toml")
	if err != nil {
		t.Fatal(err)
	}
	job.Output = filepath.Join(t.TempDir(), "out.png")
	if err := run(job, false, discard()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(job.Output); err != nil {
		t.Errorf("output not written: %v", err)
	}

	job.Backend = "missing"
	if err := run(job, false, discard()); err == nil {
		t.Error("run() with unknown backend succeeded")
	}
}

func TestRunSupersample(t *testing.T) {
	for _, ext := range []string{".png", ".jpg"} {
		job, err := decodeJob([]byte(tomlJob), "toml")
		if err != nil {
			t.Fatal(err)
		}
		job.Supersample = 2
		job.Output = filepath.Join(t.TempDir(), "out"+ext)
		if err := run(job, false, discard()); err != nil {
			t.Fatalf("%s: run() error = %v", ext, err)
		}
		img, err := imaging.Open(job.Output)
		if err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
		if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
			t.Errorf("%s: size = %v, want 32x32", ext, b)
		}
		r, g, _, _ := img.At(16, 16).RGBA()
		if r>>8 < 240 || g>>8 > 16 {
			t.Errorf("%s: center = %v, want red", ext, img.At(16, 16))
		}
	}
}
