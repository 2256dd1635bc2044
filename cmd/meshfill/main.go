// Command meshfill renders a Coons or tensor-product patch mesh described by
// a TOML or YAML job file.
//
// Usage:
//
//	meshfill -job mesh.toml [-output out.png] [-backend pixmap] [-record] [-v]
//
// The output format follows the file extension: png, jpg, gif, tif or bmp.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/gogpu/meshshade"
	"github.com/gogpu/meshshade/raster"
	"github.com/gogpu/meshshade/recording"

	_ "github.com/gogpu/meshshade/render" // registers "pixmap"
)

func main() {
	var (
		jobPath = flag.String("job", "", "job file (.toml, .yaml)")
		output  = flag.String("output", "", "output file, overrides the job")
		backend = flag.String("backend", "", "backend name, overrides the job")
		record  = flag.Bool("record", false, "record the fill and play it back")
		verbose = flag.Bool("v", false, "log fill statistics")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	meshshade.SetLogger(logger)

	if *jobPath == "" {
		fmt.Fprintln(os.Stderr, "meshfill: -job is required")
		flag.Usage()
		os.Exit(2)
	}
	job, err := loadJob(*jobPath)
	if err != nil {
		logger.Error("load job", "err", err)
		os.Exit(1)
	}
	if *output != "" {
		job.Output = *output
	}
	if *backend != "" {
		job.Backend = *backend
	}

	if err := run(job, *record, logger); err != nil {
		logger.Error("render", "err", err)
		os.Exit(1)
	}
	logger.Info("saved", "path", job.Output, "width", job.Width, "height", job.Height)
}

func run(job *Job, record bool, logger *slog.Logger) error {
	b, err := recording.NewBackend(job.Backend)
	if err != nil {
		return err
	}
	var st meshshade.FillStats
	if err := renderJob(job, b, record, &st, logger); err != nil {
		return err
	}
	logger.Debug("fill", "stats", st)
	return save(job, b)
}

// save writes the rendered canvas to job.Output. PNG output at the canvas
// size goes through the backend; supersampled or other formats are scaled
// and encoded by extension.
func save(job *Job, b recording.Backend) error {
	png := strings.EqualFold(filepath.Ext(job.Output), ".png")
	if fb, ok := b.(recording.FileBackend); ok && png && job.Supersample == 1 {
		return fb.SaveToFile(job.Output)
	}
	ib, ok := b.(recording.ImageBackend)
	if !ok {
		return fmt.Errorf("backend %q cannot save %s", job.Backend, job.Output)
	}
	img := ib.Image()
	if job.Supersample > 1 {
		img = imaging.Resize(img, job.Width, job.Height, imaging.Lanczos)
	}
	return imaging.Save(img, job.Output)
}

// renderJob fills the job into b, directly or through a recording.
func renderJob(job *Job, b recording.Backend, record bool, st *meshshade.FillStats, logger *slog.Logger) error {
	sh, src, opts, err := job.shading()
	if err != nil {
		return err
	}
	tensor, err := job.tensor()
	if err != nil {
		return err
	}
	fill := meshshade.FillCoons
	if tensor {
		fill = meshshade.FillTensor
	}
	opts = append(opts, meshshade.WithStats(st))

	w, h := job.canvas()
	if !record {
		if err := b.Begin(w, h); err != nil {
			return err
		}
		if err := fill(sh, src, b, opts...); err != nil {
			return err
		}
		return b.End()
	}

	var recOpts []recording.RecorderOption
	if _, ok := b.(recording.LinearBackend); ok {
		recOpts = append(recOpts, recording.WithLinearResult(raster.LinearFilled))
	}
	rec := recording.NewRecorder(w, h, b.ColorLayout(), recOpts...)
	if err := fill(sh, src, rec, opts...); err != nil {
		return err
	}
	r := rec.FinishRecording()
	logger.Debug("recording",
		"commands", len(r.Commands()),
		"trapezoids", r.Count(recording.CmdFillTrapezoid),
		"linear_trapezoids", r.Count(recording.CmdFillLinearTrapezoid),
		"linear_triangles", r.Count(recording.CmdFillLinearTriangle),
		"colors", r.Colors().Len(),
		"area", r.Area())
	return r.Playback(b)
}
