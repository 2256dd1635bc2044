package meshshade

import (
	"fmt"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/devcolor"
	"github.com/gogpu/meshshade/internal/colorstack"
	"github.com/gogpu/meshshade/raster"
)

// fillPolygon paints a triangle or quadrangle with one color.
func (fs *fillState) fillPolygon(c *colorstack.Color, pts ...fixed.Point26_6) error {
	dc, _, err := fs.resolve(c)
	if err != nil {
		return err
	}
	fs.fillColor = dc
	if len(pts) == 3 {
		return fs.em.Triangle(pts[0], pts[1], pts[2], fs.fillTrap)
	}
	return fs.em.Quadrangle(pts[0], pts[1], pts[2], pts[3], fs.fillTrap)
}

// fillConstantTrapezoid is the emitter callback of fillPolygon.
func (fs *fillState) fillConstantTrapezoid(t *raster.Trapezoid) error {
	return fs.fillTrapezoid(t, fs.fillColor)
}

func (fs *fillState) fillTrapezoid(t *raster.Trapezoid, dc devcolor.Color) error {
	fs.stats.Trapezoids++
	if err := fs.dev.FillTrapezoid(t, dc, fs.op); err != nil {
		return fmt.Errorf("%w: fill trapezoid: %w", ErrDeviceFill, err)
	}
	return nil
}
