package recording

import (
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/raster"
)

// CommandType identifies the type of a command.
type CommandType uint8

const (
	CmdFillTrapezoid       CommandType = iota // Constant-color trapezoid
	CmdFillLinearTrapezoid                    // Trapezoid with corner colors
	CmdFillLinearTriangle                     // Triangle with vertex colors
	CmdShadingArea                            // Patch area hint
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdFillTrapezoid:       "FillTrapezoid",
	CmdFillLinearTrapezoid: "FillLinearTrapezoid",
	CmdFillLinearTriangle:  "FillLinearTriangle",
	CmdShadingArea:         "ShadingArea",
}

// String returns the command type name.
func (t CommandType) String() string {
	if int(t) < len(commandTypeNames) {
		return commandTypeNames[t]
	}
	return "Unknown"
}

// InvalidRef marks an unset ColorRef.
const InvalidRef = ^uint32(0)

// ColorRef is a reference to a pooled device color.
type ColorRef uint32

// IsValid returns true if the reference is not InvalidRef.
func (r ColorRef) IsValid() bool {
	return uint32(r) != InvalidRef
}

// Command is a recorded device call.
type Command interface {
	Type() CommandType
}

// FillTrapezoidCommand records FillTrapezoid.
type FillTrapezoidCommand struct {
	Trapezoid raster.Trapezoid
	Color     ColorRef
	Op        raster.Op
}

// Type implements Command.
func (FillTrapezoidCommand) Type() CommandType { return CmdFillTrapezoid }

// FillLinearTrapezoidCommand records FillLinearColorTrapezoid. Colors are
// 31-bit fractions in trapezoid corner order.
type FillLinearTrapezoidCommand struct {
	Trapezoid raster.Trapezoid
	Colors    [4][]int32
	Op        raster.Op
	Result    raster.LinearResult
}

// Type implements Command.
func (FillLinearTrapezoidCommand) Type() CommandType { return CmdFillLinearTrapezoid }

// FillLinearTriangleCommand records FillLinearColorTriangle.
type FillLinearTriangleCommand struct {
	Points [3]fixed.Point26_6
	Colors [3][]int32
	Op     raster.Op
	Result raster.LinearResult
}

// Type implements Command.
func (FillLinearTriangleCommand) Type() CommandType { return CmdFillLinearTriangle }

// ShadingAreaCommand records a patch area hint.
type ShadingAreaCommand struct {
	Rect raster.Rect
}

// Type implements Command.
func (ShadingAreaCommand) Type() CommandType { return CmdShadingArea }
