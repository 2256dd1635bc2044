package recording

import (
	"fmt"
	"slices"

	"github.com/gogpu/meshshade/devcolor"
)

// ColorPool stores the device colors referenced by recording commands.
// Equal colors share one reference.
//
// ColorPool is not safe for concurrent use.
type ColorPool struct {
	colors []devcolor.Color
	pure   map[devcolor.Pure]ColorRef
}

// NewColorPool creates an empty pool with pre-allocated capacity.
func NewColorPool() *ColorPool {
	return &ColorPool{
		colors: make([]devcolor.Color, 0, 64),
		pure:   make(map[devcolor.Pure]ColorRef),
	}
}

// Add adds a color to the pool and returns its reference. DevN colors
// are cloned so that the recording does not alias device buffers.
func (p *ColorPool) Add(c devcolor.Color) ColorRef {
	switch c := c.(type) {
	case devcolor.Pure:
		if ref, ok := p.pure[c]; ok {
			return ref
		}
		ref := p.push(c)
		p.pure[c] = ref
		return ref
	case devcolor.DevN:
		for i, have := range p.colors {
			if n, ok := have.(devcolor.DevN); ok && slices.Equal(n, c) {
				// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
				return ColorRef(uint32(i))
			}
		}
		return p.push(slices.Clone(c))
	default:
		return p.push(c)
	}
}

func (p *ColorPool) push(c devcolor.Color) ColorRef {
	p.colors = append(p.colors, c)
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	return ColorRef(uint32(len(p.colors) - 1))
}

// Get returns the color for the given reference, or nil if the reference
// is invalid.
func (p *ColorPool) Get(ref ColorRef) devcolor.Color {
	if !ref.IsValid() || int(ref) >= len(p.colors) {
		return nil
	}
	return p.colors[ref]
}

// Len returns the number of distinct colors.
func (p *ColorPool) Len() int {
	return len(p.colors)
}

// String returns a short description for debugging.
func (p *ColorPool) String() string {
	return fmt.Sprintf("ColorPool{colors: %d}", len(p.colors))
}
