// Package colorstack provides the scoped LIFO allocator for the transient
// paint colors of a recursive shading fill.
//
// Every recursion frame reserves the colors it needs and releases them on
// return:
//
//	fr, err := st.Reserve(2)
//	if err != nil {
//		return err
//	}
//	defer fr.Release()
//	mid := fr.At(0)
//
// Component storage is one flat buffer allocated by New, so colors are
// never individually heap allocated.
package colorstack

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow is returned by Reserve when the stack is full.
	ErrOverflow = errors.New("colorstack: overflow")

	// ErrUnbalanced reports a frame released out of LIFO order.
	ErrUnbalanced = errors.New("colorstack: unbalanced release")
)

// Color is a paint color: color components in CC, or one or two function
// parameters in T when a shading function computes the components.
// CC is a view into the stack buffer.
type Color struct {
	T  [2]float64
	CC []float64
}

// CopyFrom copies src into c. Both must come from stacks with the same
// component count.
func (c *Color) CopyFrom(src *Color) {
	c.T = src.T
	copy(c.CC, src.CC)
}

// Lerp stores a + (b-a)*t into c for both parameters and components.
func (c *Color) Lerp(a, b *Color, t float64) {
	c.T[0] = a.T[0] + (b.T[0]-a.T[0])*t
	c.T[1] = a.T[1] + (b.T[1]-a.T[1])*t
	for i := range c.CC {
		c.CC[i] = a.CC[i] + (b.CC[i]-a.CC[i])*t
	}
}

// Average stores the mean of src into c, which must not be one of src.
func (c *Color) Average(src ...*Color) {
	if len(src) == 0 {
		return
	}
	inv := 1 / float64(len(src))
	c.T = [2]float64{}
	for i := range c.CC {
		c.CC[i] = 0
	}
	for _, s := range src {
		c.T[0] += s.T[0] * inv
		c.T[1] += s.T[1] * inv
		for i := range c.CC {
			c.CC[i] += s.CC[i] * inv
		}
	}
}

// Stack is a fixed-capacity LIFO of colors.
type Stack struct {
	n      int
	vals   []float64
	colors []Color
	top    int
	err    error
}

// New creates a stack of capacity colors with n components each.
func New(n, capacity int) (*Stack, error) {
	if n < 0 || capacity <= 0 {
		return nil, fmt.Errorf("colorstack: invalid size %d x %d", capacity, n)
	}
	s := &Stack{
		n:      n,
		vals:   make([]float64, n*capacity),
		colors: make([]Color, capacity),
	}
	for i := range s.colors {
		s.colors[i].CC = s.vals[i*n : (i+1)*n : (i+1)*n]
	}
	return s, nil
}

// NumComponents returns the component count of every color.
func (s *Stack) NumComponents() int {
	return s.n
}

// Depth returns the number of reserved colors.
func (s *Stack) Depth() int {
	return s.top
}

// Capacity returns the maximum number of reserved colors.
func (s *Stack) Capacity() int {
	return len(s.colors)
}

// Err returns the first release-order violation, if any.
func (s *Stack) Err() error {
	return s.err
}

// Frame is a reservation of consecutive colors.
type Frame struct {
	s    *Stack
	base int
	n    int
}

// Reserve claims k colors. Their contents are unspecified.
func (s *Stack) Reserve(k int) (Frame, error) {
	if k < 0 || s.top+k > len(s.colors) {
		return Frame{}, fmt.Errorf("%w: %d + %d > %d", ErrOverflow, s.top, k, len(s.colors))
	}
	f := Frame{s: s, base: s.top, n: k}
	s.top += k
	return f, nil
}

// Len returns the number of colors in the frame.
func (f Frame) Len() int {
	return f.n
}

// At returns the i-th color of the frame.
func (f Frame) At(i int) *Color {
	if i < 0 || i >= f.n {
		panic(fmt.Sprintf("colorstack: index %d out of frame of %d", i, f.n))
	}
	return &f.s.colors[f.base+i]
}

// Release returns the frame's colors to the stack. Releasing a frame that
// is not on top records ErrUnbalanced and unwinds to the frame's base.
// Releasing the zero Frame does nothing.
func (f Frame) Release() {
	s := f.s
	if s == nil {
		return
	}
	if s.top != f.base+f.n && s.err == nil {
		s.err = fmt.Errorf("%w: top %d, frame [%d, %d)", ErrUnbalanced, s.top, f.base, f.base+f.n)
	}
	if s.top > f.base {
		s.top = f.base
	}
}
