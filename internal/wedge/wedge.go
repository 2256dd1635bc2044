// Package wedge keeps the vertex lists that reconcile different
// subdivision depths along a shared edge.
//
// When two regions share a curved edge and one of them bisects it deeper
// than the other, their polylines differ by a set of thin triangles. Both
// sides deposit the bisection points they use into one list; a point
// opened by only one side marks a triangle ("wedge") that Terminate hands
// back to the caller for filling.
//
// Lists are doubly linked through int32 handles into a fixed arena. Each
// list is bounded by two sentinel nodes of level 0, and a node inserted
// between nodes of levels a and b has level max(a, b)+1, so a list never
// holds more than ListNodes(maxLevel) nodes. The arena admits a new list
// only while every live list can still grow to that size; callers check
// CanCreate before a split that needs one.
package wedge

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/meshshade/raster"
)

var (
	// ErrExhausted is returned when the arena has no free node.
	ErrExhausted = errors.New("wedge: arena exhausted")

	// ErrMismatch reports inconsistent list linkage or geometry.
	ErrMismatch = errors.New("wedge: list mismatch")
)

// MaxLevelLimit bounds the level accepted by NewArena.
const MaxLevelLimit = 16

// Ref is a node handle. The zero Ref is nil.
type Ref int32

// Span is a section of a list between two of its nodes, with the
// coordinate bounds of the whole list.
//
// A sealed list keeps its polyline: a median opened on it between two
// adjacent nodes is placed on their chord, whatever point the opener
// passes.
type Span struct {
	Begin, End Ref
	Bounds     raster.Rect
	Sealed     bool
}

// Valid reports whether s refers to list nodes.
func (s Span) Valid() bool {
	return s.Begin != 0 && s.End != 0
}

// Wedge is a triangle between two neighboring list points and the median
// opened by only one side. T holds the edge parameter of each point, with
// the list's begin at 0 and end at 1.
type Wedge struct {
	P     [3]fixed.Point26_6
	T     [3]float64
	Level int
}

type node struct {
	p           fixed.Point26_6
	level       int32
	divideCount int8
	side        int8 // side of the list the first opener lies on
	prev, next  Ref
}

// Arena is a fixed pool of list nodes.
type Arena struct {
	nodes    []node
	fresh    Ref // nodes[fresh:] were never used
	free     Ref // LIFO free list through next
	maxLevel int
	inUse    int
	peak     int
	lists    int // live lists
}

// ListNodes returns the most nodes a list of maxLevel levels can hold,
// sentinels included.
func ListNodes(maxLevel int) int {
	return 1<<maxLevel + 1
}

// Capacity returns the node count for maxLevel: full-size room for the
// four boundary lists of a patch and four nested lists per level.
func Capacity(maxLevel int) int {
	return (4*maxLevel + 4) * ListNodes(maxLevel)
}

// NewArena preallocates the nodes for lists of at most maxLevel levels.
func NewArena(maxLevel int) (*Arena, error) {
	if maxLevel < 1 || maxLevel > MaxLevelLimit {
		return nil, fmt.Errorf("wedge: max level %d out of [1, %d]", maxLevel, MaxLevelLimit)
	}
	return &Arena{
		nodes:    make([]node, Capacity(maxLevel)+1),
		fresh:    1,
		maxLevel: maxLevel,
	}, nil
}

// Capacity returns the number of nodes.
func (a *Arena) Capacity() int { return len(a.nodes) - 1 }

// InUse returns the number of reserved nodes.
func (a *Arena) InUse() int { return a.inUse }

// Peak returns the largest InUse seen.
func (a *Arena) Peak() int { return a.peak }

// MaxLevel returns the deepest level a list may reach.
func (a *Arena) MaxLevel() int { return a.maxLevel }

// Lists returns the number of live lists.
func (a *Arena) Lists() int { return a.lists }

// CanCreate reports whether one more list fits with every live list at
// full size.
func (a *Arena) CanCreate() bool {
	return (a.lists+1)*ListNodes(a.maxLevel) <= a.Capacity()
}

func (a *Arena) reserve() (Ref, error) {
	var r Ref
	switch {
	case a.free != 0:
		r = a.free
		a.free = a.nodes[r].next
	case int(a.fresh) < len(a.nodes):
		r = a.fresh
		a.fresh++
	default:
		return 0, fmt.Errorf("%w: %d nodes in use", ErrExhausted, a.inUse)
	}
	a.nodes[r] = node{}
	a.inUse++
	a.peak = max(a.peak, a.inUse)
	return r, nil
}

func (a *Arena) release(r Ref) {
	a.nodes[r] = node{next: a.free}
	a.free = r
	a.inUse--
}

// Point returns the coordinates of r.
func (a *Arena) Point(r Ref) fixed.Point26_6 { return a.nodes[r].p }

// Level returns the level of r.
func (a *Arena) Level(r Ref) int { return int(a.nodes[r].level) }

// DivideCount returns how many sides opened r: 1 or 2.
func (a *Arena) DivideCount(r Ref) int { return int(a.nodes[r].divideCount) }

// CreateList creates a list from p0 to p1. Medians opened on it must lie in
// bounds, usually the control polygon box of the edge. It fails with
// ErrExhausted when CanCreate is false.
func (a *Arena) CreateList(p0, p1 fixed.Point26_6, bounds raster.Rect) (Span, error) {
	if !a.CanCreate() {
		return Span{}, fmt.Errorf("%w: %d lists live", ErrExhausted, a.lists)
	}
	b, err := a.reserve()
	if err != nil {
		return Span{}, err
	}
	e, err := a.reserve()
	if err != nil {
		a.release(b)
		return Span{}, err
	}
	a.nodes[b] = node{p: p0, next: e}
	a.nodes[e] = node{p: p1, prev: b}
	a.lists++
	return Span{Begin: b, End: e, Bounds: bounds}, nil
}

// medianLevel returns the level of a median of s.
func (a *Arena) medianLevel(s Span) int {
	return int(max(a.nodes[s.Begin].level, a.nodes[s.End].level)) + 1
}

// CanSplit reports whether a median of s stays within the level limit.
func (a *Arena) CanSplit(s Span) bool {
	return s.Valid() && a.medianLevel(s) <= a.maxLevel
}

// FindByLevel returns the node of the given level strictly between begin
// and end, or 0.
func (a *Arena) FindByLevel(begin, end Ref, level int) Ref {
	for r := a.nodes[begin].next; r != end && r != 0; r = a.nodes[r].next {
		if int(a.nodes[r].level) == level {
			return r
		}
	}
	return 0
}

// OpenMedian returns the median of s for a side splitting the edge p0 p1 at
// mid. The first side to split inserts a node at mid; the second finds it
// and marks it shared. Callers use the returned node's point, which for the
// second side may differ from mid when the two sides split the same edge
// with different geometry.
//
// side is the sign of raster.Orient(list begin, list end, x) for points x
// inside the opening region, or 0 when unknown. Terminate uses it to tell
// gaps from overlaps.
func (a *Arena) OpenMedian(s Span, p0, p1, mid fixed.Point26_6, side int) (Ref, error) {
	if !s.Valid() {
		return 0, fmt.Errorf("%w: nil span", ErrMismatch)
	}
	b, e := &a.nodes[s.Begin], &a.nodes[s.End]
	if b.p != p0 || e.p != p1 {
		return 0, fmt.Errorf("%w: endpoints %v %v, list has %v %v", ErrMismatch, p0, p1, b.p, e.p)
	}
	level := a.medianLevel(s)
	if level > a.maxLevel {
		return 0, fmt.Errorf("%w: level %d exceeds %d", ErrMismatch, level, a.maxLevel)
	}

	if m := a.FindByLevel(s.Begin, s.End, level); m != 0 {
		if a.nodes[m].divideCount >= 2 {
			return 0, fmt.Errorf("%w: median %v opened three times", ErrMismatch, a.nodes[m].p)
		}
		a.nodes[m].divideCount = 2
		return m, nil
	}

	if s.Sealed {
		mid = chordMid(p0, p1, side)
	}
	if mid.X < s.Bounds.Min.X || mid.X > s.Bounds.Max.X || mid.Y < s.Bounds.Min.Y || mid.Y > s.Bounds.Max.Y {
		return 0, fmt.Errorf("%w: median %v outside %v", ErrMismatch, mid, s.Bounds)
	}
	if b.next != s.End {
		return 0, fmt.Errorf("%w: nodes between %v and %v without a median", ErrMismatch, p0, p1)
	}

	m, err := a.reserve()
	if err != nil {
		return 0, err
	}
	a.nodes[m] = node{
		p:           mid,
		level:       int32(level),
		divideCount: 1,
		side:        int8(sign(int64(side))),
		prev:        s.Begin,
		next:        s.End,
	}
	a.nodes[s.Begin].next = m
	a.nodes[s.End].prev = m
	return m, nil
}

// chordMid returns the midpoint of p0 p1, rounded so that it does not
// leave the line toward the side opposite to side.
func chordMid(p0, p1 fixed.Point26_6, side int) fixed.Point26_6 {
	x, y := int64(p0.X)+int64(p1.X), int64(p0.Y)+int64(p1.Y)
	lo := fixed.Point26_6{X: fixed.Int26_6(x >> 1), Y: fixed.Int26_6(y >> 1)}
	if side == 0 {
		return lo
	}
	// The exact midpoint is on the line, so the corners of its rounding
	// cell do not all lie on the wrong side.
	best, bestOrient := lo, raster.Orient(p0, p1, lo)*int64(side)
	for _, dx := range [2]int64{0, x & 1} {
		for _, dy := range [2]int64{0, y & 1} {
			if bestOrient >= 0 {
				return best
			}
			c := fixed.Point26_6{X: lo.X + fixed.Int26_6(dx), Y: lo.Y + fixed.Int26_6(dy)}
			if o := raster.Orient(p0, p1, c) * int64(side); o >= 0 {
				best, bestOrient = c, o
			}
		}
	}
	return best
}

// Split returns the two halves of s around its median m.
func (s Span) Split(m Ref) (Span, Span) {
	return Span{Begin: s.Begin, End: m, Bounds: s.Bounds, Sealed: s.Sealed},
		Span{Begin: m, End: s.End, Bounds: s.Bounds, Sealed: s.Sealed}
}

// Terminate walks the whole list s, calls emit for every wedge left
// uncovered and releases all its nodes including the sentinels.
//
// A median opened by one side only marks a triangle between that side's
// polyline and the other side's chord. It is a gap when the median lies
// on the opener's side of the chord, and is emitted; otherwise both sides
// already cover it, and neither it nor the wedges nested in it are
// emitted. Wedges of a median are emitted before those of its halves.
func (a *Arena) Terminate(s Span, emit func(Wedge) error) error {
	if !s.Valid() {
		return nil
	}
	if err := a.terminate(s.Begin, s.End, 0, 1, false, emit); err != nil {
		return err
	}
	a.release(s.Begin)
	a.release(s.End)
	a.lists--
	return nil
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (a *Arena) terminate(b, e Ref, tb, te float64, covered bool, emit func(Wedge) error) error {
	if a.nodes[b].next == e {
		return nil
	}
	level := int(max(a.nodes[b].level, a.nodes[e].level)) + 1
	m := a.FindByLevel(b, e, level)
	if m == 0 {
		return fmt.Errorf("%w: no level %d median between %v and %v", ErrMismatch, level, a.nodes[b].p, a.nodes[e].p)
	}
	tm := (tb + te) / 2
	if n := &a.nodes[m]; n.divideCount == 1 && !covered {
		o := sign(raster.Orient(a.nodes[b].p, a.nodes[e].p, n.p))
		switch {
		case o == 0:
		case n.side != 0 && o != int(n.side):
			covered = true
		default:
			w := Wedge{
				P:     [3]fixed.Point26_6{a.nodes[b].p, n.p, a.nodes[e].p},
				T:     [3]float64{tb, tm, te},
				Level: level,
			}
			if err := emit(w); err != nil {
				return err
			}
		}
	}
	if err := a.terminate(b, m, tb, tm, covered, emit); err != nil {
		return err
	}
	if err := a.terminate(m, e, tm, te, covered, emit); err != nil {
		return err
	}
	a.nodes[b].next = e
	a.nodes[e].prev = b
	a.release(m)
	return nil
}
