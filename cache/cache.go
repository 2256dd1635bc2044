package cache

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/meshshade/devcolor"
)

const (
	// Capacity is the number of usable entries.
	Capacity = 256

	// numBuckets is the number of hash chains.
	numBuckets = 16

	tableSize = Capacity + 1
)

var (
	// ErrAllocation is returned by New when the buffers cannot be sized.
	ErrAllocation = errors.New("cache: allocation failure")

	// ErrNoFractional is returned by Fractional when the cache was created
	// without fractional buffers.
	ErrNoFractional = errors.New("cache: fractional colors not enabled")

	// ErrSlot is returned for a slot outside [1, Capacity] or one without
	// a stored color.
	ErrSlot = errors.New("cache: invalid slot")
)

// ColorSpace is the part of a color space the cache needs.
type ColorSpace interface {
	NumComponents() int
}

// LayoutProvider reports the color layout of a device.
type LayoutProvider interface {
	ColorLayout() devcolor.Layout
}

// Result is the outcome of a Lookup.
type Result struct {
	// Slot identifies the entry. On a miss the caller resolves the device
	// color and passes it to Store with this slot.
	Slot int

	// Hit is true when Color holds the cached device color.
	Hit bool

	// Color is the cached device color, valid on a hit.
	Color devcolor.Color
}

// Stats holds lookup counters.
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
}

// Cache maps paint tuples to device colors.
type Cache struct {
	n      int
	paint  []float64
	nfrac  int
	frac   []int32
	layout devcolor.Layout

	table  []entry
	colors []devcolor.Color
	heads  [numBuckets]slot
	touch  touchList
	used   int

	stats Stats
}

// New creates a cache for paint tuples of cs and device colors of dev.
// A non-nil trans replaces dev as the source of the device layout, as when
// drawing into a transparency group. With wantFractional the cache also
// keeps 31-bit fractional device components for linear fast paths.
func New(cs ColorSpace, dev, trans LayoutProvider, wantFractional bool) (*Cache, error) {
	if cs == nil || dev == nil {
		return nil, fmt.Errorf("%w: missing color space or device", ErrAllocation)
	}
	n := cs.NumComponents()
	if n <= 0 || n > devcolor.MaxComponents {
		return nil, fmt.Errorf("%w: %d paint components", ErrAllocation, n)
	}
	target := dev
	if trans != nil {
		target = trans
	}
	layout := target.ColorLayout()
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	c := &Cache{
		n:      n,
		paint:  make([]float64, tableSize*n),
		layout: layout,
		table:  make([]entry, tableSize),
		colors: make([]devcolor.Color, tableSize),
	}
	for i := range c.table {
		c.table[i].bucket = -1
	}
	if wantFractional {
		c.nfrac = layout.NumComponents
		c.frac = make([]int32, tableSize*c.nfrac)
	}
	return c, nil
}

// Destroy drops all buffers. The cache must not be used afterwards.
func (c *Cache) Destroy() {
	c.paint = nil
	c.frac = nil
	c.table = nil
	c.colors = nil
	c.heads = [numBuckets]slot{}
	c.touch = touchList{}
	c.used = 0
}

// Layout returns the device layout the cache was created for.
func (c *Cache) Layout() devcolor.Layout {
	return c.layout
}

// Len returns the number of occupied entries.
func (c *Cache) Len() int {
	return c.touch.len
}

// Stats returns the lookup counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Lookup finds paint in the cache. paint must hold NumComponents values;
// they are compared bit for bit.
//
// On a hit the entry becomes the most recently used. On a miss a slot is
// claimed, evicting the least recently used entry once the table is full,
// and the caller completes it with Store.
func (c *Cache) Lookup(paint []float64) Result {
	b := hash(paint)
	if h := c.heads[b]; h != 0 {
		s := h
		for {
			if c.equal(s, paint) {
				if s != h {
					chainRemove(c.table, &c.heads, s)
					chainInsert(c.table, &c.heads, b, s)
				}
				c.touch.moveToFront(c.table, s)
				if c.table[s].hasColor {
					c.stats.Hits++
					return Result{Slot: int(s), Hit: true, Color: c.colors[s]}
				}
				// Claimed by an earlier miss that was never stored.
				c.stats.Misses++
				return Result{Slot: int(s)}
			}
			s = c.table[s].next
			if s == h {
				break
			}
		}
	}

	var s slot
	if c.used < Capacity {
		c.used++
		s = slot(c.used)
	} else {
		s = c.touch.tail
		c.touch.unlink(c.table, s)
		chainRemove(c.table, &c.heads, s)
		c.stats.Evictions++
	}

	e := &c.table[s]
	e.fracValid = false
	e.hasColor = false
	c.colors[s] = nil
	copy(c.paint[int(s)*c.n:int(s+1)*c.n], paint)
	chainInsert(c.table, &c.heads, b, s)
	c.touch.pushFront(c.table, s)
	c.stats.Misses++
	return Result{Slot: int(s)}
}

// Store records the device color for slot.
func (c *Cache) Store(s int, col devcolor.Color) error {
	if s <= 0 || s > c.used {
		return fmt.Errorf("%w: %d", ErrSlot, s)
	}
	c.colors[s] = col
	c.table[s].hasColor = col != nil
	c.table[s].fracValid = false
	return nil
}

// Fractional returns the device color in slot as 31-bit fractions, one per
// device component, computing them on first use. The returned slice is
// owned by the cache and valid until the slot is evicted.
//
// Colors that are neither packed nor DevN yield [devcolor.ErrNotPureOrDevN].
func (c *Cache) Fractional(s int) ([]int32, error) {
	if c.frac == nil {
		return nil, ErrNoFractional
	}
	if s <= 0 || s > c.used || !c.table[s].hasColor {
		return nil, fmt.Errorf("%w: %d", ErrSlot, s)
	}
	buf := c.frac[s*c.nfrac : (s+1)*c.nfrac]
	if !c.table[s].fracValid {
		if err := c.layout.Fractional(c.colors[s], buf); err != nil {
			return nil, err
		}
		c.table[s].fracValid = true
	}
	return buf, nil
}

func (c *Cache) equal(s slot, paint []float64) bool {
	stored := c.paint[int(s)*c.n : int(s+1)*c.n]
	if len(paint) != len(stored) {
		return false
	}
	for i, v := range paint {
		if math.Float64bits(v) != math.Float64bits(stored[i]) {
			return false
		}
	}
	return true
}

// hash folds the component bits into a 64-bit polynomial hash, then folds
// the hash bytes into a bucket index.
func hash(paint []float64) int {
	var h uint64
	for _, v := range paint {
		h = h*997 + math.Float64bits(v)
	}
	var hh uint32
	for i := 0; i < 8; i++ {
		hh = hh*31 + uint32(byte(h>>(8*i)))
	}
	return int(hh % numBuckets)
}
