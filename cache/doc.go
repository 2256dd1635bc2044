// Package cache memoizes paint color to device color conversions during a
// shading fill.
//
// A [Cache] holds a fixed number of entries (256) keyed by the raw bit
// patterns of a paint tuple. Entries are spread over 16 hash chains and
// threaded on a touch list ordered by recency; when the table is full the
// least recently touched entry is evicted.
//
//	c, err := cache.New(cs, dev, nil, true)
//	if err != nil {
//		return err
//	}
//	defer c.Destroy()
//
//	r := c.Lookup(paint)
//	if !r.Hit {
//		dc, err := remap(paint)
//		if err != nil {
//			return err
//		}
//		c.Store(r.Slot, dc)
//	}
//
// # Slots
//
// Entries live in a flat table indexed by slot number. Slot 0 is a sentinel
// that terminates the touch list and marks an empty chain, so valid slots
// are 1 through [Capacity]. A slot returned by a missed lookup stays valid
// until the next Lookup call.
//
// # Thread Safety
//
// A Cache is owned by a single fill call and is not safe for concurrent use.
package cache
