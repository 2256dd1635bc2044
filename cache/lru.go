package cache

// slot indexes the entry table. Slot 0 is the sentinel.
type slot uint16

// entry is one cached conversion. Paint and fractional values live in the
// cache's flat buffers at the entry's slot offset.
type entry struct {
	bucket    int8 // -1 while free
	fracValid bool
	hasColor  bool

	// Circular hash chain.
	next, prev slot

	// Touch list: newer points towards the head.
	newer, older slot
}

// touchList is a doubly linked recency list over table slots.
// The head is the most recently used entry, the tail the least.
type touchList struct {
	head, tail slot
	len        int
}

// pushFront links s at the head.
func (l *touchList) pushFront(t []entry, s slot) {
	t[s].newer = 0
	t[s].older = l.head
	if l.head != 0 {
		t[l.head].newer = s
	} else {
		l.tail = s
	}
	l.head = s
	l.len++
}

// moveToFront promotes s to the head.
func (l *touchList) moveToFront(t []entry, s slot) {
	if l.head == s {
		return
	}
	l.unlink(t, s)
	l.pushFront(t, s)
}

// unlink removes s from the list.
func (l *touchList) unlink(t []entry, s slot) {
	e := &t[s]
	if e.newer != 0 {
		t[e.newer].older = e.older
	} else {
		l.head = e.older
	}
	if e.older != 0 {
		t[e.older].newer = e.newer
	} else {
		l.tail = e.newer
	}
	e.newer, e.older = 0, 0
	l.len--
}

// chainInsert links s as the head of bucket b.
func chainInsert(t []entry, heads *[numBuckets]slot, b int, s slot) {
	h := heads[b]
	if h == 0 {
		t[s].next, t[s].prev = s, s
	} else {
		tail := t[h].prev
		t[s].next, t[s].prev = h, tail
		t[tail].next = s
		t[h].prev = s
	}
	heads[b] = s
	t[s].bucket = int8(b)
}

// chainRemove unlinks s from its bucket.
func chainRemove(t []entry, heads *[numBuckets]slot, s slot) {
	b := t[s].bucket
	if b < 0 {
		return
	}
	if t[s].next == s {
		heads[b] = 0
	} else {
		t[t[s].prev].next = t[s].next
		t[t[s].next].prev = t[s].prev
		if heads[b] == s {
			heads[b] = t[s].next
		}
	}
	t[s].next, t[s].prev = 0, 0
	t[s].bucket = -1
}
