package allocator

// defaultNumLists is the default number of free-list size classes:
// defaultNumLists-1 exact-size classes plus one catch-all class at the
// last index.
const defaultNumLists = 59

// classIndex computes the free-list index for a block of the given
// size: lists 0..numLists-2 hold blocks of exactly one size each, class
// numLists-1 is the catch-all for everything larger. size must already
// be a multiple of alignment and at least headerSize.
func classIndex(size, alignment uintptr, numLists int) int {
	idx := int((size-headerSize)/alignment) - 1
	if idx < 0 {
		// Only reachable for a zero-payload block (size == headerSize),
		// which never occurs on a live path: allocate(0) returns nil
		// before reaching this computation, and every split or chunk
		// carries at least one alignment unit of payload.
		idx = 0
	}

	if idx > numLists-1 {
		idx = numLists - 1
	}

	return idx
}

// freeListRegistry is the fixed array of sentinel-anchored circular
// doubly linked lists, one per size class.
type freeListRegistry struct {
	sentinels []header
	alignment uintptr
}

func newFreeListRegistry(numLists int, alignment uintptr) *freeListRegistry {
	r := &freeListRegistry{
		sentinels: make([]header, numLists),
		alignment: alignment,
	}
	for i := range r.sentinels {
		r.sentinels[i].state = stateFree
		r.sentinels[i].prev = &r.sentinels[i]
		r.sentinels[i].next = &r.sentinels[i]
	}

	return r
}

func (r *freeListRegistry) numLists() int { return len(r.sentinels) }

func (r *freeListRegistry) sentinel(idx int) *header {
	return &r.sentinels[idx]
}

func (r *freeListRegistry) classFor(size uintptr) int {
	return classIndex(size, r.alignment, len(r.sentinels))
}

// empty reports whether list idx has no blocks.
func (r *freeListRegistry) empty(idx int) bool {
	s := r.sentinel(idx)

	return s.next == s
}

// insert places b at the head of the list matching its current size.
// O(1). b must not already be linked anywhere.
func (r *freeListRegistry) insert(b *header) {
	idx := r.classFor(b.size)
	s := r.sentinel(idx)

	b.state = stateFree
	b.next = s.next
	b.prev = s
	s.next.prev = b
	s.next = b
}

// insertInto places b at the head of an explicit class, bypassing the
// size-derived lookup. The allocation, free and install paths all use
// insert; insertInto is only called from the registry's tests.
func (r *freeListRegistry) insertInto(idx int, b *header) {
	s := r.sentinel(idx)

	b.state = stateFree
	b.next = s.next
	b.prev = s
	s.next.prev = b
	s.next = b
}

// remove splices b out of whichever list it is currently in, using only
// its own links; no search is required. O(1).
func (r *freeListRegistry) remove(b *header) {
	b.unlink()
}

// rebucketIfNeeded re-links b into the list matching its current size
// if that differs from the list implied by oldSize. Returns true if a
// re-link happened.
func (r *freeListRegistry) rebucketIfNeeded(b *header, oldSize uintptr) bool {
	if classIndex(oldSize, r.alignment, len(r.sentinels)) == r.classFor(b.size) {
		return false
	}

	r.remove(b)
	r.insert(b)

	return true
}
