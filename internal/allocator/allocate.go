package allocator

import "unsafe"

// requestSize rounds a caller's requested payload size up to the block
// size that will actually be carved out of a free list: room for the
// header plus at least n payload bytes, rounded up to alignment. The
// header carries the free-list link fields as dedicated struct fields,
// so every block, free or allocated, already has room for them without
// inflating n any further.
func (h *Heap) requestSize(n uintptr) uintptr {
	return alignUp(n+headerSize, h.config.Alignment)
}

// Allocate returns a pointer to n writable, uninitialized bytes aligned
// to h.config.Alignment, or nil if n == 0 or the heap cannot be grown
// further.
func (h *Heap) Allocate(n uintptr) unsafe.Pointer {
	if n == 0 {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	req := h.requestSize(n)

	for {
		if ptr := h.tryAllocate(req); ptr != nil {
			h.allocCount++
			h.totalAllocated += headerFromPayload(ptr).size

			return ptr
		}

		if err := h.growForRequest(req); err != nil {
			return nil
		}
	}
}

// tryAllocate searches the current free lists for a block big enough to
// satisfy req, without touching the chunk source. It walks the exact
// size classes at or above req's class first, falling back to a linear
// scan of the catch-all class. Returns nil if no block large enough is
// currently free.
func (h *Heap) tryAllocate(req uintptr) unsafe.Pointer {
	n := h.freeLists.numLists()

	for i := h.freeLists.classFor(req); i < n-1; i++ {
		if h.freeLists.empty(i) {
			continue
		}

		f := h.freeLists.sentinel(i).next
		switch {
		case f.size == req:
			return h.useWhole(f)
		case f.size > req:
			return h.split(f, req)
		default:
			// Exact classes are kept strictly homogeneous by classIndex,
			// so this never triggers; skip defensively.
			continue
		}
	}

	catchAll := n - 1
	sentinel := h.freeLists.sentinel(catchAll)
	for f := sentinel.next; f != sentinel; f = f.next {
		if f.size < req {
			continue
		}

		if f.size == req {
			return h.useWhole(f)
		}

		return h.split(f, req)
	}

	return nil
}

// useWhole hands the entirety of a free block f to the caller without
// splitting it.
func (h *Heap) useWhole(f *header) unsafe.Pointer {
	h.freeLists.remove(f)
	f.state = stateAllocated

	return f.payload()
}

// split carves the right req bytes of f off as the allocation, keeping
// the lower address (the remainder) in place when its size class
// doesn't change.
func (h *Heap) split(f *header, req uintptr) unsafe.Pointer {
	d := f.size - req
	if d < 2*headerSize {
		return h.useWhole(f)
	}

	oldSize := f.size
	f.size = d

	r := f.right()
	r.size = req
	r.state = stateAllocated
	r.leftSize = d
	r.prev, r.next = nil, nil

	right := r.right()
	right.leftSize = req

	h.freeLists.rebucketIfNeeded(f, oldSize)

	return r.payload()
}
