package allocator

import "unsafe"

// Free releases a pointer previously returned by Allocate. A nil
// pointer is a no-op. Freeing anything else -- a pointer already freed,
// an interior pointer, or one never returned by this heap -- is
// detected via the block's state byte and is fatal.
func (h *Heap) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	b := headerFromPayload(ptr)
	if !b.isAllocated() {
		reportFatal("double free or invalid pointer %#x (state=%s)", ptr, b.state)
	}

	l := b.left()
	r := b.right()

	// Mark b free before coalescing so that a repeated Free of ptr is
	// caught even when b is absorbed into its free left neighbor below.
	b.state = stateFree

	h.freeCount++
	h.totalFreed += b.size

	switch {
	case !l.isFree() && !r.isFree():
		h.freeIsolated(b)
	case l.isFree() && !r.isFree():
		h.freeExtendLeft(b, l, r)
	case !l.isFree() && r.isFree():
		h.freeExtendRight(b, r)
	default:
		h.freeExtendBoth(b, l, r)
	}

	if h.config.EnableVerifyOnFree && !h.verifyLocked() {
		reportFatal("heap corruption detected after freeing %#x", ptr)
	}
}

// freeIsolated handles the case where neither neighbor is free: there is
// no coalescing opportunity, so b simply becomes free.
func (h *Heap) freeIsolated(b *header) {
	h.freeLists.insert(b)
}

// freeExtendLeft handles a free left neighbor with an allocated right
// neighbor: absorb b into its free left neighbor.
func (h *Heap) freeExtendLeft(b, l, r *header) {
	oldSize := l.size
	l.size += b.size
	r.leftSize = l.size
	h.freeLists.rebucketIfNeeded(l, oldSize)
}

// freeExtendRight handles an allocated left neighbor with a free right
// neighbor: absorb the free right neighbor into b.
func (h *Heap) freeExtendRight(b, r *header) {
	h.freeLists.remove(r)

	b.size += r.size
	b.right().leftSize = b.size
	h.freeLists.insert(b)
}

// freeExtendBoth handles two free neighbors: absorb both into l, the
// sole surviving block.
func (h *Heap) freeExtendBoth(b, l, r *header) {
	h.freeLists.remove(r)

	oldSize := l.size
	l.size += b.size + r.size
	l.right().leftSize = l.size
	h.freeLists.rebucketIfNeeded(l, oldSize)
}
