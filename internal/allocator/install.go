package allocator

// growForRequest requests enough arenas to satisfy req plus the two
// fenceposts a fresh chunk needs, then installs the result into the
// heap topology. Called with h.mu held.
func (h *Heap) growForRequest(req uintptr) error {
	needed := req + 2*headerSize
	arenas := (needed + h.config.ArenaSize - 1) / h.config.ArenaSize
	if arenas < 1 {
		arenas = 1
	}

	return h.growHeap(arenas * h.config.ArenaSize)
}

// growHeap acquires one new chunk of the given size from the chunk
// source and installs it, performing cross-chunk coalescing when the
// new chunk is contiguous with the previously provisioned one.
func (h *Heap) growHeap(size uintptr) error {
	if len(h.chunks) >= h.config.MaxOSChunks {
		return errOutOfMemory
	}

	c, err := acquireChunk(h.source, size)
	if err != nil {
		return err
	}

	if h.base == 0 {
		h.base = c.leftFencepost.addr()
	}

	if h.lastFencepost != nil && h.lastFencepost.addr()+headerSize == c.leftFencepost.addr() {
		h.glueChunk(c)
	} else {
		h.islandChunk(c)
	}

	h.lastFencepost = c.rightFencepost

	return nil
}

// islandChunk records a new chunk as its own independent fenceposted
// region when it isn't contiguous with the heap's existing memory, with
// its whole interior inserted as one large free block.
func (h *Heap) islandChunk(c *chunk) {
	h.chunks = append(h.chunks, c)

	interior := c.leftFencepost.right()
	h.freeLists.insert(interior)
}

// glueChunk absorbs a new chunk that is contiguous with the heap's
// existing memory: the two shared fenceposts (the heap's previous
// rightmost fencepost and the new chunk's leftmost one) are rewritten
// into a single free interior block spanning from just after the
// previous chunk's last live block to just before the new chunk's right
// fencepost.
func (h *Heap) glueChunk(c *chunk) {
	prevLastFP := h.lastFencepost
	t := prevLastFP.left()

	// The bytes occupied by the two now-obsolete fenceposts become
	// extra interior space alongside c's own interior.
	merged := prevLastFP
	merged.size = c.size
	merged.leftSize = t.size
	merged.state = stateFree
	merged.prev, merged.next = nil, nil

	c.rightFencepost.leftSize = merged.size

	if t.isFree() {
		oldSize := t.size
		t.size += merged.size
		c.rightFencepost.leftSize = t.size
		h.freeLists.rebucketIfNeeded(t, oldSize)
	} else {
		h.freeLists.insert(merged)
	}

	// The previous chunk's recorded right boundary has just been
	// rewritten into interior memory; extend that record instead of
	// adding a new one so Verify still walks from a real fencepost to
	// a real fencepost.
	h.chunks[len(h.chunks)-1].rightFencepost = c.rightFencepost
	h.chunks[len(h.chunks)-1].size += c.size
}
