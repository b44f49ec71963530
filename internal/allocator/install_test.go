package allocator

import "testing"

func TestGrowHeapGluesContiguousChunks(t *testing.T) {
	source := newBumpSource(1 << 20)

	h, err := NewHeapWithSource(source, WithArenaSize(4096))
	if err != nil {
		t.Fatalf("NewHeapWithSource: %v", err)
	}

	if len(h.chunks) != 1 {
		t.Fatalf("expected one chunk after construction, got %d", len(h.chunks))
	}

	if err := h.growHeap(4096); err != nil {
		t.Fatalf("growHeap: %v", err)
	}

	// A contiguous grow should glue into the existing chunk record rather
	// than appending a second one.
	if len(h.chunks) != 1 {
		t.Fatalf("expected glued growth to keep a single chunk record, got %d", len(h.chunks))
	}

	if !h.Verify() {
		t.Fatalf("heap failed verification after glued growth")
	}
}

func TestGrowHeapIslandForNonContiguousChunks(t *testing.T) {
	source := &gappedSource{inner: newBumpSource(1 << 20), gap: 4096}

	h, err := NewHeapWithSource(source, WithArenaSize(4096))
	if err != nil {
		t.Fatalf("NewHeapWithSource: %v", err)
	}

	if err := h.growHeap(4096); err != nil {
		t.Fatalf("growHeap: %v", err)
	}

	if len(h.chunks) != 2 {
		t.Fatalf("expected non-contiguous growth to append a second chunk record, got %d", len(h.chunks))
	}

	if !h.Verify() {
		t.Fatalf("heap failed verification after island growth")
	}
}

func TestGlueChunkInsertsMergedBlockAfterAllocatedNeighbor(t *testing.T) {
	source := newBumpSource(1 << 20)

	h, err := NewHeapWithSource(source, WithArenaSize(4096))
	if err != nil {
		t.Fatalf("NewHeapWithSource: %v", err)
	}

	// Consume the entire first chunk's interior so the block abutting the
	// shared fencepost is allocated, not free; this exercises glueChunk's
	// "insert new merged block" branch instead of the "extend t" branch.
	// tryAllocate is used rather than Allocate, which would grow the heap.
	req := h.requestSize(32)
	for {
		if h.tryAllocate(req) == nil {
			break
		}
	}

	chunksBefore := len(h.chunks)

	if err := h.growHeap(4096); err != nil {
		t.Fatalf("growHeap: %v", err)
	}

	if len(h.chunks) != chunksBefore {
		t.Fatalf("glued growth should not add a chunk record")
	}

	if !h.Verify() {
		t.Fatalf("heap failed verification after glue-with-allocated-neighbor")
	}

	// There should now be more room: the new chunk's interior plus the
	// reclaimed fencepost bytes.
	if h.Allocate(32) == nil {
		t.Fatalf("expected the glued chunk to provide fresh free space")
	}
}

func TestIslandChunkInteriorIsUsable(t *testing.T) {
	source := &gappedSource{inner: newBumpSource(1 << 20), gap: 8192}

	h, err := NewHeapWithSource(source, WithArenaSize(4096))
	if err != nil {
		t.Fatalf("NewHeapWithSource: %v", err)
	}

	if err := h.growHeap(4096); err != nil {
		t.Fatalf("growHeap: %v", err)
	}

	p := h.Allocate(2000)
	if p == nil {
		t.Fatalf("expected island chunk's interior to satisfy an allocation")
	}
}
