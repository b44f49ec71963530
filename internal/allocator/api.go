package allocator

import "unsafe"

// HeapStats is a snapshot of a heap's bookkeeping counters.
type HeapStats struct {
	AllocationCount uint64
	FreeCount       uint64
	TotalAllocated  uintptr
	TotalFreed      uintptr
	BytesInUse      uintptr
	ChunkCount      int
}

// payloadSize returns the usable byte count of a live allocation,
// locking only long enough to read the header.
func (h *Heap) payloadSize(ptr unsafe.Pointer) uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()

	b := headerFromPayload(ptr)

	return b.size - headerSize
}

// AllocateZeroed is Allocate(count*size) followed by zeroing the
// returned bytes.
func (h *Heap) AllocateZeroed(count, size uintptr) unsafe.Pointer {
	total := count * size
	if count != 0 && total/count != size {
		return nil // overflow
	}

	ptr := h.Allocate(total)
	if ptr != nil {
		zeroBytes(ptr, total)
	}

	return ptr
}

// Reallocate allocates size new bytes, copies min(size, original size)
// bytes from ptr, frees ptr, and returns the new pointer. Copying only
// the smaller of the two sizes avoids reading past the end of the
// original allocation when growing.
func (h *Heap) Reallocate(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	if ptr == nil {
		return h.Allocate(size)
	}

	if size == 0 {
		h.Free(ptr)

		return nil
	}

	oldSize := h.payloadSize(ptr)

	newPtr := h.Allocate(size)
	if newPtr == nil {
		return nil
	}

	n := size
	if oldSize < n {
		n = oldSize
	}

	copyBytes(newPtr, ptr, n)
	h.Free(ptr)

	return newPtr
}

// Stats reports a snapshot of the heap's bookkeeping counters.
func (h *Heap) Stats() HeapStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	return HeapStats{
		AllocationCount: h.allocCount,
		FreeCount:       h.freeCount,
		TotalAllocated:  h.totalAllocated,
		TotalFreed:      h.totalFreed,
		BytesInUse:      h.totalAllocated - h.totalFreed,
		ChunkCount:      len(h.chunks),
	}
}

// Package-level entry points delegating to the lazily-initialized
// global heap, for callers that don't need a private *Heap.

func Allocate(size uintptr) unsafe.Pointer {
	return globalHeapInstance().Allocate(size)
}

func Free(ptr unsafe.Pointer) {
	globalHeapInstance().Free(ptr)
}

func AllocateZeroed(count, size uintptr) unsafe.Pointer {
	return globalHeapInstance().AllocateZeroed(count, size)
}

func Reallocate(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	return globalHeapInstance().Reallocate(ptr, size)
}

func Verify() bool {
	return globalHeapInstance().Verify()
}

func Stats() HeapStats {
	return globalHeapInstance().Stats()
}
