package allocator

import (
	"testing"
	"unsafe"
)

func TestAllocateZeroedClearsMemory(t *testing.T) {
	h := newTestHeap(t)

	p := h.Allocate(64)
	s := unsafe.Slice((*byte)(p), 64)
	for i := range s {
		s[i] = 0xFF
	}

	h.Free(p)

	z := h.AllocateZeroed(8, 8)
	if z == nil {
		t.Fatalf("AllocateZeroed returned nil")
	}

	zs := unsafe.Slice((*byte)(z), 64)
	for i, v := range zs {
		if v != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, v)
		}
	}
}

func TestAllocateZeroedOverflowReturnsNil(t *testing.T) {
	h := newTestHeap(t)

	huge := ^uintptr(0)
	if p := h.AllocateZeroed(2, huge); p != nil {
		t.Fatalf("AllocateZeroed should detect count*size overflow and return nil")
	}
}

func TestReallocateNilActsAsAllocate(t *testing.T) {
	h := newTestHeap(t)

	p := h.Reallocate(nil, 32)
	if p == nil {
		t.Fatalf("Reallocate(nil, 32) should behave like Allocate(32)")
	}
}

func TestReallocateZeroActsAsFree(t *testing.T) {
	h := newTestHeap(t)

	p := h.Allocate(32)
	if h.Reallocate(p, 0) != nil {
		t.Fatalf("Reallocate(p, 0) should return nil")
	}

	if !h.Verify() {
		t.Fatalf("verify failed after Reallocate-as-free")
	}
}

func TestReallocatePreservesContentWhenGrowing(t *testing.T) {
	h := newTestHeap(t)

	p := h.Allocate(16)
	s := unsafe.Slice((*byte)(p), 16)
	for i := range s {
		s[i] = byte(i + 1)
	}

	grown := h.Reallocate(p, 64)
	if grown == nil {
		t.Fatalf("Reallocate to a larger size failed")
	}

	gs := unsafe.Slice((*byte)(grown), 16)
	for i := range gs {
		if gs[i] != byte(i+1) {
			t.Fatalf("byte %d = %d, want %d after growing reallocation", i, gs[i], byte(i+1))
		}
	}
}

func TestReallocatePreservesContentWhenShrinking(t *testing.T) {
	h := newTestHeap(t)

	p := h.Allocate(64)
	s := unsafe.Slice((*byte)(p), 64)
	for i := range s {
		s[i] = byte(i)
	}

	shrunk := h.Reallocate(p, 8)
	if shrunk == nil {
		t.Fatalf("Reallocate to a smaller size failed")
	}

	ss := unsafe.Slice((*byte)(shrunk), 8)
	for i := range ss {
		if ss[i] != byte(i) {
			t.Fatalf("byte %d = %d, want %d after shrinking reallocation", i, ss[i], byte(i))
		}
	}
}

func TestStatsTracksAllocationsAndFrees(t *testing.T) {
	h := newTestHeap(t)

	a := h.Allocate(64)
	h.Allocate(128)
	h.Free(a)

	stats := h.Stats()
	if stats.AllocationCount != 2 {
		t.Fatalf("AllocationCount = %d, want 2", stats.AllocationCount)
	}

	if stats.FreeCount != 1 {
		t.Fatalf("FreeCount = %d, want 1", stats.FreeCount)
	}

	if stats.BytesInUse != stats.TotalAllocated-stats.TotalFreed {
		t.Fatalf("BytesInUse inconsistent with TotalAllocated/TotalFreed")
	}

	if stats.ChunkCount < 1 {
		t.Fatalf("ChunkCount should be at least 1")
	}
}
