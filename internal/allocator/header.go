// Package allocator implements a boundary-tagged heap: segregated free
// lists, chunk-splitting on allocation, and immediate-neighbor coalescing
// on free, with cross-chunk coalescing when the OS hands back contiguous
// memory.
package allocator

import "unsafe"

// blockState tags what a header describes.
type blockState uint32

const (
	stateFree blockState = iota
	stateAllocated
	stateFencepost
)

func (s blockState) String() string {
	switch s {
	case stateFree:
		return "free"
	case stateAllocated:
		return "allocated"
	case stateFencepost:
		return "fencepost"
	default:
		return "invalid"
	}
}

// header is the in-place metadata prefixing every block: allocated,
// free, or fencepost. prev/next are only meaningful while state ==
// stateFree; they anchor the block in exactly one free list.
type header struct {
	size     uintptr
	leftSize uintptr
	state    blockState
	prev     *header
	next     *header
}

// headerSize is |H| from the specification: every block's size must be a
// multiple of alignment and at least headerSize; a fencepost's size is
// exactly headerSize.
const headerSize = unsafe.Sizeof(header{})

// HeaderSize exposes |H| read-only to callers that need to reason about
// per-allocation overhead.
const HeaderSize = headerSize

// headerAt views the bytes starting at p as a header. p must be the base
// address of a block (not a payload pointer).
func headerAt(p unsafe.Pointer) *header {
	return (*header)(p)
}

// payload returns the address handed to the caller for an allocated block.
func (h *header) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(h), headerSize)
}

// headerFromPayload recovers a header from a pointer previously returned
// to a caller by allocate.
func headerFromPayload(p unsafe.Pointer) *header {
	return (*header)(unsafe.Add(p, -int(headerSize)))
}

// right returns the header of the block immediately following h in
// address order. Valid for every block except the rightmost fencepost of
// a chunk (there is no block beyond it).
func (h *header) right() *header {
	return (*header)(unsafe.Add(unsafe.Pointer(h), h.size))
}

// left returns the header of the block immediately preceding h, or nil
// if h.leftSize is zero. A left fencepost's leftSize is headerSize by
// convention, so left() on it points outside its chunk.
func (h *header) left() *header {
	if h.leftSize == 0 {
		return nil
	}

	return (*header)(unsafe.Add(unsafe.Pointer(h), -int(h.leftSize)))
}

// addr reports h's address as a comparable/orderable integer, used for
// the chunk-contiguity test and for logging.
func (h *header) addr() uintptr {
	return uintptr(unsafe.Pointer(h))
}

// isFree, isAllocated, isFencepost are small readability helpers used
// throughout the coalescing decision table.
func (h *header) isFree() bool      { return h.state == stateFree }
func (h *header) isAllocated() bool { return h.state == stateAllocated }
func (h *header) isFencepost() bool { return h.state == stateFencepost }

// unlink detaches h from whatever circular list it currently sits in,
// using only its own prev/next links. O(1); callers must know h is
// currently linked (state == stateFree and prev/next non-nil).
func (h *header) unlink() {
	h.prev.next = h.next
	h.next.prev = h.prev
	h.prev = nil
	h.next = nil
}
