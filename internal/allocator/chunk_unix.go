//go:build unix

package allocator

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapChunkSource reserves one large anonymous mapping up front and
// hands out successive slices of it. Because the whole range is
// reserved in a single unix.Mmap call, every region returned by acquire
// is contiguous with the one before it -- the contiguity the chunk
// installer relies on is guaranteed by construction, not merely
// assumed.
type mmapChunkSource struct {
	region []byte
	used   uintptr
}

// newMmapChunkSource reserves capacity bytes of anonymous memory.
func newMmapChunkSource(capacity uintptr) (*mmapChunkSource, error) {
	region, err := unix.Mmap(-1, 0, int(capacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}

	return &mmapChunkSource{region: region}, nil
}

func (m *mmapChunkSource) acquire(size uintptr) (unsafe.Pointer, error) {
	if m.used+size > uintptr(len(m.region)) {
		return nil, errOutOfMemory
	}

	base := unsafe.Pointer(&m.region[m.used])
	m.used += size

	return base, nil
}

func newDefaultChunkSource(capacity uintptr) (chunkSource, error) {
	return newMmapChunkSource(capacity)
}
