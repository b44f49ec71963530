package allocator

import (
	"fmt"
	"sync"
)

// Config configures a Heap. The zero value is never used directly;
// construct one via defaultConfig and the With* options.
type Config struct {
	// Alignment is the byte alignment every block size is a multiple of.
	Alignment uintptr
	// NumLists is N: NumLists-1 exact-size free-list classes plus one
	// catch-all class.
	NumLists int
	// ArenaSize is the granularity of each OS chunk request.
	ArenaSize uintptr
	// MaxOSChunks bounds how many chunk records Verify will track.
	MaxOSChunks int
	// ReservedCapacity is how much address space the chunk source
	// reserves up front (a single mmap/buffer allocation); acquire
	// calls beyond this return errOutOfMemory. This stands in for
	// "the OS refuses more memory" in an environment where unbounded
	// anonymous mappings aren't a realistic test fixture.
	ReservedCapacity uintptr
	// EnableVerifyOnFree re-runs Verify after every Free. Expensive;
	// intended for tests and the stress CLI, off by default.
	EnableVerifyOnFree bool
}

type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		Alignment:        8,
		NumLists:         defaultNumLists,
		ArenaSize:        4096,
		MaxOSChunks:      1024,
		ReservedCapacity: 256 * 1024 * 1024,
	}
}

func WithAlignment(a uintptr) Option {
	return func(c *Config) { c.Alignment = a }
}

func WithNumLists(n int) Option {
	return func(c *Config) { c.NumLists = n }
}

func WithArenaSize(size uintptr) Option {
	return func(c *Config) { c.ArenaSize = size }
}

func WithMaxOSChunks(n int) Option {
	return func(c *Config) { c.MaxOSChunks = n }
}

func WithReservedCapacity(n uintptr) Option {
	return func(c *Config) { c.ReservedCapacity = n }
}

func WithVerifyOnFree(enabled bool) Option {
	return func(c *Config) { c.EnableVerifyOnFree = enabled }
}

// Heap holds all state for one boundary-tagged heap: the free-list
// registry, the ordered chunk record, lastFencepost for cross-chunk
// coalescing, and the mutex serializing every public entry point.
type Heap struct {
	mu sync.Mutex

	config    *Config
	source    chunkSource
	freeLists *freeListRegistry
	chunks    []*chunk

	// lastFencepost is the rightmost fencepost of the most recently
	// provisioned chunk, used by the installer's contiguity test.
	lastFencepost *header
	// base is retained only for diagnostics -- the address of the first
	// byte ever handed out by the chunk source.
	base uintptr

	allocCount     uint64
	freeCount      uint64
	totalAllocated uintptr
	totalFreed     uintptr
}

// NewHeap constructs a standalone heap with one initial chunk already
// installed. Most tests use this directly rather than the package-level
// global, so concurrent test cases never share mutable state.
func NewHeap(options ...Option) (*Heap, error) {
	config := defaultConfig()
	for _, opt := range options {
		opt(config)
	}

	if config.NumLists < 1 {
		return nil, fmt.Errorf("allocator: NumLists must be >= 1, got %d", config.NumLists)
	}

	source, err := newDefaultChunkSource(config.ReservedCapacity)
	if err != nil {
		return nil, fmt.Errorf("allocator: failed to create chunk source: %w", err)
	}

	h := &Heap{
		config:    config,
		source:    source,
		freeLists: newFreeListRegistry(config.NumLists, config.Alignment),
	}

	if err := h.growHeap(config.ArenaSize); err != nil {
		return nil, fmt.Errorf("allocator: failed to install initial chunk: %w", err)
	}

	return h, nil
}

// NewHeapWithSource is used by tests that need to control exactly what
// the chunk source returns, e.g. to force the island branch of the
// cross-chunk coalescer by handing back non-contiguous regions.
func NewHeapWithSource(source chunkSource, options ...Option) (*Heap, error) {
	config := defaultConfig()
	for _, opt := range options {
		opt(config)
	}

	h := &Heap{
		config:    config,
		source:    source,
		freeLists: newFreeListRegistry(config.NumLists, config.Alignment),
	}

	if err := h.growHeap(config.ArenaSize); err != nil {
		return nil, err
	}

	return h, nil
}

var (
	globalOnce sync.Once
	globalHeap *Heap
	globalErr  error
)

// globalHeapInstance lazily constructs the process-wide heap exactly
// once, so package-level callers never need a separate initialization
// step before the first Allocate/Free.
func globalHeapInstance() *Heap {
	globalOnce.Do(func() {
		globalHeap, globalErr = NewHeap()
	})

	if globalErr != nil {
		reportFatal("allocator: failed to initialize global heap: %v", globalErr)
	}

	return globalHeap
}

// GlobalHeap returns the process-wide heap instance backing the
// package-level Allocate/Free/... functions, for callers that want the
// *Heap itself rather than the free-function wrappers (e.g. to call
// Stats or Verify directly).
func GlobalHeap() *Heap {
	return globalHeapInstance()
}
