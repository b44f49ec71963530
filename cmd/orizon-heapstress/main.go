// Command orizon-heapstress drives concurrent allocation traces against
// a single heap for a fixed duration, periodically verifying structural
// integrity and reporting statistics -- the allocator's counterpart to
// cmd/orizon-fuzz's duration/seed/parallelism-driven harness.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orizon-lang/orizon-heap/internal/allocator"
	"github.com/orizon-lang/orizon-heap/internal/alloctrace"
)

func main() {
	var (
		dur        time.Duration
		seed       int64
		par        int
		steps      int
		verifyStep int
		printStats bool
		jsonStats  string
	)

	flag.DurationVar(&dur, "duration", 5*time.Second, "stress duration")
	flag.Int64Var(&seed, "seed", 0, "random seed (0=time)")
	flag.IntVar(&par, "p", 4, "parallel workers")
	flag.IntVar(&steps, "steps", 5000, "trace length per worker pass")
	flag.IntVar(&verifyStep, "verify-every", 0, "verify the heap every N steps within a worker (0=only at the end)")
	flag.BoolVar(&printStats, "stats", false, "print execution statistics at end")
	flag.StringVar(&jsonStats, "json-stats", "", "write statistics as JSON to file")
	flag.Parse()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	h, err := allocator.NewHeap()
	if err != nil {
		fatal("failed to construct heap: ", err)
	}

	var (
		passes   uint64
		failures uint64
		wg       sync.WaitGroup
	)

	stop := make(chan struct{})
	start := time.Now()

	for w := 0; w < par; w++ {
		wg.Add(1)

		go func(workerSeed int64) {
			defer wg.Done()

			for pass := 0; ; pass++ {
				select {
				case <-stop:
					return
				default:
				}

				trace := alloctrace.Generate(workerSeed+int64(pass), steps)
				if err := alloctrace.Replay(h, trace, verifyStep); err != nil {
					atomic.AddUint64(&failures, 1)
					fmt.Fprintln(os.Stderr, "orizon-heapstress:", err)

					return
				}

				atomic.AddUint64(&passes, 1)
			}
		}(seed + int64(w)*1_000_003)
	}

	time.AfterFunc(dur, func() { close(stop) })
	wg.Wait()

	elapsed := time.Since(start)
	clean := h.Verify()

	if !clean {
		fmt.Fprintln(os.Stderr, "orizon-heapstress: final Verify failed")
	}

	if printStats {
		stats := h.Stats()
		fmt.Printf("passes=%d failures=%d duration=%s verify_clean=%t allocations=%d frees=%d chunks=%d\n",
			atomic.LoadUint64(&passes), atomic.LoadUint64(&failures), elapsed.Truncate(time.Millisecond),
			clean, stats.AllocationCount, stats.FreeCount, stats.ChunkCount)
	}

	if jsonStats != "" {
		stats := h.Stats()
		body := fmt.Sprintf(
			"{\"passes\":%d,\"failures\":%d,\"duration_ms\":%d,\"verify_clean\":%t,\"allocations\":%d,\"frees\":%d,\"chunks\":%d}\n",
			atomic.LoadUint64(&passes), atomic.LoadUint64(&failures), elapsed.Milliseconds(),
			clean, stats.AllocationCount, stats.FreeCount, stats.ChunkCount)

		if err := os.WriteFile(jsonStats, []byte(body), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "orizon-heapstress: failed to write json-stats:", err)
		}
	}

	if !clean || atomic.LoadUint64(&failures) > 0 {
		os.Exit(1)
	}
}

func fatal(a ...any) {
	fmt.Fprintln(os.Stderr, a...)
	os.Exit(1)
}
