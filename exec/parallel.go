package exec

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers returns a worker count derived from GOMAXPROCS, the
// fallback used when a caller doesn't pin down an explicit worker count.
func DefaultWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// RunRanges splits [0, n) into up to workers contiguous, disjoint ranges
// and runs fn(lo, hi) for each concurrently, returning the first error (if
// any) after every range has finished. Ranges never overlap, so callers
// writing into per-unit buffers need no locking. A workers or n of 1 or
// less runs fn inline on the calling goroutine.
func RunRanges(workers, n int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 1 || n <= 1 {
		return fn(0, n)
	}
	if workers > n {
		workers = n
	}

	g, _ := errgroup.WithContext(context.Background())
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		start := start
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			return fn(start, end)
		})
	}
	return g.Wait()
}
