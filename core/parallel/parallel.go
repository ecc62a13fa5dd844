// Package parallel provides CPU-bound helpers for splitting index ranges
// across worker goroutines. Results must be written to index-separated
// slots so that parallel execution is observationally identical to
// sequential execution.
package parallel

import (
	"runtime"
	"sync"
)

// For splits [0, items) into contiguous chunks, one per worker, and runs
// fn(start, end) concurrently for each chunk. It blocks until every chunk
// is done. The number of workers never exceeds GOMAXPROCS or items.
func For(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > items {
		workers = items
	}

	// Ceiling division so the last chunk is never starved.
	chunk := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunk {
		end := start + chunk
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ForWithThreshold runs fn sequentially when items is at or below the
// threshold, and falls back to For otherwise. Small inputs are not worth
// the goroutine overhead.
func ForWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	For(items, fn)
}
