// Package worker provides a generic keyed worker pool for fan-out/fan-in
// dispatch. Used by the caller package to run backend calls for several
// models concurrently with bounded parallelism.
package worker

import (
	"runtime"
	"sync"
)

// Pool fans out one unit of work per key to a fixed number of goroutine
// workers and collects one value per key. Values carry their own failure
// state; the pool never short-circuits on an individual failure.
type Pool[K comparable, V any] struct {
	concurrency int
}

// NewPool creates a worker pool with the given concurrency.
// If concurrency <= 0, defaults to runtime.NumCPU().
func NewPool[K comparable, V any](concurrency int) *Pool[K, V] {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Pool[K, V]{concurrency: concurrency}
}

// Collect applies fn to every key concurrently and returns a map with
// exactly one entry per key. Completion order is irrelevant: results are
// keyed, never positional.
func (p *Pool[K, V]) Collect(keys []K, fn func(K) V) map[K]V {
	if len(keys) == 0 {
		return nil
	}

	// Cap concurrency to number of keys
	workers := p.concurrency
	if workers > len(keys) {
		workers = len(keys)
	}

	jobs := make(chan K, len(keys))
	results := make(map[K]V, len(keys))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range jobs {
				v := fn(k)
				mu.Lock()
				results[k] = v
				mu.Unlock()
			}
		}()
	}

	for _, k := range keys {
		jobs <- k
	}
	close(jobs)

	wg.Wait()

	return results
}
