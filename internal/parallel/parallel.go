// Package parallel provides the goroutine fan-out used by the CPU kernels
// (row ranges) and by Hogwild training (one closure per worker).
package parallel

import (
	"errors"
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on the CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// Sequential returns a configuration that never spawns goroutines.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1}
}

// chunks returns the size of each range handed to a goroutine, or n when the
// work should run on the calling goroutine.
func (cfg Config) chunks(n int) int {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		return n
	}
	return max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
}

// ForRange splits [0, n) into contiguous ranges and runs fn(lo, hi) on each,
// concurrently when cfg allows it. Ranges are disjoint and cover [0, n).
func ForRange(n int, fn func(lo, hi int), cfg Config) {
	if n <= 0 {
		return
	}
	size := cfg.chunks(n)
	if size >= n {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += size {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, min(lo+size, n))
	}
	wg.Wait()
}

// For executes f(i) for every i in [0, n), see ForRange.
func For(n int, f func(i int), cfg Config) {
	ForRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			f(i)
		}
	}, cfg)
}

// Workers runs fn once per worker id in [0, n), each on its own goroutine,
// and waits for all of them. Errors from every worker are joined.
//
// Hogwild training uses one worker per replica set; each worker owns its
// graph and its gradient-private parameter copies.
func Workers(n int, fn func(worker int) error) error {
	errs := make([]error, n)

	var wg sync.WaitGroup
	for w := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[w] = fn(w)
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
