// Package parallel splits flat-buffer loops of the CPU backend across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum elements per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Sequential returns a config that never spawns goroutines.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// normalize fills zero fields so callers may pass a partially set Config.
func (c Config) normalize() Config {
	if c.NumWorkers <= 0 {
		c.NumWorkers = runtime.NumCPU()
	}
	if c.MinChunkSize <= 0 {
		c.MinChunkSize = 1
	}
	return c
}

// Range executes f over contiguous half-open chunks [start, end) covering [0, n).
// Falls back to a single f(0, n) call if parallelism is disabled or n is too small.
// Chunks never overlap, so f may write to disjoint regions of a shared buffer.
func Range(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	cfg = cfg.normalize()
	if !cfg.Enabled || cfg.NumWorkers == 1 || n < 2*cfg.MinChunkSize {
		f(0, n)
		return
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// Map writes fn(src[i]) into a fresh buffer of the same length.
func Map(src []float32, fn func(float32) float32, cfg Config) []float32 {
	out := make([]float32, len(src))
	Range(len(src), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = fn(src[i])
		}
	}, cfg)
	return out
}

// Zip writes fn(a[i], b[i]) into a fresh buffer. a and b must have equal length.
func Zip(a, b []float32, fn func(x, y float32) float32, cfg Config) []float32 {
	out := make([]float32, len(a))
	Range(len(a), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = fn(a[i], b[i])
		}
	}, cfg)
	return out
}
