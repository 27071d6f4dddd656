// Package parallel provides chunked-loop helpers for the CPU kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls loop chunking.
type Config struct {
	Workers  int // goroutines to spread the loop over
	MinChunk int // below this many iterations the loop stays sequential
}

// DefaultConfig sizes the pool from the CPU count.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinChunk: 64,
	}
}

// For executes f(i) for i in [0, n), splitting the range across workers.
// Iterations must be independent. Small ranges run sequentially.
func For(n int, cfg Config, f func(i int)) {
	if cfg.Workers <= 1 || n < cfg.MinChunk {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := (n + cfg.Workers - 1) / cfg.Workers
	if chunk < cfg.MinChunk {
		chunk = cfg.MinChunk
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
