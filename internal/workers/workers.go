package workers

import (
	"context"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Kind describes a workload: how many workers per CPU it wants and which
// environment variable overrides the computed count.
type Kind struct {
	Multiplier float64
	Env        string
}

var (
	// CPU is for image decoding, resizing and encoding.
	CPU = Kind{Multiplier: 1.0, Env: "THUMBNAIL_WORKERS"}
	// IO is for network fetches.
	IO = Kind{Multiplier: 2.0, Env: "TILE_WORKERS"}
)

// Count returns the worker count for a workload kind, capped at limit
// (0 means no cap).
func Count(k Kind, limit int) int {
	if k.Env != "" {
		if override := os.Getenv(k.Env); override != "" {
			if count, err := strconv.Atoi(override); err == nil && count > 0 {
				return capAt(count, limit)
			}
		}
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * k.Multiplier)
	if workers < 1 {
		workers = 1
	}
	return capAt(workers, limit)
}

func capAt(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

// ForCPU returns the worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(CPU, limit)
}

// ForIO returns the worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(IO, limit)
}

// Each calls fn for every item with at most n calls in flight. It returns
// the first error; the context passed to fn is cancelled once one occurs.
func Each[T any](ctx context.Context, n int, items []T, fn func(context.Context, T) error) error {
	if n < 1 {
		n = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for _, item := range items {
		g.Go(func() error {
			return fn(gctx, item)
		})
	}
	return g.Wait()
}
