/*
Package workers sizes and runs the bounded worker pools of the gallery: the
server's thumbnail sweep (CPU-bound) and the viewer's tile loading (network
bound).

# Sizing

Counts derive from runtime.GOMAXPROCS, which Go 1.19+ sets from the
container CPU limit, scaled by the workload kind:

	n := workers.ForCPU(8) // 1 per CPU, at most 8
	n := workers.ForIO(16) // 2 per CPU, at most 16

Each kind has an environment override, THUMBNAIL_WORKERS for CPU work and
TILE_WORKERS for I/O work:

	env:
	- name: THUMBNAIL_WORKERS
	  value: "4"

# Running

Each runs a function over a slice with at most n in flight and returns the
first error, cancelling the context passed to the remaining calls:

	err := workers.Each(ctx, workers.ForCPU(8), keys, func(ctx context.Context, key string) error {
	    return gen.Generate(ctx, key)
	})
*/
package workers
