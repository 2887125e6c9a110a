// Package memory keeps the server inside its container memory limit.
//
// [ConfigureFromEnv] derives GOMEMLIMIT from the Kubernetes Downward API
// (MEMORY_LIMIT, MEMORY_RATIO) unless GOMEMLIMIT is already set. Call it
// first thing in main.
//
// [Monitor] samples the Go heap and pauses thumbnail generation while usage
// sits above the critical water mark, resuming once it drops below the high
// water mark. The thumbnail generator consults it through [Monitor.Wait]
// before decoding each original, so libvips buffers never pile up on top of
// a heap that is already close to the limit.
//
// Kubernetes example:
//
//	env:
//	  - name: MEMORY_LIMIT
//	    valueFrom:
//	      resourceFieldRef:
//	        resource: limits.memory
//	  - name: MEMORY_RATIO
//	    value: "0.75"
package memory
