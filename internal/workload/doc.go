// Package workload defines the synthetic CPU-bound unit of work executed by
// both fan-out runners: a fixed-size loop accumulating the squares of the
// loop index. The computation is deterministic and side-effect free apart
// from a single trace line emitted before the loop starts.
package workload
