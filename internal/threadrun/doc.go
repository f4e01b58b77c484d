// Package threadrun implements the thread fan-out runner: a fixed number of
// workers, each on its own OS thread, run the workload for a distinct id and
// are joined before Run returns.
//
// Each worker goroutine locks itself to an OS thread and exits without
// unlocking, so the Go runtime retires that thread when the worker is done.
// The process thread count therefore returns to its starting level after a
// run. Values are not collected; every worker reports an Outcome and all
// failures are aggregated after the join.
package threadrun
