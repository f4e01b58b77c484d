// Package procpool implements the process fan-out runner: a batch of work
// items is dispatched to a pool of worker processes and the results are
// gathered in submission order.
//
// Worker processes are instances of the running binary started with
// WorkerEnv set. The dispatcher and a worker exchange newline-delimited JSON
// over the worker's stdin and stdout; the worker's stderr carries its trace
// lines and is forwarded line by line to the pool's trace writer.
//
// Any worker failure aborts the whole batch: Map returns no results and an
// error naming the failed item. Every worker process is reaped before Map
// returns, on success and on error.
package procpool
