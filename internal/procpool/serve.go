package procpool

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/workload"
)

const (
	// WorkerEnv marks a process as a pool worker when set to "1".
	WorkerEnv = "FANOUT_WORKER_PROCESS"
	// SlotEnv carries the pool slot number of a worker process.
	SlotEnv = "FANOUT_WORKER_SLOT"
)

// Handler computes one work item inside a worker process.
type Handler func(n workload.Item, iterations int, trace io.Writer) (workload.Sum, error)

// DefaultHandler runs the reference workload.
func DefaultHandler(n workload.Item, iterations int, trace io.Writer) (workload.Sum, error) {
	return workload.Compute(n, iterations, trace), nil
}

// IsWorkerProcess reports whether this process was started as a pool worker.
func IsWorkerProcess() bool {
	return os.Getenv(WorkerEnv) == "1"
}

// RunWorkerIfRequested turns the current process into a pool worker and
// exits when WorkerEnv is set. Entry points call it before anything else.
func RunWorkerIfRequested() {
	if !IsWorkerProcess() {
		return
	}
	os.Exit(ServeMain(DefaultHandler))
}

// ServeMain serves requests on stdin/stdout with h, tracing to stderr, and
// returns the process exit code.
func ServeMain(h Handler) int {
	if err := Serve(context.Background(), os.Stdin, os.Stdout, os.Stderr, h); err != nil {
		fmt.Fprintf(os.Stderr, "worker %s: %v\n", os.Getenv(SlotEnv), err)
		return 1
	}
	return 0
}

// Serve reads requests from in until EOF and writes one response per
// request to out. It returns nil on a clean EOF.
func Serve(ctx context.Context, in io.Reader, out io.Writer, trace io.Writer, h Handler) error {
	dec := json.NewDecoder(bufio.NewReader(in))
	bw := bufio.NewWriter(out)
	enc := json.NewEncoder(bw)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return apperrors.ProtocolError{Message: err.Error()}
		}

		resp := Response{Index: req.Index}
		sum, err := h(workload.Item(req.N), req.Iterations, trace)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Hi, resp.Lo = sum.Hi, sum.Lo
		}
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
	}
}
