package orchestration

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/workload"
)

// ExecuteRun runs r while forwarding item completions to the progress
// reporter. The run header is printed to out through the presenter; progress
// goes to progressOut. ExecuteRun returns after the reporter has drained.
func ExecuteRun(ctx context.Context, r Runner, reporter ProgressReporter, presenter ResultPresenter, out, progressOut io.Writer) RunResult {
	total := r.Items()
	// Every item reports at most once, so sends never block.
	progressChan := make(chan ProgressUpdate, max(total, 1))

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, total, progressOut)

	var done atomic.Int64
	res := r.Run(ctx, Hooks{
		OnStart: func(info StartInfo) { presenter.PresentStart(info, out) },
		OnItemDone: func(index int) {
			progressChan <- ProgressUpdate{Runner: r.Name(), Index: index, Done: int(done.Add(1)), Total: total}
		},
	})

	close(progressChan)
	displayWg.Wait()
	return res
}

// Compare runs every runner in turn, so that their timings do not disturb
// one another, and returns their results in the same order. Each successful
// run is presented as soon as it completes.
func Compare(ctx context.Context, runners []Runner, reporter ProgressReporter, presenter ResultPresenter, opts PresentationOptions, out, progressOut io.Writer) []RunResult {
	results := make([]RunResult, 0, len(runners))
	for _, r := range runners {
		if err := ctx.Err(); err != nil {
			results = append(results, RunResult{Runner: r.Name(), Items: r.Items(), Err: err})
			continue
		}
		res := ExecuteRun(ctx, r, reporter, presenter, out, progressOut)
		if res.Err == nil {
			presenter.PresentRun(res, opts, out)
		}
		results = append(results, res)
	}
	return results
}

// FirstMismatch returns the index of the first gathered sum that differs
// from the closed form for iterations, or -1 when all match.
func FirstMismatch(sums []workload.Sum, iterations int) int {
	for i, s := range sums {
		if !workload.Verify(s, iterations) {
			return i
		}
	}
	return -1
}

// AnalyzeRunResult presents a single run and returns the process exit code.
// With opts.Verify, gathered sums are checked against the closed form.
// Diagnostics go to errOut.
func AnalyzeRunResult(res RunResult, opts PresentationOptions, presenter ResultPresenter, handler ErrorHandler, out, errOut io.Writer) int {
	if res.Err != nil {
		return handler.HandleError(res.Err, res.Duration, errOut)
	}
	presenter.PresentRun(res, opts, out)
	if opts.Verify {
		if i := FirstMismatch(res.Sums, opts.Iterations); i >= 0 {
			fmt.Fprintf(errOut, "Verification failed: item %d = %s, want %s\n",
				i, res.Sums[i], workload.ClosedForm(opts.Iterations))
			return apperrors.ExitErrorMismatch
		}
	}
	return apperrors.ExitSuccess
}

// AnalyzeComparisonResults presents the comparison table and returns the
// exit code: the first failure wins, then verification.
func AnalyzeComparisonResults(results []RunResult, opts PresentationOptions, presenter ResultPresenter, handler ErrorHandler, out, errOut io.Writer) int {
	presenter.PresentComparison(results, out)

	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(out, "\nGlobal Status: Failure. The %s runner did not complete.\n", res.Runner)
			return handler.HandleError(res.Err, res.Duration, errOut)
		}
	}
	if opts.Verify {
		for _, res := range results {
			if i := FirstMismatch(res.Sums, opts.Iterations); i >= 0 {
				fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s item %d does not match the closed form.\n", res.Runner, i)
				return apperrors.ExitErrorMismatch
			}
		}
	}
	fmt.Fprintf(out, "\nGlobal Status: Success. All runners completed.\n")
	return apperrors.ExitSuccess
}
