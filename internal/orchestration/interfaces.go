package orchestration

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/agbru/fanout/internal/threadrun"
	"github.com/agbru/fanout/internal/workload"
)

// RunResult is the outcome of one runner invocation. It is the shared
// domain type between orchestration and presentation.
type RunResult struct {
	// Runner is the runner name ("process" or "thread").
	Runner string
	// Items is the number of work items submitted.
	Items int
	// Workers is the number of processes or threads used.
	Workers int
	// Sums holds the gathered results of a process run, in submission
	// order. It is nil for thread runs and for failed runs.
	Sums []workload.Sum
	// Thread is the join report of a thread run.
	Thread *threadrun.Report
	// Duration is the wall-clock time from fan-out to join.
	Duration time.Duration
	// Err is the run failure, if any.
	Err error
}

// StartInfo is published once a runner knows its shape, before any work
// item starts.
type StartInfo struct {
	Runner  string
	Workers int
	// ThreadsBefore is the OS thread count sampled by thread runs.
	ThreadsBefore int
}

// Hooks are the callbacks a Runner invokes while running.
type Hooks struct {
	OnStart    func(StartInfo)
	OnItemDone func(index int)
}

func (h Hooks) start(info StartInfo) {
	if h.OnStart != nil {
		h.OnStart(info)
	}
}

func (h Hooks) itemDone(index int) {
	if h.OnItemDone != nil {
		h.OnItemDone(index)
	}
}

// Runner is one fan-out strategy.
type Runner interface {
	// Name identifies the runner in output and metrics.
	Name() string
	// Items returns the number of work items a run will complete.
	Items() int
	// Run executes the batch and blocks until every worker is joined.
	Run(ctx context.Context, hooks Hooks) RunResult
}

// ProgressUpdate reports that one work item has completed.
type ProgressUpdate struct {
	Runner string
	// Index is the completed item.
	Index int
	// Done is the number of items completed so far, including this one.
	Done int
	// Total is the number of items in the run.
	Total int
}

// ProgressReporter displays progress updates. DisplayProgress runs in its own
// goroutine until progressChan is closed, then calls wg.Done.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer) {
	f(wg, progressChan, total, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Used when progress display is off.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// PresentationOptions configures how results are presented.
type PresentationOptions struct {
	Verbose    bool
	Verify     bool
	Iterations int
}

// ResultPresenter renders runs for the user.
type ResultPresenter interface {
	// PresentStart prints the run header before any trace line.
	PresentStart(info StartInfo, out io.Writer)
	// PresentRun prints the summary of a successful run.
	PresentRun(result RunResult, opts PresentationOptions, out io.Writer)
	// PresentComparison prints a side-by-side summary of several runs.
	PresentComparison(results []RunResult, out io.Writer)
}

// ErrorHandler handles run errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
