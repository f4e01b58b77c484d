package app

import (
	"context"
	"errors"
	"io"

	"github.com/agbru/fanout/internal/cli"
	"github.com/agbru/fanout/internal/config"
	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/metrics"
	"github.com/agbru/fanout/internal/orchestration"
	"github.com/agbru/fanout/internal/procpool"
	"github.com/agbru/fanout/internal/sysmon"
	"github.com/agbru/fanout/internal/threadrun"
	"github.com/agbru/fanout/internal/workload"
)

// runSingle executes the runner selected by the entry point.
func (a *Application) runSingle(ctx context.Context, out io.Writer) int {
	if a.Config.Verbose {
		cli.PrintExecutionConfig(a.Config, out)
	}
	runner := a.newRunner(a.Config.Mode, a.traceWriter(out))
	reporter := cli.NewProgressReporter(runner.Name(), a.showProgress())
	presenter := cli.CLIResultPresenter{}

	collector := metrics.NewMemoryCollector()
	before := collector.Snapshot()
	res := orchestration.ExecuteRun(ctx, runner, reporter, presenter, out, a.ErrWriter)
	res.Err = a.timeoutError(res.Runner, res.Err)
	code := orchestration.AnalyzeRunResult(res, a.presentationOptions(), presenter, presenter, out, a.ErrWriter)

	if a.Config.Verbose && res.Err == nil {
		cli.DisplayMemoryStats(metrics.Delta(before, collector.Snapshot()), out)
		cli.DisplaySystemStats(sysmon.Sample(), out)
	}
	return code
}

// runCompare runs the process runner, then the thread runner, and prints a
// comparison table.
func (a *Application) runCompare(ctx context.Context, out io.Writer) int {
	if a.Config.Verbose {
		cli.PrintExecutionConfig(a.Config, out)
	}
	trace := a.traceWriter(out)
	runners := []orchestration.Runner{
		a.newRunner(config.ModeProcess, trace),
		a.newRunner(config.ModeThread, trace),
	}
	reporter := cli.NewProgressReporter(threadrun.RunnerName, a.showProgress())
	presenter := cli.CLIResultPresenter{}
	opts := a.presentationOptions()

	results := orchestration.Compare(ctx, runners, reporter, presenter, opts, out, a.ErrWriter)
	for i := range results {
		results[i].Err = a.timeoutError(results[i].Runner, results[i].Err)
	}
	return orchestration.AnalyzeComparisonResults(results, opts, presenter, presenter, out, a.ErrWriter)
}

// timeoutError names the configured limit when err comes from -timeout.
func (a *Application) timeoutError(runner string, err error) error {
	if a.Config.Timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
		return apperrors.TimeoutError{Operation: runner + " run", Limit: a.Config.Timeout}
	}
	return err
}

func (a *Application) newRunner(mode config.Mode, trace io.Writer) orchestration.Runner {
	if mode == config.ModeThread {
		return &orchestration.ThreadRunner{Config: threadrun.Config{
			Threads:       a.Config.Threads,
			Iterations:    a.Config.Iterations,
			Pin:           a.Config.Pin,
			Trace:         trace,
			Logger:        a.Logger,
			Recorder:      a.Recorder,
			ThreadCounter: a.threadCounter,
		}}
	}
	opts := []procpool.Option{
		procpool.WithTrace(trace),
		procpool.WithLogger(a.Logger),
		procpool.WithRecorder(a.Recorder),
	}
	if a.launcher != nil {
		opts = append(opts, procpool.WithLauncher(a.launcher))
	}
	return &orchestration.ProcessRunner{
		Config:  procpool.Config{Workers: a.Config.Workers, Iterations: a.Config.Iterations},
		Options: opts,
		Batch:   workload.Items(a.Config.Items),
	}
}

// traceWriter returns the destination of worker trace lines. One writer is
// shared by all runners so lines are never interleaved.
func (a *Application) traceWriter(out io.Writer) *workload.TraceWriter {
	if a.Config.Quiet {
		return workload.NewTraceWriter(io.Discard)
	}
	return workload.NewTraceWriter(out)
}

func (a *Application) showProgress() bool {
	return a.Config.Progress && !a.Config.Quiet
}

func (a *Application) presentationOptions() orchestration.PresentationOptions {
	return orchestration.PresentationOptions{
		Verbose:    a.Config.Verbose,
		Verify:     a.Config.Verify,
		Iterations: a.Config.Iterations,
	}
}
