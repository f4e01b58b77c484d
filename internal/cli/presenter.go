package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/format"
	"github.com/agbru/fanout/internal/orchestration"
	"github.com/agbru/fanout/internal/procpool"
	"github.com/agbru/fanout/internal/threadrun"
	"github.com/agbru/fanout/internal/ui"
	"github.com/agbru/fanout/internal/workload"
)

// CLIResultPresenter implements orchestration.ResultPresenter for terminal
// output. The run header and footer lines are plain text; verbose details are
// rendered as tables.
type CLIResultPresenter struct{}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentStart prints the line that precedes the workers' trace output.
func (CLIResultPresenter) PresentStart(info orchestration.StartInfo, out io.Writer) {
	switch info.Runner {
	case procpool.RunnerName:
		fmt.Fprintf(out, "Using %d processes\n", info.Workers)
	case threadrun.RunnerName:
		fmt.Fprintf(out, "Active threads before: %d\n", info.ThreadsBefore)
	}
}

// PresentRun prints the timing footer and, when verbose, a per-item table.
func (CLIResultPresenter) PresentRun(res orchestration.RunResult, opts orchestration.PresentationOptions, out io.Writer) {
	switch res.Runner {
	case procpool.RunnerName:
		fmt.Fprintf(out, "Multiprocessing took %s seconds\n", format.FormatSeconds(res.Duration))
		if opts.Verbose {
			presentSums(res, opts, out)
		}
	case threadrun.RunnerName:
		if res.Thread != nil {
			fmt.Fprintf(out, "Active threads after: %d (workers running: %d)\n", res.Thread.ThreadsAfter, res.Thread.Live)
		}
		fmt.Fprintf(out, "Multithreading took %s seconds\n", format.FormatSeconds(res.Duration))
		if opts.Verbose && res.Thread != nil {
			presentOutcomes(*res.Thread, out)
		}
	}
}

func presentSums(res orchestration.RunResult, opts orchestration.PresentationOptions, out io.Writer) {
	fmt.Fprintf(out, "\n%s\n", ui.Heading("--- Gathered Results ---"))
	table := tablewriter.NewWriter(out)
	table.Header("Index", "Sum", "Check")
	for i, s := range res.Sums {
		check := ui.Dim("-")
		if opts.Verify {
			if workload.Verify(s, opts.Iterations) {
				check = ui.Success("ok")
			} else {
				check = ui.Failure("mismatch")
			}
		}
		_ = table.Append(strconv.Itoa(i), s.String(), check)
	}
	if err := table.Render(); err != nil {
		fmt.Fprintf(out, "%sError rendering results table: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	}
}

func presentOutcomes(report threadrun.Report, out io.Writer) {
	fmt.Fprintf(out, "\n%s\n", ui.Heading("--- Workers ---"))
	table := tablewriter.NewWriter(out)
	table.Header("ID", "Duration", "Status")
	for _, o := range report.Outcomes {
		status := ui.Success("done")
		if o.Err != nil {
			status = ui.Failure(o.Err.Error())
		}
		_ = table.Append(strconv.Itoa(o.ID), format.FormatExecutionDuration(o.Duration), status)
	}
	if err := table.Render(); err != nil {
		fmt.Fprintf(out, "%sError rendering workers table: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	}
}

// PresentComparison displays one row per runner.
func (CLIResultPresenter) PresentComparison(results []orchestration.RunResult, out io.Writer) {
	fmt.Fprintf(out, "\n%s\n", ui.Heading("--- Comparison Summary ---"))
	table := tablewriter.NewWriter(out)
	table.Header("Runner", "Workers", "Items", "Duration", "Status")
	for _, res := range results {
		status := ui.Success("Success")
		if res.Err != nil {
			status = ui.Failure(fmt.Sprintf("Failure (%v)", res.Err))
		}
		duration := format.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		_ = table.Append(res.Runner, strconv.Itoa(res.Workers), strconv.Itoa(res.Items), duration, status)
	}
	if err := table.Render(); err != nil {
		fmt.Fprintf(out, "%sError rendering comparison table: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	}
}

// HandleError prints a diagnostic and returns the matching exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleRunError(err, duration, out, CLIColorProvider{})
}

// CLIColorProvider implements apperrors.ColorProvider with the active theme.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }
