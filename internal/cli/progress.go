package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"

	"github.com/agbru/fanout/internal/format"
	"github.com/agbru/fanout/internal/orchestration"
	"github.com/agbru/fanout/internal/procpool"
)

// NewProgressReporter picks the progress display for a runner. Process runs
// get a counting progress bar, thread runs a spinner; disabled progress
// drains silently.
func NewProgressReporter(runner string, enabled bool) orchestration.ProgressReporter {
	switch {
	case !enabled:
		return orchestration.NullProgressReporter{}
	case runner == procpool.RunnerName:
		return BarProgressReporter{}
	default:
		return SpinnerProgressReporter{}
	}
}

// SpinnerProgressReporter implements orchestration.ProgressReporter with a
// spinner followed by a textual bar and ETA.
type SpinnerProgressReporter struct{}

var _ orchestration.ProgressReporter = SpinnerProgressReporter{}

// DisplayProgress displays the spinner until progressChan is closed.
func (SpinnerProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, total int, out io.Writer) {
	DisplayProgress(wg, progressChan, total, out)
}

// DisplayProgress shows a spinner whose suffix tracks completed items.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, total int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(total)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(progressSuffix(orchestration.AggregatedProgress{}, total))
	s.Start()
	defer s.Stop()

	for update := range progressChan {
		s.UpdateSuffix(progressSuffix(agg.Update(update), total))
	}
}

func progressSuffix(p orchestration.AggregatedProgress, total int) string {
	return fmt.Sprintf(" %d/%d %s", p.Done, total, format.FormatProgressBarWithETA(p.Fraction, p.ETA, ProgressBarWidth))
}

// BarProgressReporter implements orchestration.ProgressReporter with a
// schollz/progressbar counting bar.
type BarProgressReporter struct{}

var _ orchestration.ProgressReporter = BarProgressReporter{}

// DisplayProgress advances the bar once per completed item.
func (BarProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, total int, out io.Writer) {
	defer wg.Done()
	if total <= 0 {
		orchestration.DrainChannel(progressChan)
		return
	}
	bar := newProgressBar(total, out)
	for range progressChan {
		_ = bar.Add(1)
	}
	_ = bar.Finish()
}

func newProgressBar(total int, out io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Work items"),
		progressbar.OptionSetWidth(ProgressBarWidth),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(out),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
