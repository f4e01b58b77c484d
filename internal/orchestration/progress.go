package orchestration

import (
	"time"

	"github.com/agbru/fanout/internal/format"
)

// ProgressAggregator turns item completions into an overall fraction and an
// ETA. Both CLI reporters use it.
type ProgressAggregator struct {
	state *format.ProgressWithETA
	total int
}

// NewProgressAggregator creates an aggregator for total items. Returns nil if
// total <= 0.
func NewProgressAggregator(total int) *ProgressAggregator {
	if total <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state: format.NewProgressWithETA(total),
		total: total,
	}
}

// AggregatedProgress holds the result of processing a single update.
type AggregatedProgress struct {
	Index int
	Done  int
	// Fraction is Done/Total in [0, 1].
	Fraction float64
	ETA      time.Duration
}

// Update records one completion.
func (a *ProgressAggregator) Update(update ProgressUpdate) AggregatedProgress {
	fraction, eta := a.state.Complete(update.Done)
	return AggregatedProgress{
		Index:    update.Index,
		Done:     update.Done,
		Fraction: fraction,
		ETA:      eta,
	}
}

// Fraction returns the current completed fraction without updating.
func (a *ProgressAggregator) Fraction() float64 {
	return a.state.Fraction()
}

// Total returns the number of items being tracked.
func (a *ProgressAggregator) Total() int {
	return a.total
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}
