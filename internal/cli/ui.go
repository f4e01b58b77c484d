//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"time"

	"github.com/briandowns/spinner"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the spinner.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This decouples DisplayProgress from a specific spinner implementation.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() {
	rs.s.Start()
}

func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the suffix under the spinner's lock, since the spinner
// goroutine reads it on every frame.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}
