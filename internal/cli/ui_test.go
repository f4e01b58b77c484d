package cli

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"
	"github.com/golang/mock/gomock"

	"github.com/agbru/fanout/internal/cli/mocks"
	"github.com/agbru/fanout/internal/orchestration"
)

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(&buf))
	rs := &realSpinner{s}

	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
	if s.Suffix != " test" {
		t.Errorf("Suffix = %q, want %q", s.Suffix, " test")
	}
}

func TestDisplayProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockS := mocks.NewMockSpinner(ctrl)

	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()
	newSpinner = func(...spinner.Option) Spinner { return mockS }

	var suffixes []string
	gomock.InOrder(
		mockS.EXPECT().UpdateSuffix(gomock.Any()).Do(func(s string) { suffixes = append(suffixes, s) }),
		mockS.EXPECT().Start(),
		mockS.EXPECT().UpdateSuffix(gomock.Any()).Do(func(s string) { suffixes = append(suffixes, s) }).Times(2),
		mockS.EXPECT().Stop(),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan orchestration.ProgressUpdate, 2)
	progressChan <- orchestration.ProgressUpdate{Index: 1, Done: 1, Total: 2}
	progressChan <- orchestration.ProgressUpdate{Index: 0, Done: 2, Total: 2}
	close(progressChan)

	DisplayProgress(&wg, progressChan, 2, io.Discard)
	wg.Wait()

	if len(suffixes) != 3 {
		t.Fatalf("got %d suffix updates, want 3", len(suffixes))
	}
	if !strings.Contains(suffixes[0], "0/2") {
		t.Errorf("initial suffix = %q", suffixes[0])
	}
	if !strings.Contains(suffixes[2], "2/2") || !strings.Contains(suffixes[2], "100.0%") {
		t.Errorf("final suffix = %q", suffixes[2])
	}
}

func TestDisplayProgress_ZeroTotal(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockS := mocks.NewMockSpinner(ctrl)

	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()
	// No calls are expected: an empty run shows no spinner.
	newSpinner = func(...spinner.Option) Spinner { return mockS }

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan orchestration.ProgressUpdate)
	close(progressChan)

	DisplayProgress(&wg, progressChan, 0, io.Discard)
	wg.Wait()
}

func TestBarProgressReporter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan orchestration.ProgressUpdate, 4)
	for i := range 4 {
		progressChan <- orchestration.ProgressUpdate{Index: i, Done: i + 1, Total: 4}
	}
	close(progressChan)

	done := make(chan struct{})
	go func() {
		BarProgressReporter{}.DisplayProgress(&wg, progressChan, 4, &buf)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("BarProgressReporter did not return after the channel closed")
	}
	wg.Wait()
	if len(progressChan) != 0 {
		t.Errorf("%d updates left undrained", len(progressChan))
	}
}

func TestNewProgressReporter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		runner  string
		enabled bool
		want    orchestration.ProgressReporter
	}{
		{"process", false, orchestration.NullProgressReporter{}},
		{"thread", false, orchestration.NullProgressReporter{}},
		{"process", true, BarProgressReporter{}},
		{"thread", true, SpinnerProgressReporter{}},
	}
	for _, tt := range tests {
		if got := NewProgressReporter(tt.runner, tt.enabled); got != tt.want {
			t.Errorf("NewProgressReporter(%q, %v) = %T, want %T", tt.runner, tt.enabled, got, tt.want)
		}
	}
}
