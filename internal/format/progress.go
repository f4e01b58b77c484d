package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// maxETA caps estimates produced from very early, noisy samples.
const maxETA = 24 * time.Hour

// ProgressWithETA tracks how many of a fixed number of work items have
// completed and estimates the time remaining from the mean time per item.
// It is safe for concurrent use.
type ProgressWithETA struct {
	mu        sync.Mutex
	total     int
	done      int
	startTime time.Time
	now       func() time.Time
}

// NewProgressWithETA starts tracking total items from now.
func NewProgressWithETA(total int) *ProgressWithETA {
	return &ProgressWithETA{total: total, startTime: time.Now(), now: time.Now}
}

// Complete records that done items have finished and returns the completed
// fraction and the estimated time remaining. Counts never move backwards.
func (p *ProgressWithETA) Complete(done int) (float64, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if done > p.done {
		p.done = min(done, p.total)
	}
	return p.fractionLocked(), p.etaLocked()
}

// Fraction returns the completed fraction in [0, 1].
func (p *ProgressWithETA) Fraction() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fractionLocked()
}

// GetETA returns the current estimate without recording progress.
func (p *ProgressWithETA) GetETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.etaLocked()
}

func (p *ProgressWithETA) fractionLocked() float64 {
	if p.total <= 0 {
		return 0
	}
	return float64(p.done) / float64(p.total)
}

func (p *ProgressWithETA) etaLocked() time.Duration {
	if p.done == 0 || p.done >= p.total {
		return 0
	}
	perItem := p.now().Sub(p.startTime) / time.Duration(p.done)
	eta := perItem * time.Duration(p.total-p.done)
	return min(eta, maxETA)
}

// FormatETA renders an estimate compactly: "45s", "2m30s", "1h15m".
// Non-positive estimates render as "calculating...".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m := int(eta.Minutes())
		s := int(eta.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h := int(eta.Hours())
		m := int(eta.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// ProgressBar renders progress (clamped to [0, 1]) as a bar of length runes.
func ProgressBar(progress float64, length int) string {
	progress = max(0, min(progress, 1))
	count := int(progress * float64(length))
	var b strings.Builder
	b.Grow(length * 3)
	for i := range length {
		if i < count {
			b.WriteRune('█')
		} else {
			b.WriteRune('░')
		}
	}
	return b.String()
}

// FormatProgressBarWithETA renders "[bar] 50.0% ETA: 30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), progress*100, FormatETA(eta))
}
