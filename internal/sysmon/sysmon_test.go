package sysmon

import (
	"runtime"
	"testing"
)

func TestSample_ReturnsValidRanges(t *testing.T) {
	s := Sample()
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", s.CPUPercent)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", s.MemPercent)
	}
}

func TestNumThreads(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("thread count is only checked on linux")
	}
	if n := NumThreads(); n < 1 {
		t.Errorf("NumThreads() = %d, want at least 1", n)
	}
}
