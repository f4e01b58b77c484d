// Package sysmon provides system-wide CPU and memory usage sampling and the
// OS thread count of the current process.
package sysmon

import (
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// NumThreads returns the number of OS threads of the current process, or 0
// when the platform does not expose it.
func NumThreads() int {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	n, err := p.NumThreads()
	if err != nil {
		return 0
	}
	return int(n)
}
