//go:build linux

package config

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// affinityCPUs counts the CPUs in the scheduler affinity mask at call time.
// runtime.NumCPU samples the mask once at start-up.
func affinityCPUs() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0
	}
	return set.Count()
}

func numCPU() int { return runtime.NumCPU() }
