//go:build linux

package threadrun

import "golang.org/x/sys/unix"

// pinToCPU binds the calling OS thread to one CPU of the process affinity
// mask, chosen round-robin by id.
func pinToCPU(id int) error {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return err
	}
	cpus := make([]int, 0, allowed.Count())
	for cpu := 0; len(cpus) < allowed.Count(); cpu++ {
		if allowed.IsSet(cpu) {
			cpus = append(cpus, cpu)
		}
	}
	if len(cpus) == 0 {
		return nil
	}
	var one unix.CPUSet
	one.Set(cpus[id%len(cpus)])
	return unix.SchedSetaffinity(0, &one)
}
