package config

// Worker count resolution chain (highest priority first):
//   1. CLI flag (--workers)
//   2. Environment variable (FANOUT_WORKERS)
//   3. Config file (workers:)
//   4. CPUs available to this process (this file)
//
// The runners never query the machine themselves; they receive the resolved
// value through their configuration.

// ResolveDefaults fills zero-valued sizing fields from the host.
// Workers defaults to the number of CPUs this process may run on, and Items
// defaults to one per worker.
func ResolveDefaults(cfg AppConfig) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers()
	}
	if cfg.Items == 0 {
		cfg.Items = cfg.Workers
	}
	return cfg
}

// DefaultWorkers returns the number of CPUs available to this process,
// honouring the CPU affinity mask where the platform exposes one.
func DefaultWorkers() int {
	if n := affinityCPUs(); n > 0 {
		return n
	}
	return numCPU()
}
