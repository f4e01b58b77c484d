package metrics

import "runtime"

// MemorySnapshot holds a point-in-time memory reading of this process.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by application
	TotalAlloc   uint64 // cumulative bytes allocated
	Sys          uint64 // total bytes obtained from OS
	NumGC        uint32 // number of completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
	NumGoroutine int    // goroutines alive at snapshot time
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		NumGoroutine: runtime.NumGoroutine(),
	}
}

// Delta returns the growth between two snapshots of cumulative counters.
// HeapAlloc and NumGoroutine are taken from after.
func Delta(before, after MemorySnapshot) MemorySnapshot {
	return MemorySnapshot{
		HeapAlloc:    after.HeapAlloc,
		TotalAlloc:   after.TotalAlloc - before.TotalAlloc,
		Sys:          after.Sys,
		NumGC:        after.NumGC - before.NumGC,
		PauseTotalNs: after.PauseTotalNs - before.PauseTotalNs,
		NumGoroutine: after.NumGoroutine,
	}
}
