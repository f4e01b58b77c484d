// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* and Print* functions write formatted output to an [io.Writer].
//     Examples: [DisplayMemoryStats], [DisplayProgress], [PrintExecutionConfig].
//
//   - Present* methods implement the orchestration presenter interfaces.
//
//   - New* functions pick or build presentation components.

package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/fanout/internal/config"
	"github.com/agbru/fanout/internal/format"
	"github.com/agbru/fanout/internal/metrics"
	"github.com/agbru/fanout/internal/sysmon"
	"github.com/agbru/fanout/internal/ui"
)

// PrintExecutionConfig displays the resolved configuration of a run.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "%s\n", ui.Heading("--- Execution Configuration ---"))
	switch {
	case cfg.Compare:
		fmt.Fprintf(out, "Comparing %sprocess%s (%d workers, %d items) and %sthread%s (%d threads) runners.\n",
			ui.ColorGreen(), ui.ColorReset(), cfg.Workers, cfg.Items,
			ui.ColorGreen(), ui.ColorReset(), cfg.Threads)
	case cfg.Mode == config.ModeProcess:
		fmt.Fprintf(out, "Runner: %sprocess%s with %d workers and %d items.\n",
			ui.ColorGreen(), ui.ColorReset(), cfg.Workers, cfg.Items)
	default:
		fmt.Fprintf(out, "Runner: %sthread%s with %d threads.\n", ui.ColorGreen(), ui.ColorReset(), cfg.Threads)
	}
	timeout := "none"
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout.String()
	}
	fmt.Fprintf(out, "Iterations per item: %s%d%s, timeout: %s%s%s.\n",
		ui.ColorMagenta(), cfg.Iterations, ui.ColorReset(), ui.ColorYellow(), timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// DisplayMemoryStats shows the memory growth of the dispatcher during a run.
func DisplayMemoryStats(delta metrics.MemorySnapshot, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Heap in use:     %s\n", format.FormatBytes(delta.HeapAlloc))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(delta.TotalAlloc))
	fmt.Fprintf(out, "  GC cycles:       %d\n", delta.NumGC)
	fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(delta.PauseTotalNs)/1e6)
	fmt.Fprintf(out, "  Goroutines:      %d\n", delta.NumGoroutine)
}

// DisplaySystemStats shows a system-wide CPU and memory sample.
func DisplaySystemStats(s sysmon.Stats, out io.Writer) {
	fmt.Fprintf(out, "System: CPU %.1f%%, memory %.1f%%\n", s.CPUPercent, s.MemPercent)
}
