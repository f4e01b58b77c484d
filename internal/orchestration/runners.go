package orchestration

import (
	"context"
	"slices"
	"time"

	"github.com/agbru/fanout/internal/procpool"
	"github.com/agbru/fanout/internal/threadrun"
	"github.com/agbru/fanout/internal/workload"
)

// ProcessRunner maps a batch of items onto a worker process pool.
type ProcessRunner struct {
	Config  procpool.Config
	Options []procpool.Option
	Batch   []workload.Item
}

var _ Runner = (*ProcessRunner)(nil)

// Name returns procpool.RunnerName.
func (r *ProcessRunner) Name() string { return procpool.RunnerName }

// Items returns the batch size.
func (r *ProcessRunner) Items() int { return len(r.Batch) }

// Run builds the pool, announces its size and maps the batch.
func (r *ProcessRunner) Run(ctx context.Context, hooks Hooks) RunResult {
	res := RunResult{Runner: r.Name(), Items: len(r.Batch)}
	opts := append(slices.Clone(r.Options), procpool.WithProgress(hooks.itemDone))
	pool, err := procpool.New(r.Config, opts...)
	if err != nil {
		res.Err = err
		return res
	}
	res.Workers = pool.Size(len(r.Batch))
	hooks.start(StartInfo{Runner: res.Runner, Workers: res.Workers})

	start := time.Now()
	res.Sums, res.Err = pool.Map(ctx, r.Batch)
	res.Duration = time.Since(start)
	return res
}

// ThreadRunner starts a fixed set of OS-thread workers.
type ThreadRunner struct {
	Config threadrun.Config
}

var _ Runner = (*ThreadRunner)(nil)

// Name returns threadrun.RunnerName.
func (r *ThreadRunner) Name() string { return threadrun.RunnerName }

// Items returns the number of workers.
func (r *ThreadRunner) Items() int {
	if r.Config.Threads == 0 {
		return threadrun.DefaultThreads
	}
	return r.Config.Threads
}

// Run starts the workers and joins them.
func (r *ThreadRunner) Run(ctx context.Context, hooks Hooks) RunResult {
	cfg := r.Config
	res := RunResult{Runner: r.Name(), Items: r.Items(), Workers: r.Items()}
	cfg.OnStart = func(before int) {
		hooks.start(StartInfo{Runner: res.Runner, Workers: res.Workers, ThreadsBefore: before})
	}
	cfg.OnDone = hooks.itemDone

	report, err := threadrun.Run(ctx, cfg)
	res.Thread = &report
	res.Duration = report.Elapsed
	res.Err = err
	return res
}
