package threadrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/logging"
	"github.com/agbru/fanout/internal/metrics"
	"github.com/agbru/fanout/internal/parallel"
	"github.com/agbru/fanout/internal/sysmon"
	"github.com/agbru/fanout/internal/telemetry"
	"github.com/agbru/fanout/internal/workload"
)

const (
	// RunnerName labels metrics, spans and errors produced by this package.
	RunnerName = "thread"

	// DefaultThreads is the number of workers started when Config.Threads
	// is zero.
	DefaultThreads = 8

	// settleTimeout bounds how long Run waits for retired threads to
	// disappear from the process thread count.
	settleTimeout = 500 * time.Millisecond
	settlePoll    = 10 * time.Millisecond
)

// Task is the work run by one worker. id is the worker's index in
// [0, Threads).
type Task func(ctx context.Context, id int, trace io.Writer) error

// TraceFormat is the line a thread worker emits before its computation.
const TraceFormat = "Processing %d\n"

// ComputeTask returns a Task running the reference workload for item id.
func ComputeTask(iterations int) Task {
	return func(_ context.Context, id int, trace io.Writer) error {
		if trace != nil {
			fmt.Fprintf(trace, TraceFormat, id)
		}
		workload.Compute(workload.Item(id), iterations, nil)
		return nil
	}
}

// Config describes one thread run.
type Config struct {
	// Threads is the number of workers. Zero means DefaultThreads.
	Threads int
	// Iterations is the loop length for the default task.
	Iterations int
	// Pin binds worker i to the i-th CPU of the process affinity mask.
	Pin bool
	// Trace receives worker trace lines; nil discards them.
	Trace io.Writer
	// Task overrides ComputeTask(Iterations).
	Task Task

	Logger   logging.Logger
	Recorder *metrics.Recorder

	// ThreadCounter overrides sysmon.NumThreads.
	ThreadCounter func() int
	// OnStart is called with the thread count sampled before any worker
	// starts.
	OnStart func(threadsBefore int)
	// OnDone is called from each worker as it finishes.
	OnDone func(id int)
}

// Outcome is the completion record of one worker.
type Outcome struct {
	ID       int
	Duration time.Duration
	Err      error
}

// Report summarises a finished run.
type Report struct {
	RunID         string
	Outcomes      []Outcome
	Elapsed       time.Duration
	// ThreadsBefore and ThreadsAfter are OS thread counts of this process.
	// ThreadsAfter is a best-effort sample: the runtime may keep idle
	// threads alive past the settle window, so it can exceed ThreadsBefore
	// even though every worker has joined. Live is the join guarantee.
	ThreadsBefore int
	ThreadsAfter  int
	// Live is the number of workers still running when Run returned.
	Live int
}

// Failed returns the number of workers that reported an error.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Run starts the workers, waits for every one of them, and returns the
// report together with the joined worker errors, if any.
func Run(ctx context.Context, cfg Config) (Report, error) {
	if cfg.Threads == 0 {
		cfg.Threads = DefaultThreads
	}
	if cfg.Threads < 0 {
		return Report{}, apperrors.NewConfigError("threads must be at least 1, got %d", cfg.Threads)
	}
	if cfg.Iterations < 0 {
		return Report{}, apperrors.NewConfigError("iterations must not be negative, got %d", cfg.Iterations)
	}
	task := cfg.Task
	if task == nil {
		task = ComputeTask(cfg.Iterations)
	}
	count := cfg.ThreadCounter
	if count == nil {
		count = sysmon.NumThreads
	}
	var logger logging.Logger = logging.NewNopLogger()
	if cfg.Logger != nil {
		logger = cfg.Logger
	}
	trace := workload.NewTraceWriter(cfg.Trace)

	report := Report{
		RunID:    uuid.NewString(),
		Outcomes: make([]Outcome, cfg.Threads),
	}
	ctx, span := telemetry.StartSpan(ctx, "threadrun.Run",
		attribute.String("run_id", report.RunID),
		attribute.Int("threads", cfg.Threads),
	)

	report.ThreadsBefore = count()
	if cfg.OnStart != nil {
		cfg.OnStart(report.ThreadsBefore)
	}
	logger.Debug("starting workers",
		logging.String("run_id", report.RunID),
		logging.Int("threads", cfg.Threads),
		logging.Int("os_threads", report.ThreadsBefore),
	)

	var (
		g    errgroup.Group
		live parallel.LiveCounter
	)
	start := time.Now()
	for id := range cfg.Threads {
		cfg.Recorder.ObserveSpawn(RunnerName, nil)
		g.Go(func() error {
			defer live.Enter()()
			// The goroutine never unlocks: the runtime retires the thread
			// when it exits.
			runtime.LockOSThread()
			if cfg.Pin {
				if err := pinToCPU(id); err != nil {
					logger.Warn("cannot pin worker", logging.Int("id", id), logging.Err(err))
				}
			}

			_, wspan := telemetry.StartSpan(ctx, "threadrun.worker", attribute.Int("id", id))
			begin := time.Now()
			err := runTask(ctx, task, id, trace)
			d := time.Since(begin)
			telemetry.EndSpan(wspan, err)

			report.Outcomes[id] = Outcome{ID: id, Duration: d, Err: err}
			cfg.Recorder.ObserveItem(RunnerName, d, err)
			if cfg.OnDone != nil {
				cfg.OnDone(id)
			}
			return nil
		})
	}
	_ = g.Wait()
	report.Elapsed = time.Since(start)
	report.Live = live.Live()
	report.ThreadsAfter = settle(count, report.ThreadsBefore)

	errs := make([]error, 0, cfg.Threads)
	for _, o := range report.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	err := errors.Join(errs...)
	telemetry.EndSpan(span, err)
	cfg.Recorder.ObserveRun(RunnerName, cfg.Threads, report.Elapsed)

	if err != nil {
		logger.Error("workers failed", err, logging.Int("failed", len(errs)))
	}
	logger.Debug("workers joined",
		logging.Duration("elapsed", report.Elapsed),
		logging.Int("os_threads", report.ThreadsAfter),
	)
	return report, err
}

// runTask runs task for worker id, turning a panic into an error.
func runTask(ctx context.Context, task Task, id int, trace io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &apperrors.WorkerError{Runner: RunnerName, Index: id, N: id, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	if cerr := ctx.Err(); cerr != nil {
		return &apperrors.WorkerError{Runner: RunnerName, Index: id, N: id, Cause: cerr}
	}
	if terr := task(ctx, id, trace); terr != nil {
		return &apperrors.WorkerError{Runner: RunnerName, Index: id, N: id, Cause: terr}
	}
	return nil
}

// settle samples the thread count until it drops to target or settleTimeout
// passes. Retired threads exit shortly after their goroutine, not with it.
func settle(count func() int, target int) int {
	deadline := time.Now().Add(settleTimeout)
	n := count()
	for n > target && time.Now().Before(deadline) {
		time.Sleep(settlePoll)
		n = count()
	}
	return n
}
