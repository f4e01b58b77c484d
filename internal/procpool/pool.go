package procpool

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/logging"
	"github.com/agbru/fanout/internal/metrics"
	"github.com/agbru/fanout/internal/parallel"
	"github.com/agbru/fanout/internal/telemetry"
	"github.com/agbru/fanout/internal/workload"
)

const (
	// RunnerName labels metrics, spans and errors produced by this package.
	RunnerName = "process"

	// DefaultShutdownGrace is how long a worker may take to exit after its
	// stdin is closed before it is killed.
	DefaultShutdownGrace = 5 * time.Second

	// maxConcurrentSpawns bounds how many workers are being started at once.
	maxConcurrentSpawns = 4
)

// Config sizes a Pool.
type Config struct {
	// Workers is the maximum number of worker processes. The pool never
	// starts more processes than there are items.
	Workers int
	// Iterations is the loop length passed to every work item.
	Iterations int
	// ShutdownGrace overrides DefaultShutdownGrace when positive.
	ShutdownGrace time.Duration
}

// Option customises a Pool.
type Option func(*Pool)

// WithLauncher replaces the default SelfLauncher.
func WithLauncher(l Launcher) Option {
	return func(p *Pool) { p.launcher = l }
}

// WithTrace sets where worker trace lines are written. Lines from different
// workers are never interleaved.
func WithTrace(w io.Writer) Option {
	return func(p *Pool) { p.trace = workload.NewTraceWriter(w) }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// WithRecorder enables metrics recording.
func WithRecorder(r *metrics.Recorder) Option {
	return func(p *Pool) { p.recorder = r }
}

// WithProgress registers a callback invoked with the index of every item as
// it completes. It is called from dispatcher goroutines.
func WithProgress(fn func(index int)) Option {
	return func(p *Pool) { p.progress = fn }
}

// Pool maps work items onto worker processes. A Pool holds no processes
// between calls: every Map starts its own workers and reaps them before
// returning.
type Pool struct {
	cfg      Config
	launcher Launcher
	trace    *workload.TraceWriter
	logger   logging.Logger
	recorder *metrics.Recorder
	progress func(index int)
}

// New validates cfg and returns a Pool.
func New(cfg Config, opts ...Option) (*Pool, error) {
	if cfg.Workers < 1 {
		return nil, apperrors.NewConfigError("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.Iterations < 0 {
		return nil, apperrors.NewConfigError("iterations must not be negative, got %d", cfg.Iterations)
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = DefaultShutdownGrace
	}
	p := &Pool{
		cfg:      cfg,
		launcher: SelfLauncher{},
		trace:    workload.NewTraceWriter(nil),
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Size returns the number of processes Map would start for k items.
func (p *Pool) Size(k int) int {
	return min(p.cfg.Workers, k)
}

// Map computes every item on the worker pool and returns the results in the
// order of items. If any worker fails, Map returns nil and the first error;
// a failed item is reported as *apperrors.WorkerError.
func (p *Pool) Map(ctx context.Context, items []workload.Item) ([]workload.Sum, error) {
	if len(items) == 0 {
		return []workload.Sum{}, nil
	}
	runID := uuid.NewString()
	size := p.Size(len(items))
	logger := p.logger
	if z, ok := logger.(*logging.ZerologAdapter); ok {
		logger = z.With(logging.String("run_id", runID))
	}

	ctx, span := telemetry.StartSpan(ctx, "procpool.Map",
		attribute.String("run_id", runID),
		attribute.Int("items", len(items)),
		attribute.Int("workers", size),
	)
	start := time.Now()
	logger.Debug("dispatching batch", logging.Int("items", len(items)), logging.Int("workers", size))

	results, err := p.dispatch(ctx, logger, items, size)
	telemetry.EndSpan(span, err)
	if err != nil {
		logger.Error("batch aborted", err, logging.Int("items", len(items)))
		return nil, err
	}
	elapsed := time.Since(start)
	p.recorder.ObserveRun(RunnerName, size, elapsed)
	logger.Debug("batch complete", logging.Duration("elapsed", elapsed))
	return results, nil
}

func (p *Pool) dispatch(ctx context.Context, logger logging.Logger, items []workload.Item, size int) ([]workload.Sum, error) {
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	results := make([]workload.Sum, len(items))
	spawns := semaphore.NewWeighted(maxConcurrentSpawns)
	var teardown parallel.ErrorCollector

	g.Go(func() error {
		defer close(jobs)
		for i := range items {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for slot := range size {
		g.Go(func() error {
			return p.serveSlot(gctx, logger, slot, items, jobs, results, spawns, &teardown)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := teardown.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// serveSlot starts one worker and feeds it items until jobs is drained.
// The worker is always reaped before serveSlot returns.
func (p *Pool) serveSlot(ctx context.Context, logger logging.Logger, slot int, items []workload.Item,
	jobs <-chan int, results []workload.Sum, spawns *semaphore.Weighted, teardown *parallel.ErrorCollector) (err error) {
	if err := spawns.Acquire(ctx, 1); err != nil {
		return err
	}
	w, err := startWorker(ctx, p.launcher, slot, p.trace, p.cfg.ShutdownGrace)
	spawns.Release(1)
	p.recorder.ObserveSpawn(RunnerName, err)
	if err != nil {
		return &apperrors.SpawnError{Slot: slot, Cause: err}
	}
	logger.Debug("worker started", logging.Int("slot", slot), logging.Int("pid", w.pid()))

	defer func() {
		if err != nil {
			w.kill()
		}
		cerr := w.close(p.cfg.ShutdownGrace)
		if err == nil && cerr != nil {
			teardown.SetError(apperrors.WrapError(cerr, "worker %d did not exit cleanly", slot))
		}
		logger.Debug("worker stopped", logging.Int("slot", slot))
	}()

	for idx := range jobs {
		n := items[idx]
		_, span := telemetry.StartSpan(ctx, "procpool.item",
			attribute.Int("index", idx),
			attribute.Int("n", int(n)),
			attribute.Int("slot", slot),
		)
		itemStart := time.Now()
		sum, werr := w.do(Request{Index: idx, N: int(n), Iterations: p.cfg.Iterations}, p.cfg.ShutdownGrace)
		p.recorder.ObserveItem(RunnerName, time.Since(itemStart), werr)
		telemetry.EndSpan(span, werr)
		if werr != nil {
			// A worker killed by an expired or canceled parent context is
			// not a worker failure.
			if cerr := context.Cause(ctx); apperrors.IsContextError(cerr) {
				return cerr
			}
			return &apperrors.WorkerError{Runner: RunnerName, Index: idx, N: int(n), Cause: werr}
		}
		results[idx] = sum
		if p.progress != nil {
			p.progress(idx)
		}
	}
	return nil
}
