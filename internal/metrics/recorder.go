// Package metrics collects run metrics for the fan-out runners. Metrics are
// kept in a private Prometheus registry and can be written to a file in the
// text exposition format after a run.
package metrics

import (
	"bytes"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

const namespace = "fanout"

// Recorder records per-item and per-run metrics. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	registry     *prometheus.Registry
	items        *prometheus.CounterVec
	itemDuration *prometheus.HistogramVec
	runDuration  *prometheus.GaugeVec
	workers      *prometheus.GaugeVec
	spawns       *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry, including the Go
// runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Work items completed, by runner and status.",
		}, []string{"runner", "status"}),
		itemDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "item_duration_seconds",
			Help:      "Wall-clock time per work item as seen by the dispatcher.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"runner"}),
		runDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time of the last run, fan-out to join.",
		}, []string{"runner"}),
		workers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Workers used by the last run.",
		}, []string{"runner"}),
		spawns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_spawns_total",
			Help:      "Worker start attempts, by runner and status.",
		}, []string{"runner", "status"}),
	}
	r.registry.MustRegister(
		r.items, r.itemDuration, r.runDuration, r.workers, r.spawns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveItem records the completion of one work item.
func (r *Recorder) ObserveItem(runner string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.items.WithLabelValues(runner, status(err)).Inc()
	if err == nil {
		r.itemDuration.WithLabelValues(runner).Observe(d.Seconds())
	}
}

// ObserveSpawn records a worker start attempt.
func (r *Recorder) ObserveSpawn(runner string, err error) {
	if r == nil {
		return
	}
	r.spawns.WithLabelValues(runner, status(err)).Inc()
}

// ObserveRun records the size and duration of a completed run.
func (r *Recorder) ObserveRun(runner string, workers int, d time.Duration) {
	if r == nil {
		return
	}
	r.workers.WithLabelValues(runner).Set(float64(workers))
	r.runDuration.WithLabelValues(runner).Set(d.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format,
// replacing the file atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

// Text renders the recorder's own metrics, without runtime collectors, in
// the text exposition format.
func (r *Recorder) Text() (string, error) {
	if r == nil {
		return "", nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), namespace+"_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
