package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_ObserveItem(t *testing.T) {
	t.Parallel()
	r := NewRecorder()

	r.ObserveItem("process", 10*time.Millisecond, nil)
	r.ObserveItem("process", 20*time.Millisecond, nil)
	r.ObserveItem("process", time.Millisecond, errors.New("crashed"))

	if got := testutil.ToFloat64(r.items.WithLabelValues("process", "ok")); got != 2 {
		t.Errorf("ok items = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.items.WithLabelValues("process", "error")); got != 1 {
		t.Errorf("error items = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.itemDuration); got != 1 {
		t.Errorf("expected one histogram series, got %d", got)
	}
}

func TestRecorder_ObserveRunAndSpawn(t *testing.T) {
	t.Parallel()
	r := NewRecorder()

	r.ObserveRun("thread", 8, 1500*time.Millisecond)
	r.ObserveSpawn("process", nil)
	r.ObserveSpawn("process", errors.New("fork failed"))

	if got := testutil.ToFloat64(r.workers.WithLabelValues("thread")); got != 8 {
		t.Errorf("workers = %v, want 8", got)
	}
	if got := testutil.ToFloat64(r.runDuration.WithLabelValues("thread")); got != 1.5 {
		t.Errorf("run duration = %v, want 1.5", got)
	}
	if got := testutil.ToFloat64(r.spawns.WithLabelValues("process", "error")); got != 1 {
		t.Errorf("failed spawns = %v, want 1", got)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	t.Parallel()
	var r *Recorder
	r.ObserveItem("process", time.Second, nil)
	r.ObserveRun("process", 1, time.Second)
	r.ObserveSpawn("process", nil)
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "unused.prom")); err != nil {
		t.Errorf("nil recorder should not fail: %v", err)
	}
	if r.Registry() != nil {
		t.Error("nil recorder should have no registry")
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	t.Parallel()
	r := NewRecorder()
	r.ObserveItem("process", 5*time.Millisecond, nil)
	r.ObserveRun("process", 4, time.Second)

	path := filepath.Join(t.TempDir(), "fanout.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	for _, want := range []string{"fanout_items_total", "fanout_run_duration_seconds", "fanout_workers", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("textfile should contain %s", want)
		}
	}
}

func TestRecorder_TextSkipsRuntimeCollectors(t *testing.T) {
	t.Parallel()
	r := NewRecorder()
	r.ObserveItem("thread", time.Millisecond, nil)

	text, err := r.Text()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "fanout_items_total") {
		t.Errorf("Text() should contain fanout metrics, got:\n%s", text)
	}
	if strings.Contains(text, "go_goroutines") {
		t.Error("Text() should not contain runtime collector metrics")
	}
}
