package orchestration

import "testing"

func TestNewProgressAggregator(t *testing.T) {
	t.Parallel()
	if NewProgressAggregator(0) != nil {
		t.Error("expected nil aggregator for total=0")
	}
	if NewProgressAggregator(-1) != nil {
		t.Error("expected nil aggregator for total=-1")
	}
	agg := NewProgressAggregator(4)
	if agg == nil {
		t.Fatal("expected non-nil aggregator for total=4")
	}
	if agg.Total() != 4 {
		t.Errorf("Total() = %d, want 4", agg.Total())
	}
	if agg.Fraction() != 0 {
		t.Errorf("initial Fraction() = %f, want 0", agg.Fraction())
	}
}

func TestProgressAggregator_Update(t *testing.T) {
	t.Parallel()
	agg := NewProgressAggregator(4)
	got := agg.Update(ProgressUpdate{Index: 2, Done: 1, Total: 4})
	if got.Index != 2 || got.Done != 1 || got.Fraction != 0.25 {
		t.Errorf("Update() = %+v", got)
	}
	got = agg.Update(ProgressUpdate{Index: 0, Done: 4, Total: 4})
	if got.Fraction != 1 || got.ETA != 0 {
		t.Errorf("final Update() = %+v", got)
	}
	if agg.Fraction() != 1 {
		t.Errorf("Fraction() = %f, want 1", agg.Fraction())
	}
}

func TestDrainChannel(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 3)
	ch <- ProgressUpdate{}
	ch <- ProgressUpdate{}
	close(ch)
	DrainChannel(ch)
	if len(ch) != 0 {
		t.Errorf("channel still holds %d updates", len(ch))
	}
}
