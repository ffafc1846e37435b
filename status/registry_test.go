package status

import (
	"sync"
	"testing"
)

func TestMetricMapReturnsStablePointer(t *testing.T) {
	r := NewRegistry()
	a := r.Counters.Get("pipeline.frames")
	b := r.Counters.Get("pipeline.frames")
	if a != b {
		t.Fatal("Expected the same pointer for the same key")
	}
	if _, ok := r.Counters.Lookup("missing"); ok {
		t.Error("Expected Lookup not to create metrics")
	}
}

func TestConcurrentUpdates(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := r.Counters.Get("hits")
			g := r.Gauges.Get("sum")
			for j := 0; j < 1000; j++ {
				c.Add(1)
				g.Add(0.5)
			}
		}()
	}
	wg.Wait()

	if got := r.Counters.Get("hits").Load(); got != 8000 {
		t.Errorf("Expected 8000 hits, got %d", got)
	}
	if got := r.Gauges.Get("sum").Get(); got != 4000 {
		t.Errorf("Expected sum 4000, got %v", got)
	}
}

func TestSnapshotSorted(t *testing.T) {
	r := NewRegistry()
	r.Labels.Get("mode").Store("stylized")
	r.Counters.Get("frames").Store(12)
	r.Gauges.Get("fps").Set(59.5)

	snap := r.Snapshot()
	want := []Sample{{"fps", "59.50"}, {"frames", "12"}, {"mode", "stylized"}}
	if len(snap) != len(want) {
		t.Fatalf("Expected %d samples, got %d", len(want), len(snap))
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("Sample %d = %+v, want %+v", i, snap[i], want[i])
		}
	}
	if r.Len() != 3 {
		t.Errorf("Expected 3 metrics, got %d", r.Len())
	}
}

func TestLabelTruncates(t *testing.T) {
	var l Label
	if l.Load() != "" {
		t.Error("Expected empty zero label")
	}
	long := make([]byte, MaxLabelLen+10)
	for i := range long {
		long[i] = 'x'
	}
	l.Store(string(long))
	if len(l.Load()) != MaxLabelLen {
		t.Errorf("Expected truncation to %d, got %d", MaxLabelLen, len(l.Load()))
	}
}
