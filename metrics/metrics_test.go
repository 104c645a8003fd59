package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLatencyTracker(t *testing.T) {
	tracker := NewLatencyTracker(0.01)
	operations := []string{"activate", "convert"}

	for _, op := range operations {
		tracker.Record(op, 1*time.Millisecond)
		tracker.Record(op, 5*time.Millisecond)
		tracker.Record(op, 10*time.Millisecond)
		tracker.Record(op, 50*time.Millisecond)
		tracker.Record(op, 100*time.Millisecond)
	}

	for _, op := range operations {
		stats, err := tracker.GetStats(op)
		if err != nil {
			t.Errorf("Failed to get stats for %s: %v", op, err)
			continue
		}
		if stats.Count != 5 {
			t.Errorf("Expected count 5 for %s, got %d", op, stats.Count)
		}
		if stats.Min < 0.9 || stats.Min > 1.1 {
			t.Errorf("Expected min ~1ms for %s, got %.2fms", op, stats.Min)
		}
		if stats.Max < 99 || stats.Max > 101 {
			t.Errorf("Expected max ~100ms for %s, got %.2fms", op, stats.Max)
		}
		if stats.P50 < 5 || stats.P50 > 15 {
			t.Errorf("Expected p50 ~10ms for %s, got %.2fms", op, stats.P50)
		}
	}

	all := tracker.GetAllStats()
	if len(all) != 2 || all[0].Operation != "activate" {
		t.Errorf("unexpected GetAllStats result: %v", all)
	}

	if _, err := tracker.GetStats("missing"); err == nil {
		t.Error("expected error for unknown operation")
	}
}

func TestLatencyTracker_Time(t *testing.T) {
	tracker := NewLatencyTracker(0.01)
	boom := errors.New("boom")

	err := tracker.Time("op", func() error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected fn error to be returned, got %v", err)
	}

	stats, err := tracker.GetStats("op")
	if err != nil || stats.Count != 1 {
		t.Errorf("expected one sample, got %+v, %v", stats, err)
	}
}

func TestStatsString(t *testing.T) {
	if got := (Stats{Operation: "x"}).String(); got != "x: no data" {
		t.Errorf("unexpected empty stats string %q", got)
	}
}

func TestCounters(t *testing.T) {
	c := NewCounters()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Hit()
			c.Write()
			c.Write()
		}()
	}
	wg.Wait()
	c.Miss()
	c.Activation()
	c.SkippedDraft()
	c.Cancelled()
	c.StoreFailure()

	got := c.Snapshot()
	want := Snapshot{Hits: 10, Misses: 1, Activations: 1, Writes: 20, SkippedDrafts: 1, Cancelled: 1, StoreFailures: 1}
	if got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}
