package llm

import (
	"testing"
	"time"
)

func TestStats_EmptySnapshot(t *testing.T) {
	s := NewStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 {
		t.Errorf("expected empty snapshot, got count %d", snap.Count)
	}
}

func TestStats_BasicAggregates(t *testing.T) {
	s := NewStats(time.Hour)
	for _, ms := range []int64{100, 200, 300} {
		s.Record(ms)
	}
	snap := s.Snapshot()

	if snap.Count != 3 {
		t.Fatalf("expected count 3, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Errorf("expected min 100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 300 {
		t.Errorf("expected max 300, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 200 {
		t.Errorf("expected avg 200, got %v", snap.AvgMs)
	}
	if snap.P50Ms != 200 {
		t.Errorf("expected p50 200, got %v", snap.P50Ms)
	}
}

func TestStats_NegativeClampedToZero(t *testing.T) {
	s := NewStats(time.Hour)
	s.Record(-50)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("expected negative samples clamped to 0, got %d", snap.MinMs)
	}
}

func TestStats_PercentileInterpolation(t *testing.T) {
	values := []int64{10, 20, 30, 40}
	// index = 3 * 0.5 = 1.5 -> between 20 and 30.
	if got := percentile(values, 50); got != 25 {
		t.Errorf("expected p50 25, got %v", got)
	}
	if got := percentile(values, 0); got != 10 {
		t.Errorf("expected p0 10, got %v", got)
	}
	if got := percentile(values, 100); got != 40 {
		t.Errorf("expected p100 40, got %v", got)
	}
}
